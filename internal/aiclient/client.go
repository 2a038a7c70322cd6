// Package aiclient реализует клиент внешнего сервиса генерации текста.
//
// Запрос — HTTPS POST c JSON-телом {model, max_tokens, system, messages},
// ответ — JSON c текстом в content[0].text. Ошибки вышестоящего API
// возвращаются с кодом и телом ответа без изменений.
package aiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/magabrotheeeer/expense-tracker/internal/config"
)

// ErrNoAPIKey возвращается, когда ключ API не сконфигурирован.
// Отсутствие ключа деградирует только маршруты /ai/*.
var ErrNoAPIKey = errors.New("AI API key is not configured")

const apiVersion = "2023-06-01"

// Client — HTTP-клиент сервиса генерации текста.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

// New создаёт новый клиент с настройками из конфига.
func New(cfg config.AI) *Client {
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		maxTokens:  cfg.MaxTokens,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type generateRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type generateResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
}

// Generate отправляет system-инструкцию и пользовательский prompt,
// возвращает сгенерированный текст. Ответы вне диапазона 2xx
// возвращаются как ошибка с кодом и телом вышестоящего API.
func (c *Client) Generate(ctx context.Context, system, prompt string) (string, error) {
	const op = "aiclient.Generate"

	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	reqBody := generateRequest{
		Model:     c.model,
		MaxTokens: c.maxTokens,
		System:    system,
		Messages:  []message{{Role: "user", Content: prompt}},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(reqBody); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", &buf)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", apiVersion)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("%s: upstream API error %d: %s", op, resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if len(genResp.Content) == 0 {
		return "", fmt.Errorf("%s: empty response content", op)
	}
	return genResp.Content[0].Text, nil
}
