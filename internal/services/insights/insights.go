package insights

import (
	"context"
	"log/slog"

	"github.com/magabrotheeeer/expense-tracker/internal/lib/month"
	"github.com/magabrotheeeer/expense-tracker/internal/models"
)

const insightsSystem = "You are a personal finance assistant. " +
	"You receive an aggregated summary of a user's expenses and give practical advice."

const insightsInstruction = "Analyse the expense summary below and respond with exactly four sections " +
	"titled OVERVIEW, TOP SPENDING AREAS, NOTABLE PATTERNS and ACTIONABLE TIPS. " +
	"Write 2-4 sentences under each title. Do not use markdown emphasis.\n\n"

const budgetSystem = "You are a personal finance assistant that produces machine-readable budgets."

const budgetInstruction = "Based on the expense summary below, respond with a strict JSON object and nothing else. " +
	"Schema: {\"income_assumption\": string, \"total_suggested_budget\": number, " +
	"\"categories\": [{\"name\": string, \"current_avg\": number, \"suggested\": number, " +
	"\"change\": \"increase\"|\"decrease\"|\"keep\", \"reason\": string}], " +
	"\"overall_advice\": string}. Do not wrap the JSON in code fences.\n\n"

// Generator описывает интерфейс клиента сервиса генерации текста.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// ExpenseLister описывает выборку активных расходов из хранилища.
type ExpenseLister interface {
	ListActiveByOwner(ctx context.Context, ownerID int64, filter *month.Filter) ([]*models.Expense, error)
}

// Service строит сводку расходов и запрашивает у внешнего сервиса
// советы или бюджет. Ответы не кэшируются и не ретраятся: любая ошибка
// терминальна для запроса.
type Service struct {
	repo ExpenseLister
	gen  Generator
	log  *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo ExpenseLister, gen Generator, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		gen:  gen,
		log:  log,
	}
}

// Summary возвращает агрегаты активных расходов пользователя.
func (s *Service) Summary(ctx context.Context, ownerID int64) (*Summary, error) {
	expenses, err := s.repo.ListActiveByOwner(ctx, ownerID, nil)
	if err != nil {
		return nil, err
	}
	return BuildSummary(expenses)
}

// Insights запрашивает текстовые советы и разбирает их на секции.
func (s *Service) Insights(ctx context.Context, ownerID int64) ([]Section, error) {
	summary, err := s.Summary(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	text, err := s.gen.Generate(ctx, insightsSystem, insightsInstruction+summary.Render())
	if err != nil {
		return nil, err
	}
	s.log.Info("received AI insights", slog.Int64("user_id", ownerID), slog.Int("chars", len(text)))
	return ParseSections(text), nil
}

// Budget запрашивает предложение бюджета и разбирает его как строгий JSON.
func (s *Service) Budget(ctx context.Context, ownerID int64) (*BudgetPlan, error) {
	summary, err := s.Summary(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	text, err := s.gen.Generate(ctx, budgetSystem, budgetInstruction+summary.Render())
	if err != nil {
		return nil, err
	}
	s.log.Info("received AI budget", slog.Int64("user_id", ownerID), slog.Int("chars", len(text)))
	return ParseBudget(text)
}
