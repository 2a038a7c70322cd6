// Package config предоставляет структуры и функцию для парсинга и загрузки конфига
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек
type Config struct {
	Env                     string `yaml:"env" env:"ENV" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string" env:"STORAGE_CONNECTION_STRING"`
	MigrationsPath          string `yaml:"migrations_path" env:"MIGRATIONS_PATH" env-default:"./migrations"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	Session                 `yaml:"session"`
	Admin                   `yaml:"admin"`
	AI                      `yaml:"ai"`
}

// HTTPServer структура для настройки сервера
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env:"HTTP_ADDRESS" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"10s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis" env:"REDIS_ADDRESS" env-default:"localhost:6379"`
	Password     string        `yaml:"password" env:"REDIS_PASSWORD"`
	User         string        `yaml:"user" env:"REDIS_USER"`
	DB           int           `yaml:"db" env:"REDIS_DB"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// Session структура для серверных сессий: секрет подписи cookie-токена,
// время жизни сессии и флаг Secure для cookie.
type Session struct {
	SecretKey    string        `yaml:"secret_key" env:"SESSION_SECRET_KEY"`
	TTL          time.Duration `yaml:"ttl" env-default:"720h"`
	SecureCookie bool          `yaml:"secure_cookie" env-default:"false"`
}

// Admin структура с учетными данными администратора. Администратор не
// хранится в таблице users и определяется только этой парой.
type Admin struct {
	Email    string `yaml:"email" env:"ADMIN_EMAIL" env-default:"admin@expense.local"`
	Password string `yaml:"password" env:"ADMIN_PASSWORD"`
}

// AI структура для доступа к внешнему сервису генерации текста.
// Пустой APIKey отключает только маршруты /ai/*.
type AI struct {
	APIKey    string        `yaml:"api_key" env:"AI_API_KEY"`
	BaseURL   string        `yaml:"base_url" env:"AI_BASE_URL" env-default:"https://api.anthropic.com"`
	Model     string        `yaml:"model" env-default:"claude-3-5-haiku-latest"`
	MaxTokens int           `yaml:"max_tokens" env-default:"1024"`
	Timeout   time.Duration `yaml:"timeout" env-default:"30s"`
}

// MustLoad функция для загрузки конфига, путь берется из CONFIG_PATH.
// При отсутствии CONFIG_PATH конфиг собирается только из переменных окружения.
func MustLoad() *Config {
	var cfg Config

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			log.Fatalf("cannot read config from env: %s", err)
		}
		return &cfg
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
