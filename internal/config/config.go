package config

import "time"

type Config struct {
	Environment Environment
	Log         Log
	HTTP        HTTPServer
	BaseURL     string `env:"BASE_URL"`
	DatabaseURL string `env:"DATABASE_URL" envDefault:"store.db"`

	Auth      Auth      `envPrefix:"AUTH_"`
	Storage   Storage   `envPrefix:"STORAGE_"`
	Mail      Mail      `envPrefix:"MAIL_"`
	Redis     Redis     `envPrefix:"REDIS_"`
	Telemetry Telemetry `envPrefix:"TELEMETRY_"`
}

type Environment struct {
	Name string `env:"ENVIRONMENT" envDefault:"development"`
}

type Log struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

type HTTPServer struct {
	Host string `env:"HTTP_HOST" envDefault:"0.0.0.0"`
	Port string `env:"HTTP_PORT" envDefault:"8080"`
}

type Auth struct {
	JWTSecret string `env:"JWT_SECRET"`
}

// Storage is the external blob-storage collaborator holding slip images and
// downloadable assets.
type Storage struct {
	BaseURL string `env:"BASE_URL"`
	APIKey  string `env:"API_KEY"`
}

type Mail struct {
	BaseURL string `env:"BASE_URL"`
	APIKey  string `env:"API_KEY"`
	From    string `env:"FROM" envDefault:"store@codefriend.dev"`
}

// Redis backs the per-requester view cooldown markers; leave Addr empty to
// fall back to the in-process marker store.
type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type Telemetry struct {
	ViewCooldown time.Duration `env:"VIEW_COOLDOWN" envDefault:"30m"`
}
