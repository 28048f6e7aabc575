package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config — полная конфигурация сервиса
type Config struct {
	Database DBConfig
	RabbitMQ MQConfig
	Redis    RedisConfig
	Service  ServiceConfig
	JWT      JWTConfig
	Dispatch DispatchConfig
	Geocoder GeocoderConfig
}

type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

type MQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
}

type RedisConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	DB   int    `yaml:"db"`
}

type ServiceConfig struct {
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

type JWTConfig struct {
	Secret        string `yaml:"secret"`
	ExpiryMinutes int    `yaml:"expiry_minutes"`
}

// DispatchConfig — радиусы поиска курьеров (км)
type DispatchConfig struct {
	InitialRadiusKm   float64 `yaml:"initial_radius_km"`
	RadiusIncrementKm float64 `yaml:"radius_increment_km"`
	MaxRadiusKm       float64 `yaml:"max_radius_km"`
	BroadcastRadiusKm float64 `yaml:"broadcast_radius_km"`
}

// GeocoderConfig — внешний сервис геокодирования адресов
type GeocoderConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Load — загрузка из CONFIG_DIR (по умолчанию ./config) + ENV перекрывает
func Load() Config {
	configDir := getEnv("CONFIG_DIR", "./config")
	cfg := Config{}

	cfg.Database = DBConfig{Host: "localhost", Port: 5432, User: "courier_user", Password: "courier_pass", Database: "courier_db", SSLMode: "disable"}
	loadYAML(filepath.Join(configDir, "db.yaml"), &cfg.Database)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnvInt("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Database = getEnv("DB_NAME", cfg.Database.Database)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.RabbitMQ = MQConfig{Host: "localhost", Port: 5672, User: "guest", Password: "guest", VHost: "/"}
	loadYAML(filepath.Join(configDir, "mq.yaml"), &cfg.RabbitMQ)
	cfg.RabbitMQ.Host = getEnv("RABBITMQ_HOST", cfg.RabbitMQ.Host)
	cfg.RabbitMQ.Port = getEnvInt("RABBITMQ_PORT", cfg.RabbitMQ.Port)
	cfg.RabbitMQ.User = getEnv("RABBITMQ_USER", cfg.RabbitMQ.User)
	cfg.RabbitMQ.Password = getEnv("RABBITMQ_PASSWORD", cfg.RabbitMQ.Password)
	cfg.RabbitMQ.VHost = getEnv("RABBITMQ_VHOST", cfg.RabbitMQ.VHost)

	cfg.Redis = RedisConfig{Host: "localhost", Port: 6379, DB: 0}
	loadYAML(filepath.Join(configDir, "redis.yaml"), &cfg.Redis)
	cfg.Redis.Host = getEnv("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Port = getEnvInt("REDIS_PORT", cfg.Redis.Port)
	cfg.Redis.DB = getEnvInt("REDIS_DB", cfg.Redis.DB)

	cfg.Service = ServiceConfig{Port: 3000, LogLevel: "INFO"}
	loadYAML(filepath.Join(configDir, "service.yaml"), &cfg.Service)
	cfg.Service.Port = getEnvInt("SERVICE_PORT", cfg.Service.Port)
	cfg.Service.LogLevel = getEnv("LOG_LEVEL", cfg.Service.LogLevel)

	cfg.JWT = JWTConfig{Secret: "dev_secret", ExpiryMinutes: 60}
	loadYAML(filepath.Join(configDir, "jwt.yaml"), &cfg.JWT)
	cfg.JWT.Secret = getEnv("JWT_SECRET", cfg.JWT.Secret)
	cfg.JWT.ExpiryMinutes = getEnvInt("JWT_EXPIRY_MINUTES", cfg.JWT.ExpiryMinutes)

	cfg.Dispatch = DispatchConfig{InitialRadiusKm: 2, RadiusIncrementKm: 2, MaxRadiusKm: 10, BroadcastRadiusKm: 5}
	loadYAML(filepath.Join(configDir, "dispatch.yaml"), &cfg.Dispatch)
	cfg.Dispatch.InitialRadiusKm = getEnvFloat("DISPATCH_INITIAL_RADIUS_KM", cfg.Dispatch.InitialRadiusKm)
	cfg.Dispatch.RadiusIncrementKm = getEnvFloat("DISPATCH_RADIUS_INCREMENT_KM", cfg.Dispatch.RadiusIncrementKm)
	cfg.Dispatch.MaxRadiusKm = getEnvFloat("DISPATCH_MAX_RADIUS_KM", cfg.Dispatch.MaxRadiusKm)
	cfg.Dispatch.BroadcastRadiusKm = getEnvFloat("DISPATCH_BROADCAST_RADIUS_KM", cfg.Dispatch.BroadcastRadiusKm)

	cfg.Geocoder = GeocoderConfig{BaseURL: "https://nominatim.openstreetmap.org", TimeoutSeconds: 5}
	loadYAML(filepath.Join(configDir, "geocoder.yaml"), &cfg.Geocoder)
	cfg.Geocoder.BaseURL = getEnv("GEOCODER_BASE_URL", cfg.Geocoder.BaseURL)
	cfg.Geocoder.TimeoutSeconds = getEnvInt("GEOCODER_TIMEOUT_SECONDS", cfg.Geocoder.TimeoutSeconds)

	return cfg
}

// loadYAML декодирует файл в out; отсутствие файла не ошибка (остаются дефолты).
func loadYAML(path string, out any) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return
	}
	_ = yaml.Unmarshal(data, out)
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// DSN возвращает строку подключения к БД
func (c DBConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// AMQPURL возвращает URL подключения к RabbitMQ
func (c MQConfig) AMQPURL() string {
	return fmt.Sprintf(
		"amqp://%s:%s@%s:%d%s",
		c.User, c.Password, c.Host, c.Port, c.VHost,
	)
}

// Addr возвращает адрес Redis
func (c RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
