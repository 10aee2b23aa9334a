package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config содержит все настройки сервиса La Carta
// Включает конфигурацию HTTP сервера, PostgreSQL, Redis, Kafka, хранилища файлов и JWT
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Storage  StorageConfig
	JWT      JWTConfig
	Cron     CronConfig
	LogLevel string
}

// ServerConfig - настройки HTTP сервера
type ServerConfig struct {
	Host string
	Port string
}

// DatabaseConfig - настройки подключения к PostgreSQL
// Хранит продукты, словари ингредиентов/категорий, связи и промо-акции
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig - настройки Redis для кеширования словарей
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// KafkaConfig - настройки Kafka для событий каталога
// События отправляются после коммита транзакции (создание/обновление/удаление)
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// StorageConfig - настройки внешнего хранилища изображений
// Сервис не загружает файлы - только удаляет blob-ы, оставшиеся без владельца
type StorageConfig struct {
	BaseURL    string // Базовый URL storage-провайдера
	Bucket     string // Имя бакета с изображениями продуктов
	ServiceKey string // Сервисный ключ для авторизации запросов
}

// JWTConfig - настройки проверки JWT токенов админских запросов
type JWTConfig struct {
	Secret string
}

// CronConfig - расписание фонового sweep-а промо-акций
type CronConfig struct {
	PromotionSweep string // cron-выражение, по умолчанию раз в сутки
}

// Load загружает конфигурацию из переменных окружения
// Возвращает ошибку, если не удалось распарсить значения
func Load() (*Config, error) {
	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB value: %w", err)
	}

	return &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "lacarta"),
			Password: getEnv("DB_PASSWORD", "lacarta"),
			DBName:   getEnv("DB_NAME", "lacarta"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Topic:   getEnv("KAFKA_TOPIC", "menu_events"),
		},
		Storage: StorageConfig{
			BaseURL:    getEnv("STORAGE_BASE_URL", "http://localhost:54321"),
			Bucket:     getEnv("STORAGE_BUCKET", "product-images"),
			ServiceKey: getEnv("STORAGE_SERVICE_KEY", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		},
		Cron: CronConfig{
			PromotionSweep: getEnv("PROMOTION_SWEEP_SCHEDULE", "0 4 * * *"),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

// DSN возвращает строку подключения к PostgreSQL в формате libpq
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// URL возвращает строку подключения в формате postgres://
func (c *DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// Address возвращает адрес сервера в формате host:port
func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

// Address возвращает адрес Redis в формате host:port
func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
