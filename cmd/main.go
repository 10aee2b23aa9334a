package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"lacarta/internal/app/catalog/config"
	"lacarta/internal/app/catalog/handler"
	"lacarta/internal/app/catalog/processor"
	"lacarta/internal/app/catalog/repository"
	"lacarta/internal/app/catalog/service"
	"lacarta/internal/app/catalog/util"
	"lacarta/pkg/logger"
)

func main() {
	// === ИНИЦИАЛИЗАЦИЯ КОНФИГУРАЦИИ ===
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init("catalog-service", cfg.LogLevel)

	// === ПОДКЛЮЧЕНИЕ К POSTGRESQL (PGX) ===
	// Пул pgx обслуживает транзакционный путь записи каталога
	pool, err := connectPool(context.Background(), cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	logger.Info().Msg("Successfully connected to PostgreSQL (pgx)")

	// === ПОДКЛЮЧЕНИЕ К POSTGRESQL (GORM) ===
	// GORM обслуживает промо-акции поверх той же базы
	gormDB, err := connectGorm(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database via GORM: %v", err)
	}
	logger.Info().Msg("Successfully connected to PostgreSQL (GORM)")

	// === ПОДКЛЮЧЕНИЕ К REDIS ===
	// Redis кеширует словари ингредиентов и категорий
	redisClient, err := util.NewRedisClient(
		cfg.Redis.Address(),
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	logger.Info().Msg("Successfully connected to Redis")

	// === ИНИЦИАЛИЗАЦИЯ KAFKA PRODUCER ===
	// События каталога уходят в топик menu_events после коммита
	kafkaProducer := util.NewKafkaProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	defer kafkaProducer.Close()
	logger.Info().Msg("Successfully initialized Kafka producer")

	// === ИНИЦИАЛИЗАЦИЯ ХРАНИЛИЩА ИЗОБРАЖЕНИЙ ===
	storageClient := util.NewStorageClient(cfg.Storage.BaseURL, cfg.Storage.Bucket, cfg.Storage.ServiceKey)

	// === ИНИЦИАЛИЗАЦИЯ СЛОЯ РЕПОЗИТОРИЕВ ===
	ingredientRepo := repository.NewIngredientRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	productRepo := repository.NewProductRepository(pool, ingredientRepo, categoryRepo)
	promotionRepo := repository.NewPromotionRepository(gormDB)

	// === ИНИЦИАЛИЗАЦИЯ БИЗНЕС-ЛОГИКИ ===
	catalogService := service.NewCatalogService(
		productRepo,
		ingredientRepo,
		categoryRepo,
		storageClient,
		redisClient,
		kafkaProducer,
	)
	promotionService := service.NewPromotionService(promotionRepo, kafkaProducer)

	// === ИНИЦИАЛИЗАЦИЯ HTTP HANDLERS ===
	catalogHandler := handler.NewCatalogHandler(catalogService)
	promotionHandler := handler.NewPromotionHandler(promotionService)
	authMiddleware := handler.NewAuthMiddleware(cfg.JWT.Secret)

	// === НАСТРОЙКА МАРШРУТОВ ===
	router := handler.SetupRoutes(catalogHandler, promotionHandler, authMiddleware)

	// === ЗАПУСК CRON SCHEDULER ===
	// Ежедневная уборка акций с истёкшим окном дат
	scheduler := processor.NewCronScheduler(promotionService, catalogService)
	if err := scheduler.Start(context.Background(), cfg.Cron.PromotionSweep); err != nil {
		log.Fatalf("Failed to start cron scheduler: %v", err)
	}
	defer scheduler.Stop()

	// === НАСТРОЙКА HTTP СЕРВЕРА ===
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// === ЗАПУСК HTTP СЕРВЕРА ===
	go func() {
		logger.Info().Str("address", cfg.Server.Address()).Msg("Starting Catalog Service")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// === GRACEFUL SHUTDOWN ===
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down Catalog Service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info().Msg("Catalog Service stopped gracefully")
}

// connectPool устанавливает соединение с PostgreSQL через pgx connection pool
// Retry logic на 10 попыток сглаживает старт в Docker, когда база ещё поднимается
func connectPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pool config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = 5 * time.Minute
	poolConfig.MaxConnIdleTime = 1 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	var pool *pgxpool.Pool
	for i := 0; i < 10; i++ {
		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				break
			}
			pool.Close()
		}
		log.Printf("Failed to connect to database (attempt %d/10): %v", i+1, err)
		time.Sleep(3 * time.Second)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
	}

	return pool, nil
}

// connectGorm открывает GORM-соединение для промо-акций
func connectGorm(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	}

	var db *gorm.DB
	var err error

	for i := 0; i < 10; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
		if err == nil {
			sqlDB, sqlErr := db.DB()
			if sqlErr != nil {
				err = sqlErr
			} else if pingErr := sqlDB.Ping(); pingErr != nil {
				err = pingErr
			} else {
				sqlDB.SetMaxOpenConns(10)
				sqlDB.SetMaxIdleConns(2)
				sqlDB.SetConnMaxLifetime(5 * time.Minute)
				return db, nil
			}
		}
		logger.Warn().Int("attempt", i+1).Err(err).Msg("Failed to connect to database via GORM, retrying")
		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("failed to connect after 10 attempts: %w", err)
}
