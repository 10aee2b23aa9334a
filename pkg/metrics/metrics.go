package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// =============================================================================
// HTTP Метрики
// =============================================================================

// HttpRequestsTotal - счётчик всех HTTP запросов
// Labels: service, method, path, status
// Пример запроса PromQL: rate(http_requests_total{service="lacarta"}[5m])
var HttpRequestsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	},
	[]string{"service", "method", "path", "status"},
)

// HttpRequestDuration - гистограмма времени ответа
// Пример: histogram_quantile(0.95, rate(http_request_duration_seconds_bucket[5m]))
var HttpRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	},
	[]string{"service", "method", "path"},
)

// HttpRequestsInFlight - текущее количество обрабатываемых запросов
var HttpRequestsInFlight = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "http_requests_in_flight",
		Help: "Current number of HTTP requests being processed",
	},
	[]string{"service"},
)

// =============================================================================
// Бизнес-метрики каталога
// =============================================================================

// CatalogWrites - записи в каталог по типу операции
var CatalogWrites = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "catalog_writes_total",
		Help: "Total number of catalog write operations",
	},
	[]string{"operation", "status"}, // operation: create, update, delete, status; status: success, failed
)

// BlobDeleteFailures - неудачные удаления файлов из внешнего хранилища
// Удаление blob-ов best-effort: ошибка логируется, но операция не падает
var BlobDeleteFailures = promauto.NewCounter(
	prometheus.CounterOpts{
		Name: "blob_delete_failures_total",
		Help: "Total number of failed blob deletions after commit",
	},
)

// PromotionQuotaRejections - отклонённые записи промо-акций по коду квоты
var PromotionQuotaRejections = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "promotion_quota_rejections_total",
		Help: "Total number of promotion writes rejected by quota guards",
	},
	[]string{"code"}, // PRIORITY_LIMIT, ACTIVE_OVERLAP_LIMIT
)

// PromotionsEligible - размер текущего набора eligible-now промо-акций
var PromotionsEligible = promauto.NewGauge(
	prometheus.GaugeOpts{
		Name: "promotions_eligible_now",
		Help: "Number of promotions currently eligible for display",
	},
)

// =============================================================================
// Redis Метрики
// =============================================================================

// RedisCacheHits - попадания в кеш
var RedisCacheHits = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_hits_total",
		Help: "Total number of Redis cache hits",
	},
	[]string{"service", "key_prefix"},
)

// RedisCacheMisses - промахи кеша
var RedisCacheMisses = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "redis_cache_misses_total",
		Help: "Total number of Redis cache misses",
	},
	[]string{"service", "key_prefix"},
)

// =============================================================================
// Kafka Метрики
// =============================================================================

// KafkaMessagesProduced - отправленные сообщения
var KafkaMessagesProduced = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_messages_produced_total",
		Help: "Total number of Kafka messages produced",
	},
	[]string{"service", "topic"},
)

// KafkaErrors - ошибки Kafka
var KafkaErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "kafka_errors_total",
		Help: "Total number of Kafka errors",
	},
	[]string{"service", "topic", "operation"},
)
