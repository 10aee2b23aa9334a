package metrics

func RecordCacheHit(service, keyPrefix string) {
	RedisCacheHits.WithLabelValues(service, keyPrefix).Inc()
}

func RecordCacheMiss(service, keyPrefix string) {
	RedisCacheMisses.WithLabelValues(service, keyPrefix).Inc()
}

func RecordCatalogWrite(operation string, err error) {
	status := "success"
	if err != nil {
		status = "failed"
	}
	CatalogWrites.WithLabelValues(operation, status).Inc()
}

func RecordQuotaRejection(code string) {
	PromotionQuotaRejections.WithLabelValues(code).Inc()
}

func RecordKafkaMessageProduced(service, topic string) {
	KafkaMessagesProduced.WithLabelValues(service, topic).Inc()
}

func RecordKafkaError(service, topic, operation string) {
	KafkaErrors.WithLabelValues(service, topic, operation).Inc()
}
