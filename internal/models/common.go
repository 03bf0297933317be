package models

import "time"

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}

// SchedulerMetricsSnapshot aggregates the generator's Prometheus counters for
// lightweight API consumption (e.g. an operations dashboard).
type SchedulerMetricsSnapshot struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	GenerationRunsTotal      uint64    `json:"generation_runs_total"`
	AverageGenerationMs      float64   `json:"average_generation_ms"`
	PlacementsSucceeded      uint64    `json:"placements_succeeded"`
	PlacementsFailed         uint64    `json:"placements_failed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
