package shared

import (
	"sync"
	"time"
)

// UpstreamMetrics tracks request counts and latency for one external
// upstream. All methods are safe for concurrent use.
type UpstreamMetrics struct {
	mutex              sync.RWMutex
	totalRequests      int64
	successfulRequests int64
	failedRequests     int64
	totalDuration      time.Duration
	lastRequestAt      time.Time
}

// MetricsSnapshot is a point-in-time copy of the counters
type MetricsSnapshot struct {
	TotalRequests      int64         `json:"total_requests"`
	SuccessfulRequests int64         `json:"successful_requests"`
	FailedRequests     int64         `json:"failed_requests"`
	AverageDuration    time.Duration `json:"average_duration"`
	LastRequestAt      time.Time     `json:"last_request_at"`
}

func NewUpstreamMetrics() *UpstreamMetrics {
	return &UpstreamMetrics{}
}

// RecordRequest records one upstream call outcome
func (m *UpstreamMetrics) RecordRequest(success bool, duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.totalRequests++
	if success {
		m.successfulRequests++
	} else {
		m.failedRequests++
	}
	m.totalDuration += duration
	m.lastRequestAt = time.Now()
}

// GetSnapshot returns a consistent copy of the current counters
func (m *UpstreamMetrics) GetSnapshot() MetricsSnapshot {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	snapshot := MetricsSnapshot{
		TotalRequests:      m.totalRequests,
		SuccessfulRequests: m.successfulRequests,
		FailedRequests:     m.failedRequests,
		LastRequestAt:      m.lastRequestAt,
	}
	if m.totalRequests > 0 {
		snapshot.AverageDuration = m.totalDuration / time.Duration(m.totalRequests)
	}
	return snapshot
}
