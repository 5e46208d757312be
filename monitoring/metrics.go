package monitoring

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	paymentOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "late_fee_operations_total",
			Help: "Total late-fee payment operations by outcome",
		},
		[]string{"operation", "status"},
	)

	gatewayCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "payment_gateway_call_duration_seconds",
			Help:    "Duration of payment gateway calls",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		},
		[]string{"operation"},
	)

	paymentRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "payment_records_total",
			Help: "Current number of payment records per status",
		},
		[]string{"status"},
	)
)

// TrackPaymentOperation counts a pay/refund outcome (success, declined,
// rejected, error).
func TrackPaymentOperation(operation, status string) {
	paymentOperations.WithLabelValues(operation, status).Inc()
}

// TrackGatewayCall observes the duration of a single gateway call.
func TrackGatewayCall(operation string, duration time.Duration) {
	gatewayCallDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

type Monitor struct {
	redis *redis.Client
}

func NewMonitor(redisClient *redis.Client) *Monitor {
	monitor := &Monitor{redis: redisClient}

	// Start metrics collection
	go monitor.collectMetrics()

	return monitor
}

func (m *Monitor) collectMetrics() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		m.collectPaymentMetrics(context.Background())
	}
}

func (m *Monitor) collectPaymentMetrics(ctx context.Context) {
	keys, _ := m.redis.Keys(ctx, "payment:*").Result()

	counts := map[string]int{}
	for _, key := range keys {
		status, err := m.redis.HGet(ctx, key, "status").Result()
		if err != nil {
			continue
		}
		counts[status]++
	}

	for status, count := range counts {
		paymentRecords.WithLabelValues(status).Set(float64(count))
	}
}
