package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "tastytrail"

var (
	// AuthOperationsTotal считает операции аутентификации по имени и коду результата.
	AuthOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "auth",
		Name:      "operations_total",
		Help:      "Количество операций аутентификации по результату.",
	}, []string{"operation", "result"})

	// NotificationsTotal считает письма: queued, sent, failed, dropped, skipped.
	NotificationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "mail",
		Name:      "notifications_total",
		Help:      "Количество писем по статусу обработки.",
	}, []string{"kind", "status"})

	// HTTPRequestDuration время обработки HTTP-запросов.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Длительность HTTP-запросов.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
)

// ObserveAuth фиксирует результат операции. Пустой result означает успех.
func ObserveAuth(operation, result string) {
	if result == "" {
		result = "ok"
	}
	AuthOperationsTotal.WithLabelValues(operation, result).Inc()
}

// ObserveNotification фиксирует статус письма.
func ObserveNotification(kind, status string) {
	NotificationsTotal.WithLabelValues(kind, status).Inc()
}

// GinMiddleware замеряет длительность запросов. Метка route берётся из шаблона
// маршрута, чтобы не плодить ряды на каждый URL.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
