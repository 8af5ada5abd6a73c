// Package metrics expone métricas Prometheus de la API y del pipeline de auth.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	// RequestsTotal peticiones HTTP por método y clase de status (2xx, 4xx...).
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cupones_http_requests_total",
			Help: "Total de peticiones HTTP",
		},
		[]string{"method", "status"},
	)

	// RequestDuration duración de las peticiones en segundos.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cupones_http_request_duration_seconds",
			Help:    "Duración de las peticiones HTTP",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method"},
	)

	// AuthDecisionsTotal decisiones de cada etapa (authenticate, authorize, ownership).
	AuthDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cupones_auth_decisions_total",
			Help: "Decisiones del pipeline de autenticación/autorización",
		},
		[]string{"stage", "outcome"},
	)

	// AuthRejectionsTotal rechazos por motivo interno (TOKEN_EXPIRED, FORBIDDEN...).
	AuthRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cupones_auth_rejections_total",
			Help: "Rechazos de autenticación/autorización por motivo",
		},
		[]string{"reason"},
	)
)

// Etapas del pipeline.
const (
	StageAuthenticate = "authenticate"
	StageAuthorize    = "authorize"
	StageOwnership    = "ownership"
)

func init() {
	prometheus.MustRegister(
		RequestsTotal,
		RequestDuration,
		AuthDecisionsTotal,
		AuthRejectionsTotal,
	)
}

// Admitted registra que la etapa dejó pasar la petición.
func Admitted(stage string) {
	AuthDecisionsTotal.WithLabelValues(stage, "admitted").Inc()
}

// Rejected registra un rechazo de la etapa con su motivo.
func Rejected(stage, reason string) {
	AuthDecisionsTotal.WithLabelValues(stage, "rejected").Inc()
	AuthRejectionsTotal.WithLabelValues(reason).Inc()
}

// StatusClass agrupa un status HTTP en su clase ("2xx", "4xx"...).
func StatusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
