package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/cupones-api/pkg/logger"
	"github.com/jhoicas/cupones-api/pkg/metrics"
)

// RequestLogger registra cada petición (método, ruta, status, latencia, usuario) y
// alimenta las métricas HTTP. Los errores de la cadena se traducen aquí mismo con el
// ErrorHandler de la app para conocer el status final.
func RequestLogger(log *logger.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if chainErr := c.Next(); chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		latency := time.Since(start)
		status := c.Response().StatusCode()

		metrics.RequestsTotal.WithLabelValues(c.Method(), metrics.StatusClass(status)).Inc()
		metrics.RequestDuration.WithLabelValues(c.Method()).Observe(latency.Seconds())

		ev := log.Info()
		if status >= fiber.StatusInternalServerError {
			ev = log.Error()
		}
		ev = ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", latency).
			Str("ip", c.IP())
		if p := GetPrincipal(c); p != nil {
			ev = ev.Str("user_id", p.ID)
		}
		ev.Msg(strconv.Itoa(status) + " " + c.Method() + " " + c.Path())
		return nil
	}
}
