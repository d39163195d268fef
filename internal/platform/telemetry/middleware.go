package telemetry

import (
	"time"

	"github.com/labstack/echo/v4"
)

// HTTPMetrics records request counts and latency by route template.
func HTTPMetrics(m *Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.RecordHTTPRequest(c.Request().Context(), c.Request().Method, route, status,
				float64(time.Since(start).Microseconds())/1000)
			return err
		}
	}
}
