package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/campusview/attendance-api/internal/service"
)

// Metrics serves the Prometheus scrape endpoint.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return gin.WrapH(metricsSvc.Handler())
}
