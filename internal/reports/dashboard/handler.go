package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"investor-desk/request-portal-backend/internal/apperrors"
	"investor-desk/request-portal-backend/internal/auth"
)

// Handler serves the request summary.
type Handler struct {
	aggregator *Aggregator
	logger     *zap.Logger
}

func NewHandler(aggregator *Aggregator, logger *zap.Logger) *Handler {
	return &Handler{aggregator: aggregator, logger: logger}
}

// RegisterRoutes adds GET /reports/summary for staff.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/reports/summary", auth.RequireRole(auth.RoleAdmin), h.getSummary)
}

func (h *Handler) getSummary(c *gin.Context) {
	summary, err := h.aggregator.GetSummary(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		status := apperrors.HTTPStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to get request summary", zap.Error(err))
			c.JSON(status, gin.H{"error": "failed to get summary", "code": apperrors.Code(err)})
			return
		}
		c.JSON(status, gin.H{"error": err.Error(), "code": apperrors.Code(err)})
		return
	}
	stats := h.aggregator.Stats()
	h.logger.Debug("Request summary served",
		zap.Int("cache_size", stats.Size),
		zap.Int64("hits", stats.Hits),
		zap.Int64("misses", stats.Misses),
		zap.Float64("hit_rate", stats.HitRate))
	c.JSON(http.StatusOK, summary)
}
