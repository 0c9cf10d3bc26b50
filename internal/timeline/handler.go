package timeline

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"investor-desk/request-portal-backend/internal/apperrors"
	"investor-desk/request-portal-backend/internal/auth"
	"investor-desk/request-portal-backend/pkg/locale"
)

type Handler struct {
	service         *Service
	logger          *zap.Logger
	defaultLanguage string
}

func NewHandler(service *Service, logger *zap.Logger, defaultLanguage string) *Handler {
	return &Handler{service: service, logger: logger, defaultLanguage: defaultLanguage}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/requests/:id/timeline", h.GetTimeline)
}

// GetTimeline returns the merged activity feed of a request
func (h *Handler) GetTimeline(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id", "code": "validation_failure"})
		return
	}
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": auth.ErrMissingToken.Error(), "code": "unauthorized"})
		return
	}

	viewer := Viewer{
		UserID:   principal.UserID,
		Audience: VisibilityInvestor,
		Language: locale.Negotiate(c.Query("lang"), c.GetHeader("Accept-Language"), h.defaultLanguage),
	}
	if principal.IsAdmin() {
		viewer.Audience = VisibilityAdmin
	}

	entries, err := h.service.BuildTimeline(c.Request.Context(), id, viewer)
	if err != nil {
		status := apperrors.HTTPStatus(err)
		body := gin.H{"error": err.Error(), "code": apperrors.Code(err)}
		var aggErr *apperrors.AggregationError
		if errors.As(err, &aggErr) {
			body = gin.H{"error": "timeline unavailable", "code": apperrors.Code(err), "source": aggErr.Source}
		} else if status == http.StatusInternalServerError {
			h.logger.Error("Failed to build timeline", zap.Error(err))
			body["error"] = "internal error"
		}
		c.JSON(status, body)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request_id": id,
		"language":   viewer.Language,
		"entries":    entries,
	})
}
