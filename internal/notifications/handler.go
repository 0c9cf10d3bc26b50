package notifications

import (
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
	rg.POST("/notifications/:id/read", h.MarkRead)
}

type readResponse struct {
	Record
	Copy   Copy `json:"copy"`
	Unread bool `json:"unread"`
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id", "code": "validation_failure"})
		return
	}
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": auth.ErrMissingToken.Error(), "code": "unauthorized"})
		return
	}

	record, err := h.service.MarkRead(c.Request.Context(), id, principal.UserID)
	if err != nil {
		status := apperrors.HTTPStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Failed to acknowledge notification", zap.Error(err))
			c.JSON(status, gin.H{"error": "internal error", "code": apperrors.Code(err)})
			return
		}
		c.JSON(status, gin.H{"error": err.Error(), "code": apperrors.Code(err)})
		return
	}

	lang := locale.Negotiate(c.Query("lang"), c.GetHeader("Accept-Language"), h.defaultLanguage)
	c.JSON(http.StatusOK, readResponse{
		Record: *record,
		Copy:   h.service.ResolveCopy(*record, lang),
		Unread: record.Unread(),
	})
}
