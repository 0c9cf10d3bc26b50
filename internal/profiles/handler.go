package profiles

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"investor-desk/request-portal-backend/internal/apperrors"
	"investor-desk/request-portal-backend/internal/auth"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/profile", h.GetProfile)
	r.PUT("/profile", h.UpdateProfile)
}

func (h *Handler) GetProfile(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": auth.ErrMissingToken.Error()})
		return
	}
	profile, err := h.service.GetProfile(c.Request.Context(), principal.UserID)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error(), "code": apperrors.Code(err)})
		return
	}
	c.JSON(http.StatusOK, profile)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": auth.ErrMissingToken.Error()})
		return
	}
	var payload UpdateProfileRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation_failure"})
		return
	}
	profile, err := h.service.UpdateProfile(c.Request.Context(), principal.UserID, payload)
	if err != nil {
		c.JSON(apperrors.HTTPStatus(err), gin.H{"error": err.Error(), "code": apperrors.Code(err)})
		return
	}
	c.JSON(http.StatusOK, profile)
}
