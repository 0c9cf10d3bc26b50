package reports

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"investor-desk/request-portal-backend/internal/apperrors"
	"investor-desk/request-portal-backend/internal/auth"
	"investor-desk/request-portal-backend/internal/reports/export"
)

// Handler handles HTTP requests for reporting operations
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new reports handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers reporting routes. Reports are staff only.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports", auth.RequireRole(auth.RoleAdmin))
	{
		reports.GET("/requests", h.requestReport)
	}
}

// requestReport handles GET /api/v1/reports/requests?format=json|csv|xlsx|pdf
func (h *Handler) requestReport(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		h.respondError(c, apperrors.Validation("format", err.Error()))
		return
	}
	filters, err := ParseFilters(c.Request.URL.Query())
	if err != nil {
		h.respondError(c, err)
		return
	}

	if format == export.FormatJSON {
		rows, err := h.service.Generate(c.Request.Context(), filters)
		if err != nil {
			h.respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, ReportResponse{Rows: rows, Count: len(rows), GeneratedAt: h.service.now().UTC()})
		return
	}

	var buf bytes.Buffer
	count, err := h.service.Export(c.Request.Context(), &buf, format, filters)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+Filename("requests-report", format, h.service.now())+`"`)
	c.Header("X-Report-Rows", strconv.Itoa(count))
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Failed to generate report", zap.Error(err))
		c.JSON(status, gin.H{"error": "failed to generate report", "code": apperrors.Code(err)})
		return
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": apperrors.Code(err)})
}
