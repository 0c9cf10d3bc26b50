package requests

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"investor-desk/request-portal-backend/internal/apperrors"
	"investor-desk/request-portal-backend/internal/auth"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes expects rg to be behind auth.Middleware.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	reqs := rg.Group("/requests")
	{
		reqs.GET("/transitions", h.GetTransitionTable)
		reqs.GET("/:id", h.Get)
		reqs.GET("/:id/transitions", h.GetAllowedTransitions)
		reqs.POST("/:id/submit", auth.RequireRole(auth.RoleInvestor), h.Submit)

		staff := reqs.Group("", auth.RequireRole(auth.RoleAdmin))
		staff.GET("/:id/events", h.ListEvents)
		staff.POST("/:id/comments", h.AddComment)
		staff.POST("/:id/transition", h.Transition)
		staff.POST("/:id/screening", h.named(h.service.MoveToScreening))
		staff.POST("/:id/pending-info", h.named(h.service.MoveToPendingInfo))
		staff.POST("/:id/compliance-review", h.named(h.service.MoveToComplianceReview))
		staff.POST("/:id/approve", h.named(h.service.Approve))
		staff.POST("/:id/reject", h.named(h.service.Reject))
		staff.POST("/:id/settle", h.named(h.service.StartSettlement))
		staff.POST("/:id/complete", h.named(h.service.Complete))
	}
}

type transitionBody struct {
	ToStatus       Status `json:"to_status"`
	Note           string `json:"note"`
	ExpectedStatus Status `json:"expected_status"`
}

type noteBody struct {
	Note string `json:"note"`
}

type commentBody struct {
	Comment string `json:"comment"`
}

func (h *Handler) GetTransitionTable(c *gin.Context) {
	c.JSON(http.StatusOK, TransitionTable())
}

func (h *Handler) Get(c *gin.Context) {
	id, principal, ok := h.parseCall(c)
	if !ok {
		return
	}

	var req *Request
	var err error
	if principal.IsAdmin() {
		req, err = h.service.GetRequest(c.Request.Context(), id)
	} else {
		req, err = h.service.GetRequestForInvestor(c.Request.Context(), id, principal.UserID)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) GetAllowedTransitions(c *gin.Context) {
	id, principal, ok := h.parseCall(c)
	if !ok {
		return
	}
	if !principal.IsAdmin() {
		if _, err := h.service.GetRequestForInvestor(c.Request.Context(), id, principal.UserID); err != nil {
			h.respondError(c, err)
			return
		}
	}

	allowed, err := h.service.AllowedTransitions(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"request_id": id, "allowed": allowed})
}

func (h *Handler) ListEvents(c *gin.Context) {
	id, _, ok := h.parseCall(c)
	if !ok {
		return
	}
	events, err := h.service.ListEvents(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) AddComment(c *gin.Context) {
	id, principal, ok := h.parseCall(c)
	if !ok {
		return
	}
	var body commentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "code": "validation_failure"})
		return
	}
	comment, err := h.service.AddComment(c.Request.Context(), id, principal.UserID, body.Comment)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func (h *Handler) Submit(c *gin.Context) {
	id, principal, ok := h.parseCall(c)
	if !ok {
		return
	}
	result, err := h.service.Submit(c.Request.Context(), id, principal.UserID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) Transition(c *gin.Context) {
	id, principal, ok := h.parseCall(c)
	if !ok {
		return
	}

	var body transitionBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation_failure"})
		return
	}

	// Reject keeps its note requirement on the generic route too.
	if body.ToStatus == StatusRejected && strings.TrimSpace(body.Note) == "" {
		h.respondError(c, apperrors.Validation("note", "a rejection reason is required"))
		return
	}

	result, err := h.service.Transition(c.Request.Context(), TransitionInput{
		RequestID:      id,
		ActorID:        &principal.UserID,
		ToStatus:       body.ToStatus,
		Note:           body.Note,
		ExpectedStatus: body.ExpectedStatus,
	})
	h.respondResult(c, result, err)
}

type namedOperation func(ctx context.Context, id uuid.UUID, actorID *uuid.UUID, note string) (*TransitionResult, error)

func (h *Handler) named(op namedOperation) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, principal, ok := h.parseCall(c)
		if !ok {
			return
		}

		// The note is optional and the body may be absent or chunked.
		var body noteBody
		if c.Request.Body != nil && c.Request.Body != http.NoBody {
			if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "validation_failure"})
				return
			}
		}

		result, err := op(c.Request.Context(), id, &principal.UserID, body.Note)
		h.respondResult(c, result, err)
	}
}

func (h *Handler) parseCall(c *gin.Context) (uuid.UUID, *auth.Principal, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request id", "code": "validation_failure"})
		return uuid.Nil, nil, false
	}
	principal, ok := auth.PrincipalFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": auth.ErrMissingToken.Error(), "code": "unauthorized"})
		return uuid.Nil, nil, false
	}
	return id, principal, true
}

func (h *Handler) respondResult(c *gin.Context, result *TransitionResult, err error) {
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("Request workflow operation failed", zap.Error(err))
		c.JSON(status, gin.H{"error": "internal error", "code": apperrors.Code(err)})
		return
	}

	body := gin.H{"error": err.Error(), "code": apperrors.Code(err)}
	var transitionErr *apperrors.TransitionError
	if errors.As(err, &transitionErr) {
		body["from_status"] = transitionErr.From
		body["to_status"] = transitionErr.To
	}
	c.JSON(status, body)
}
