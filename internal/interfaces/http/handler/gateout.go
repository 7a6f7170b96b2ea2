package handler

import (
	"net/http"

	"github.com/depot/backend/internal/application/gateout"
	"github.com/depot/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// GateOutHandler serves the gate-out registration flow
type GateOutHandler struct {
	BaseHandler
	service *gateout.Service
}

// NewGateOutHandler creates a gate-out handler
func NewGateOutHandler(service *gateout.Service) *GateOutHandler {
	return &GateOutHandler{service: service}
}

// RegisterRoutes registers the gate-out routes
func (h *GateOutHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/gateout")
	g.POST("", h.Create)
	g.GET("/registrations", h.ListRegistrations)
}

// Create handles POST /gateout
func (h *GateOutHandler) Create(c *gin.Context) {
	var req gateout.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "request body is not valid JSON")
		return
	}

	result := h.service.Create(c.Request.Context(), &req)
	if result.Success {
		h.Created(c, result.Data)
		return
	}

	c.JSON(statusForResult(result), dto.Response{
		Success: false,
		Error: &dto.ErrorInfo{
			Code:      errorCodeForResult(result),
			Message:   result.ErrorMessage,
			RequestID: getRequestID(c),
			Fields:    result.Fields,
			Hint:      result.Hint,
		},
	})
}

// ListRegistrations handles GET /gateout/registrations?user_id=N
func (h *GateOutHandler) ListRegistrations(c *gin.Context) {
	var req dto.UserScopedRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	regs, err := h.service.ListRegistrations(c.Request.Context(), req.UserID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, regs)
}

// statusForResult maps a gate-out failure to an HTTP status. Validation
// problems are the caller's fault; everything else reflects the upstream.
func statusForResult(result gateout.Result) int {
	switch result.ErrorCode {
	case "VALIDATION_FAILED":
		return http.StatusBadRequest
	case "AUTH_FAILED":
		return http.StatusBadGateway
	case "UPSTREAM_UNAVAILABLE":
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

func errorCodeForResult(result gateout.Result) string {
	switch result.ErrorCode {
	case "VALIDATION_FAILED":
		return dto.ErrCodeValidation
	case "AUTH_FAILED":
		return dto.ErrCodeUpstreamAuth
	case "UPSTREAM_UNAVAILABLE":
		return dto.ErrCodeUpstreamUnavailable
	default:
		return dto.ErrCodeUpstreamRejected
	}
}
