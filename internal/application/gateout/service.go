package gateout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/depot/backend/internal/domain/depot"
	"github.com/depot/backend/internal/infrastructure/erp"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// reqidCreateGateOut is the upstream operation for registering a gate-out
const reqidCreateGateOut = "Create_GateOut_Reuse"

// authHint is returned alongside auth-class failures so the dashboard can
// show something actionable instead of a bare status code
const authHint = "Upstream authentication failed. The operation token was refreshed and rejected again; check the configured ERP credentials or try again later."

// Dispatcher is the upstream call surface the gate-out flow depends on
type Dispatcher interface {
	Call(ctx context.Context, reqid string, payload any) erp.DispatchResult
}

// Result is the outcome of a gate-out registration attempt. Failures carry
// the upstream message, error code and HTTP status where known; validation
// failures list every offending field.
type Result struct {
	Success      bool           `json:"success"`
	Data         map[string]any `json:"data,omitempty"`
	ErrorCode    string         `json:"error_code,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	StatusCode   int            `json:"status_code,omitempty"`
	Hint         string         `json:"hint,omitempty"`
	Fields       []string       `json:"fields,omitempty"`
}

// Service runs the gate-out registration flow: validate and sanitize the
// request, dispatch it upstream, and record successful registrations locally.
type Service struct {
	dispatcher Dispatcher
	store      depot.RegistrationStore
	logger     *zap.Logger
}

// NewService creates a gate-out service
func NewService(dispatcher Dispatcher, store depot.RegistrationStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		dispatcher: dispatcher,
		store:      store,
		logger:     logger,
	}
}

// Create registers a gate-out upstream. The local registration record is
// best-effort: a store failure is logged and swallowed, never surfaced to
// the caller, because the upstream registration has already happened.
func (s *Service) Create(ctx context.Context, req *Request) Result {
	data, invalid := sanitize(req)
	if len(invalid) > 0 {
		return Result{
			ErrorCode:    "VALIDATION_FAILED",
			ErrorMessage: fmt.Sprintf("missing or invalid fields: %s", strings.Join(invalid, ", ")),
			Fields:       invalid,
		}
	}

	res := s.dispatcher.Call(ctx, reqidCreateGateOut, data)
	if !res.OK() {
		return s.failure(res)
	}

	s.persist(ctx, data, res.Body)

	return Result{
		Success:    true,
		Data:       res.Body,
		StatusCode: res.StatusCode,
	}
}

// ListRegistrations returns the local registration records for a user
func (s *Service) ListRegistrations(ctx context.Context, userID int64) ([]*depot.RegisteredContainer, error) {
	return s.store.ListByUser(ctx, userID)
}

// persist records the successful registration with the upstream response
// body. Failures are swallowed.
func (s *Service) persist(ctx context.Context, data depot.GateOutData, body map[string]any) {
	reg := &depot.RegisteredContainer{
		ID:            uuid.New().String(),
		UserID:        data.NguoiTao,
		ContainerData: body,
		GateOutData:   data,
		RegisteredAt:  time.Now(),
	}

	if err := s.store.Save(ctx, reg); err != nil {
		s.logger.Error("failed to record gate-out registration",
			zap.String("registration_id", reg.ID),
			zap.Int64("user_id", reg.UserID),
			zap.Error(err),
		)
	}
}

// failure maps a dispatch outcome to a reportable result
func (s *Service) failure(res erp.DispatchResult) Result {
	out := Result{
		ErrorCode:    res.ErrorCode,
		ErrorMessage: res.ErrorMessage,
		StatusCode:   res.StatusCode,
	}

	switch res.Kind {
	case erp.ResultAuthFailure:
		if out.ErrorCode == "" {
			out.ErrorCode = "AUTH_FAILED"
		}
		out.Hint = authHint
	case erp.ResultNetworkFailure:
		if out.ErrorCode == "" {
			out.ErrorCode = "UPSTREAM_UNAVAILABLE"
		}
	default:
		if out.ErrorCode == "" {
			out.ErrorCode = "UPSTREAM_REJECTED"
		}
	}
	return out
}
