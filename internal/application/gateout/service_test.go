package gateout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/depot/backend/internal/domain/depot"
	"github.com/depot/backend/internal/infrastructure/erp"
	"github.com/depot/backend/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestService wires a gate-out service against a stub upstream whose
// process endpoint is driven by the given handler
func newTestService(t *testing.T, process http.HandlerFunc) (*Service, *persistence.MemoryRegistrationStore, *atomic.Int32) {
	t.Helper()

	var processCalls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/gettokenNonAid"):
			json.NewEncoder(w).Encode(map[string]any{"token": "tok", "reqtime": "1700000000"})
		case strings.Contains(r.URL.Path, "/api/data/process/"):
			processCalls.Add(1)
			process(w, r)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)

	cfg := &erp.Config{BaseURL: ts.URL}
	broker, err := erp.NewTokenBroker(cfg, zap.NewNop())
	require.NoError(t, err)
	client, err := erp.NewClient(cfg, broker, zap.NewNop())
	require.NoError(t, err)

	store := persistence.NewMemoryRegistrationStore()
	return NewService(client, store, zap.NewNop()), store, &processCalls
}

func TestService_Create_EndToEnd(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var envelope struct {
			Reqid   string         `json:"reqid"`
			Token   string         `json:"token"`
			Reqtime string         `json:"reqtime"`
			Data    map[string]any `json:"data"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&envelope))
		assert.Equal(t, "Create_GateOut_Reuse", envelope.Reqid)
		assert.Equal(t, "tok", envelope.Token)
		assert.Equal(t, float64(5), envelope.Data["HangTauID"])
		assert.Equal(t, float64(111735), envelope.Data["NguoiTao"])
		assert.Equal(t, float64(1), envelope.Data["CongTyInHoaDon_PhiHaTang"])

		json.NewEncoder(w).Encode(map[string]any{"errorcode": 0, "result": "Success", "GateOutID": 9911})
	})

	result := svc.Create(ctx, validRequest())
	require.True(t, result.Success, "error: %s", result.ErrorMessage)
	assert.Equal(t, "Success", result.Data["result"])

	regs, err := store.ListByUser(ctx, 111735)
	require.NoError(t, err)
	require.Len(t, regs, 1, "exactly one registration must be recorded")
	assert.Equal(t, int64(111735), regs[0].UserID)
	assert.Equal(t, int64(5), regs[0].GateOutData.HangTauID)
	assert.NotEmpty(t, regs[0].ID)

	// The record carries the upstream response body, not the request
	assert.Equal(t, "Success", regs[0].ContainerData["result"])
	assert.Equal(t, float64(9911), regs[0].ContainerData["GateOutID"])
}

func TestService_Create_ValidationFailure(t *testing.T) {
	ctx := context.Background()
	svc, store, processCalls := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("upstream must not be called for an invalid request")
	})

	req := validRequest()
	req.SoXe = ""
	req.SoLuongCont = "abc"

	result := svc.Create(ctx, req)
	assert.False(t, result.Success)
	assert.Equal(t, "VALIDATION_FAILED", result.ErrorCode)
	assert.ElementsMatch(t, []string{"SoXe", "SoLuongCont"}, result.Fields)
	assert.Contains(t, result.ErrorMessage, "SoXe")
	assert.Contains(t, result.ErrorMessage, "SoLuongCont")

	assert.Equal(t, int32(0), processCalls.Load())
	assert.Equal(t, 0, store.Size())
}

func TestService_Create_BusinessFailure(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"errorcode":    17,
			"result":       "Failed",
			"errormessage": "Cont da duoc cap",
		})
	})

	result := svc.Create(ctx, validRequest())
	assert.False(t, result.Success)
	assert.Equal(t, "17", result.ErrorCode)
	assert.Equal(t, "Cont da duoc cap", result.ErrorMessage)
	assert.Empty(t, result.Hint)
	assert.Equal(t, 0, store.Size(), "failed registrations must not be recorded")
}

func TestService_Create_AuthFailureCarriesHint(t *testing.T) {
	ctx := context.Background()
	svc, _, processCalls := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	result := svc.Create(ctx, validRequest())
	assert.False(t, result.Success)
	assert.Equal(t, http.StatusUnauthorized, result.StatusCode)
	assert.NotEmpty(t, result.Hint)
	// One dispatch plus the single fresh-token retry
	assert.Equal(t, int32(2), processCalls.Load())
}

func TestService_Create_NetworkFailure(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	result := svc.Create(ctx, validRequest())
	assert.False(t, result.Success)
	assert.Equal(t, "UPSTREAM_UNAVAILABLE", result.ErrorCode)
	assert.Equal(t, http.StatusBadGateway, result.StatusCode)
}

func TestService_Create_StoreFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/gettokenNonAid") {
			json.NewEncoder(w).Encode(map[string]any{"token": "tok", "reqtime": "1"})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"errorcode": 0, "result": "Success"})
	}))
	t.Cleanup(ts.Close)

	cfg := &erp.Config{BaseURL: ts.URL}
	broker, err := erp.NewTokenBroker(cfg, zap.NewNop())
	require.NoError(t, err)
	client, err := erp.NewClient(cfg, broker, zap.NewNop())
	require.NoError(t, err)

	svc := NewService(client, failingStore{}, zap.NewNop())

	result := svc.Create(ctx, validRequest())
	assert.True(t, result.Success, "a store failure must not fail the registration")
}

type failingStore struct{}

func (failingStore) Save(ctx context.Context, reg *depot.RegisteredContainer) error {
	return errors.New("database is down")
}

func (failingStore) ListByUser(ctx context.Context, userID int64) ([]*depot.RegisteredContainer, error) {
	return nil, errors.New("database is down")
}

func (failingStore) Close() error { return nil }
