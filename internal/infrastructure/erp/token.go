package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TokenBroker acquires and holds per-reqid tokens. Expiry is reactive:
// tokens live until the dispatcher reports an auth-class rejection and calls
// Invalidate. Concurrent acquisitions for the same reqid may each hit the
// upstream; the last write wins, which is harmless because every minted
// token for a reqid is equally valid.
type TokenBroker struct {
	config     *Config
	httpClient *http.Client
	logger     *zap.Logger

	mu     sync.RWMutex
	tokens map[string]Token
}

// NewTokenBroker creates a broker with the given configuration
func NewTokenBroker(config *Config, logger *zap.Logger) (*TokenBroker, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TokenBroker{
		config: config,
		httpClient: &http.Client{
			Timeout: time.Duration(config.TokenTimeoutSeconds) * time.Second,
		},
		logger: logger,
		tokens: make(map[string]Token),
	}, nil
}

// Cached returns the held token for a reqid, if any
func (b *TokenBroker) Cached(reqid string) (Token, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	tok, ok := b.tokens[reqid]
	return tok, ok
}

// Acquire requests a fresh token for the reqid and caches it on success.
// extra is merged into the token request data; the upstream accepts an empty
// object for most operations.
func (b *TokenBroker) Acquire(ctx context.Context, reqid string, extra map[string]any) (Token, *AuthError) {
	data := map[string]any{}
	for k, v := range extra {
		data[k] = v
	}

	reqBody := tokenRequest{Reqid: reqid, Data: data}
	path := tokenNonAidPath
	if b.config.IsPrivileged(reqid) {
		reqBody.Aid = b.config.AID
		reqBody.Pwd = b.config.Pwd
		path = tokenPath
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return Token{}, &AuthError{Message: fmt.Sprintf("erp: failed to encode token request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return Token{}, &AuthError{Message: fmt.Sprintf("erp: failed to create token request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return Token{}, &AuthError{Message: fmt.Sprintf("erp: token request failed: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return Token{}, &AuthError{Message: fmt.Sprintf("erp: failed to read token response: %v", err), StatusCode: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return Token{}, &AuthError{
			Message:    fmt.Sprintf("erp: token endpoint returned HTTP %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	var tokResp tokenResponse
	if err := json.Unmarshal(body, &tokResp); err != nil {
		return Token{}, &AuthError{Message: fmt.Sprintf("erp: invalid token response: %v", err), StatusCode: resp.StatusCode}
	}

	reqtime := tokResp.ReqtimeString()
	if tokResp.Token == "" || reqtime == "" {
		msg := tokResp.Error
		if msg == "" {
			msg = tokResp.Message
		}
		if msg == "" {
			msg = "erp: token response missing token or reqtime"
		}
		return Token{}, &AuthError{Message: msg, StatusCode: resp.StatusCode}
	}

	tok := Token{
		Token:      tokResp.Token,
		Reqtime:    reqtime,
		Reqid:      reqid,
		AcquiredAt: time.Now(),
	}

	b.mu.Lock()
	b.tokens[reqid] = tok
	b.mu.Unlock()

	b.logger.Debug("acquired upstream token", zap.String("reqid", reqid))
	return tok, nil
}

// Invalidate clears the held token for a reqid. Called by the dispatcher
// after an auth-class rejection.
func (b *TokenBroker) Invalidate(reqid string) {
	b.mu.Lock()
	delete(b.tokens, reqid)
	b.mu.Unlock()
	b.logger.Debug("invalidated upstream token", zap.String("reqid", reqid))
}
