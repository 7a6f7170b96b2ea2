package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// maxAuthRetries bounds token-refresh retries per call. The upstream rejects
// a stale token with 401/403; one refresh-and-retry recovers the common
// case, a second rejection is terminal.
const maxAuthRetries = 1

// Client dispatches request envelopes to the upstream process endpoints and
// classifies outcomes. It owns no token state; that lives in the broker.
type Client struct {
	config     *Config
	broker     *TokenBroker
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a dispatcher over the given broker
func NewClient(config *Config, broker *TokenBroker, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		config: config,
		broker: broker,
		httpClient: &http.Client{
			Timeout: time.Duration(config.DataTimeoutSeconds) * time.Second,
		},
		logger: logger,
	}, nil
}

// Call posts {reqid, token, reqtime, data} to the operation's process
// endpoint and returns the classified outcome. A 401/403 invalidates the
// held token and retries exactly once with a fresh one.
func (c *Client) Call(ctx context.Context, reqid string, payload any) DispatchResult {
	for attempt := 0; ; attempt++ {
		tok, ok := c.broker.Cached(reqid)
		if !ok {
			var authErr *AuthError
			tok, authErr = c.broker.Acquire(ctx, reqid, nil)
			if authErr != nil {
				return DispatchResult{
					Kind:         ResultAuthFailure,
					StatusCode:   authErr.StatusCode,
					ErrorMessage: authErr.Message,
				}
			}
		}

		res, authRejected := c.dispatch(ctx, reqid, tok, payload)
		if !authRejected {
			return res
		}

		c.broker.Invalidate(reqid)
		if attempt >= maxAuthRetries {
			c.logger.Warn("upstream rejected fresh token",
				zap.String("reqid", reqid),
				zap.Int("status", res.StatusCode),
			)
			return res
		}
		c.logger.Debug("token rejected, retrying with fresh token", zap.String("reqid", reqid))
	}
}

// dispatch performs one HTTP exchange. The second return value reports an
// auth-class rejection so Call can decide whether to retry.
func (c *Client) dispatch(ctx context.Context, reqid string, tok Token, payload any) (DispatchResult, bool) {
	envelope := processEnvelope{
		Reqid:   reqid,
		Token:   tok.Token,
		Reqtime: tok.Reqtime,
		Data:    payload,
	}

	body, err := json.Marshal(envelope)
	if err != nil {
		return DispatchResult{
			Kind:         ResultBusinessFailure,
			ErrorCode:    "ENCODE_FAILED",
			ErrorMessage: fmt.Sprintf("erp: failed to encode request: %v", err),
		}, false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+processPathPrefix+reqid, bytes.NewReader(body))
	if err != nil {
		return DispatchResult{
			Kind:         ResultNetworkFailure,
			ErrorMessage: fmt.Sprintf("erp: failed to create request: %v", err),
		}, false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts and connection errors both land here
		return DispatchResult{
			Kind:         ResultNetworkFailure,
			ErrorMessage: fmt.Sprintf("erp: request failed: %v", err),
		}, false
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return DispatchResult{
			Kind:         ResultNetworkFailure,
			StatusCode:   resp.StatusCode,
			ErrorMessage: fmt.Sprintf("erp: failed to read response: %v", err),
		}, false
	}

	return c.classify(resp.StatusCode, raw)
}

// classify turns an HTTP outcome into a tagged result. A 2xx body with
// neither an explicit success nor an explicit failure marker is classified
// as success; the upstream is known to return such bodies and callers are
// expected to tolerate them.
func (c *Client) classify(statusCode int, raw []byte) (DispatchResult, bool) {
	switch {
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		res := DispatchResult{
			Kind:         ResultAuthFailure,
			StatusCode:   statusCode,
			Raw:          raw,
			ErrorMessage: fmt.Sprintf("erp: upstream rejected token (HTTP %d)", statusCode),
		}
		if body := parseBody(raw); body != nil {
			res.Body = body
			if msg := upstreamMessage(body); msg != "" {
				res.ErrorMessage = msg
			}
		}
		return res, true

	case statusCode >= 500:
		return DispatchResult{
			Kind:         ResultNetworkFailure,
			StatusCode:   statusCode,
			Raw:          raw,
			ErrorMessage: fmt.Sprintf("erp: upstream error (HTTP %d)", statusCode),
		}, false

	case statusCode >= 400:
		return DispatchResult{
			Kind:         ResultBusinessFailure,
			StatusCode:   statusCode,
			Raw:          raw,
			ErrorCode:    fmt.Sprintf("HTTP_%d", statusCode),
			ErrorMessage: fmt.Sprintf("erp: upstream rejected request (HTTP %d)", statusCode),
		}, false
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		return DispatchResult{Kind: ResultSuccess, StatusCode: statusCode}, false
	}

	body := parseBody(raw)
	if body == nil {
		return DispatchResult{
			Kind:         ResultBusinessFailure,
			StatusCode:   statusCode,
			Raw:          raw,
			ErrorCode:    "INVALID_RESPONSE",
			ErrorMessage: "erp: response body is not valid JSON",
		}, false
	}

	errorCode := DecodeField(body["errorcode"])
	result := DecodeField(body["result"])
	if result == "Failed" || (errorCode != "" && errorCode != "0") {
		msg := upstreamMessage(body)
		if msg == "" {
			msg = "erp: upstream reported failure"
		}
		return DispatchResult{
			Kind:         ResultBusinessFailure,
			StatusCode:   statusCode,
			Raw:          raw,
			Body:         body,
			ErrorCode:    errorCode,
			ErrorMessage: msg,
		}, false
	}

	return DispatchResult{
		Kind:       ResultSuccess,
		StatusCode: statusCode,
		Raw:        raw,
		Body:       body,
	}, false
}

func parseBody(raw []byte) map[string]any {
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil
	}
	return body
}

// upstreamMessage pulls the human-readable error out of a response body;
// the upstream is not consistent about which key it uses
func upstreamMessage(body map[string]any) string {
	for _, key := range []string{"errormessage", "message", "error"} {
		if msg := DecodeField(body[key]); msg != "" {
			return msg
		}
	}
	return ""
}
