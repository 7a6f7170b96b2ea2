package erp

import (
	"encoding/json"
	"time"
)

// Upstream endpoints relative to the configured base URL
const (
	tokenPath            = "/api/data/util/gettoken"
	tokenNonAidPath      = "/api/data/util/gettokenNonAid"
	processPathPrefix    = "/api/data/process/"
	maxResponseBodyBytes = 10 * 1024 * 1024
)

// Token is a per-reqid authentication pair minted by the upstream. A token
// is usable only for the reqid it was minted for; validity is discovered
// reactively through a failed call, never by local expiry.
type Token struct {
	Token      string
	Reqtime    string
	Reqid      string
	AcquiredAt time.Time
}

// AuthError reports a failed token acquisition or a terminal upstream
// authentication rejection
type AuthError struct {
	Message    string
	StatusCode int
}

// Error implements the error interface
func (e *AuthError) Error() string {
	return e.Message
}

// ResultKind classifies a dispatched call outcome
type ResultKind string

const (
	ResultSuccess         ResultKind = "success"
	ResultBusinessFailure ResultKind = "business_failure"
	ResultAuthFailure     ResultKind = "auth_failure"
	ResultNetworkFailure  ResultKind = "network_failure"
)

// DispatchResult is the tagged outcome of a dispatched upstream call. Every
// outcome is a value, never a panic or a returned error, so callers
// pattern-match on Kind without try/catch-style wrapping at each site.
type DispatchResult struct {
	Kind         ResultKind
	StatusCode   int
	Raw          []byte
	Body         map[string]any
	ErrorCode    string
	ErrorMessage string
}

// OK reports whether the call succeeded
func (r DispatchResult) OK() bool {
	return r.Kind == ResultSuccess
}

// Rows extracts the listing rows from the response body. Listings arrive as
// {"data": [...]}; anything else yields an empty slice.
func (r DispatchResult) Rows() []map[string]any {
	list, ok := r.Body["data"].([]any)
	if !ok {
		return nil
	}
	rows := make([]map[string]any, 0, len(list))
	for _, item := range list {
		if row, ok := item.(map[string]any); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// processEnvelope is the request body for a process call
type processEnvelope struct {
	Reqid   string `json:"reqid"`
	Token   string `json:"token"`
	Reqtime string `json:"reqtime"`
	Data    any    `json:"data"`
}

// tokenRequest is the request body for both token endpoints; Aid/Pwd are
// present only on the credentialed variant
type tokenRequest struct {
	Reqid string `json:"reqid"`
	Aid   string `json:"aid,omitempty"`
	Pwd   string `json:"pwd,omitempty"`
	Data  any    `json:"data"`
}

// tokenResponse is the token endpoint response body
type tokenResponse struct {
	Token   string          `json:"token"`
	Reqtime json.RawMessage `json:"reqtime"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// ReqtimeString normalizes reqtime, which the upstream serves either as a
// string or a bare number
func (t *tokenResponse) ReqtimeString() string {
	if len(t.Reqtime) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(t.Reqtime, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(t.Reqtime, &n); err == nil {
		return n.String()
	}
	return ""
}
