package erp

import (
	"errors"
	"strings"
)

// Default timeouts, in seconds. Token calls are short; data calls may scan
// large upstream catalogs.
const (
	DefaultTokenTimeoutSeconds = 10
	DefaultDataTimeoutSeconds  = 30
)

// Config validation errors
var (
	ErrConfigMissingBaseURL = errors.New("erp: config missing base URL")
	ErrConfigPartialAuth    = errors.New("erp: aid and pwd must be set together")
)

// Config holds the upstream ERP API connection settings. AID/Pwd are the
// optional privileged credentials; when set, reqids listed in Privileged are
// tokenized through the credentialed endpoint.
type Config struct {
	BaseURL             string
	AID                 string
	Pwd                 string
	TokenTimeoutSeconds int
	DataTimeoutSeconds  int
	Privileged          []string
}

// NewConfig creates a Config with default timeouts
func NewConfig(baseURL string) *Config {
	return &Config{
		BaseURL:             baseURL,
		TokenTimeoutSeconds: DefaultTokenTimeoutSeconds,
		DataTimeoutSeconds:  DefaultDataTimeoutSeconds,
	}
}

// Validate checks the configuration and applies defaults
func (c *Config) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return ErrConfigMissingBaseURL
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if (c.AID == "") != (c.Pwd == "") {
		return ErrConfigPartialAuth
	}
	if c.TokenTimeoutSeconds <= 0 {
		c.TokenTimeoutSeconds = DefaultTokenTimeoutSeconds
	}
	if c.DataTimeoutSeconds <= 0 {
		c.DataTimeoutSeconds = DefaultDataTimeoutSeconds
	}
	return nil
}

// IsPrivileged reports whether the reqid requires the credentialed token
// endpoint. Only meaningful when credentials are configured.
func (c *Config) IsPrivileged(reqid string) bool {
	if c.AID == "" {
		return false
	}
	for _, r := range c.Privileged {
		if r == reqid {
			return true
		}
	}
	return false
}
