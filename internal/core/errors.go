package core

import "fmt"

// ConfigError indicates that a required configuration value is missing. It is
// raised before any network call is attempted.
type ConfigError struct {
	Key string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", e.Key)
}

// UpstreamError indicates a non-success or structurally unusable response from
// a remote API. Body carries the response body, or a redacted summary when
// surfacing the payload would leak more than it explains.
type UpstreamError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s API error (status %d): %s", e.Service, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s API error: %s", e.Service, e.Body)
}
