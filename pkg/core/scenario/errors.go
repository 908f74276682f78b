package scenario

import "fmt"

// ConfigError reports invalid or contradictory input parameters. It is
// detected before any simulation starts and surfaced verbatim to the
// caller; it is never retried.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "configuration error: " + e.Msg }

// Errorf builds a ConfigError from a format string.
func Errorf(format string, args ...interface{}) *ConfigError {
	return &ConfigError{Msg: fmt.Sprintf(format, args...)}
}
