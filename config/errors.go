package config

import "fmt"

// ConfigurationError reports an invalid or out-of-range parameter.
// It is only produced before a run starts.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config: invalid %s: %s", e.Field, e.Reason)
}
