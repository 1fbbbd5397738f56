package autoconfig

import "fmt"

// ConfigurationException reports a fatal autoconfiguration failure:
// an unknown provider name, a malformed property value, or a provider
// constructor error (spec.md §4.5).
type ConfigurationException struct {
	Property string
	Message  string
	Cause    error
}

func (e *ConfigurationException) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("autoconfigure: %s (property %q): %v", e.Message, e.Property, e.Cause)
	}
	return fmt.Sprintf("autoconfigure: %s (%s)", e.Message, e.Property)
}

func (e *ConfigurationException) Unwrap() error { return e.Cause }

func newConfigError(property, message string, cause error) error {
	return &ConfigurationException{Property: property, Message: message, Cause: cause}
}
