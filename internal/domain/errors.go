package domain

import (
	"errors"
	"fmt"
)

// ErrSourceNotFound reports a run-by-name request for a source that is
// not configured.
var ErrSourceNotFound = errors.New("source not found")

// ConfigurationError marks malformed or unknown configuration: an
// unrecognized type tag, a missing required field, or a duplicate
// registry name. It is fatal at startup and never retried.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// ConfigErrorf builds a ConfigurationError from a format string.
func ConfigErrorf(format string, args ...interface{}) error {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// MissingKeyError builds the ConfigurationError for a required config
// key that was not provided.
func MissingKeyError(typeTag, key string) error {
	return ConfigErrorf("%s config is missing required field %q", typeTag, key)
}

// SourceUnreachableError reports a remote source that failed its
// construction-time connectivity probe. Fatal at startup.
type SourceUnreachableError struct {
	Source string
	Err    error
}

func (e *SourceUnreachableError) Error() string {
	return fmt.Sprintf("source %s is unreachable: %v", e.Source, e.Err)
}

func (e *SourceUnreachableError) Unwrap() error { return e.Err }
