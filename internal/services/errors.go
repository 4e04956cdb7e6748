package services

import (
	"errors"
	"fmt"
)

// ServiceError represents a failed exchange with the curation model: transport
// failure, non-2xx status, blocked prompt or a payload that breaks the schema
type ServiceError struct {
	Backend    string
	Operation  string
	Message    string
	StatusCode int
	Err        error
}

func (e *ServiceError) Error() string {
	msg := e.Backend + " " + e.Operation + " failed"
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += " - " + e.Err.Error()
	}
	return msg
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// ConfigurationError means the service cannot even attempt a request,
// typically because the API credential is missing
type ConfigurationError struct {
	Setting string
	Message string
	Err     error
}

func (e *ConfigurationError) Error() string {
	msg := "configuration error: " + e.Setting + " " + e.Message
	if e.Err != nil {
		msg += " - " + e.Err.Error()
	}
	return msg
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsConfigurationError reports whether err (or anything it wraps) is a ConfigurationError
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
