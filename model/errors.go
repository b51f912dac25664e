package model

import "fmt"

// ConfigError is a malformed or missing configuration entry. It is fatal:
// no check runs once one is found.
type ConfigError struct {
	Key string
	Err error
}

func (e *ConfigError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("config error: %s", e.Err)
	}
	return fmt.Sprintf("config error [%s]: %s", e.Key, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func NewConfigError(key string, format string, args ...any) *ConfigError {
	return &ConfigError{Key: key, Err: fmt.Errorf(format, args...)}
}

// ConnectionError is a source that could not be reached or a query that
// could not execute. It fails the check it happened in and nothing else.
type ConnectionError struct {
	Source string
	Err    error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connection error [%s]: %s", e.Source, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}
