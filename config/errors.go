package config

import "fmt"

// ConfigErrorType categorizes configuration failures.
type ConfigErrorType string

const (
	ErrTypeFileNotFound       ConfigErrorType = "file_not_found"
	ErrTypeParse              ConfigErrorType = "parse_error"
	ErrTypeEnv                ConfigErrorType = "env_error"
	ErrTypeValidation         ConfigErrorType = "validation_error"
	ErrTypeMissingCredentials ConfigErrorType = "missing_credentials"
)

// ConfigError is returned for any configuration problem. It is fatal: the
// monitor refuses to start.
type ConfigError struct {
	Type    ConfigErrorType
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
