// internal/domain/region/errors.go

package region

import (
	"errors"
	"fmt"
)

// Common errors
var (
	ErrUnknownRegion   = errors.New("unknown region")
	ErrUnknownVariable = errors.New("unknown variable")
	ErrUnknownYear     = errors.New("unknown year")
)

// ConfigError reports a request that does not match the loaded catalog,
// which means the UI and the catalog disagree.
type ConfigError struct {
	Field string
	Value string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// UnknownVariable builds the config error for an unknown variable column
func UnknownVariable(column string) error {
	return &ConfigError{Field: "variable", Value: column, Err: ErrUnknownVariable}
}

// UnknownYear builds the config error for a year outside the catalog
func UnknownYear(year int) error {
	return &ConfigError{Field: "year", Value: fmt.Sprint(year), Err: ErrUnknownYear}
}

// IsConfigError reports whether err is a configuration-kind error
func IsConfigError(err error) bool {
	var cfgErr *ConfigError
	return errors.As(err, &cfgErr)
}
