// internal/config/validator.go
//
// Fail-fast validation of the loaded Config.  The loader calls
// validateStruct right after unmarshalling; a missing field, an unknown
// environment name, or a session secret shorter than 32 bytes aborts
// startup instead of surfacing mid-request.
package config

import "github.com/go-playground/validator/v10"

var v = validator.New()

// validateStruct returns the first tag violation, or nil.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
