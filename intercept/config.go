package intercept

import (
	"github.com/KOMKZ/go-yogan-intercept/event"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config intercept component configuration
type Config struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxInterceptors int           `mapstructure:"max_interceptors"`
	MaxListeners    int           `mapstructure:"max_listeners"`
	Metrics         MetricsConfig `mapstructure:"metrics"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Enabled:         true,
		MaxInterceptors: DefaultMaxInterceptors,
		MaxListeners:    event.DefaultMaxListeners,
	}
}

// Validate checks the ceilings are non-negative
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.MaxInterceptors, validation.Min(0)),
		validation.Field(&c.MaxListeners, validation.Min(0)),
	)
}

// Options converts the configuration to emitter options
func (c Config) Options() []Option {
	return []Option{
		WithMaxInterceptors(c.MaxInterceptors),
		WithBaseOptions(event.WithMaxListeners(c.MaxListeners)),
	}
}
