package component

// ConfigLoader configuration loader interface
//
// Components read their own configuration section through this interface
type ConfigLoader interface {
	// Get returns a configuration value (e.g., "intercept.max_interceptors")
	Get(key string) any

	// Unmarshal decodes a configuration section into a struct
	//
	//   var cfg intercept.Config
	//   if err := loader.Unmarshal("intercept", &cfg); err != nil {
	//       return err
	//   }
	Unmarshal(key string, v any) error

	// GetString returns a string value
	GetString(key string) string

	// GetInt returns an integer value
	GetInt(key string) int

	// GetBool returns a boolean value
	GetBool(key string) bool

	// IsSet checks whether a key exists
	IsSet(key string) bool
}
