package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ConfigSource configuration data source
// Keys of the returned map are dot separated, such as "intercept.max_interceptors"
type ConfigSource interface {
	// Name data source name (for logs and debugging)
	Name() string

	// Priority higher values override lower ones
	// Suggested: config file 10, environment variables 50
	Priority() int

	// Load configuration data
	Load() (map[string]any, error)
}

// FileSource file data source (yaml, json, toml ... anything viper reads)
type FileSource struct {
	path     string
	priority int
}

// NewFileSource creates a file data source
func NewFileSource(path string, priority int) *FileSource {
	return &FileSource{path: path, priority: priority}
}

// Name data source name
func (s *FileSource) Name() string {
	return "file:" + s.path
}

// Priority data source priority
func (s *FileSource) Priority() int {
	return s.priority
}

// Load reads the file; a missing file yields an empty configuration
func (s *FileSource) Load() (map[string]any, error) {
	if _, err := os.Stat(s.path); err != nil {
		if os.IsNotExist(err) {
			return make(map[string]any), nil
		}
		return nil, fmt.Errorf("access config file %s: %w", s.path, err)
	}

	v := viper.New()
	v.SetConfigFile(s.path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config file %s: %w", s.path, err)
	}

	return flattenMap("", v.AllSettings()), nil
}

// EnvSource environment variable data source
type EnvSource struct {
	prefix   string
	priority int
	bindings map[string]string // config key -> env key, e.g. "intercept.max_interceptors" -> "INTERCEPT_MAX"
}

// NewEnvSource creates an environment variable data source
func NewEnvSource(prefix string, priority int) *EnvSource {
	return &EnvSource{
		prefix:   prefix,
		priority: priority,
		bindings: make(map[string]string),
	}
}

// AddBinding maps a config key to an environment variable (prefix is added when missing)
// Use bindings for keys that contain underscores
func (s *EnvSource) AddBinding(key, envKey string) *EnvSource {
	s.bindings[key] = envKey
	return s
}

// Name data source name
func (s *EnvSource) Name() string {
	return "env:" + s.prefix
}

// Priority data source priority
func (s *EnvSource) Priority() int {
	return s.priority
}

// Load reads bound variables, or every PREFIX_* variable when there are no bindings
// PREFIX_INTERCEPT_ENABLED -> intercept.enabled
func (s *EnvSource) Load() (map[string]any, error) {
	result := make(map[string]any)

	if len(s.bindings) > 0 {
		for key, envKey := range s.bindings {
			fullEnvKey := envKey
			if s.prefix != "" && !strings.HasPrefix(envKey, s.prefix+"_") {
				fullEnvKey = s.prefix + "_" + envKey
			}
			if value, ok := os.LookupEnv(fullEnvKey); ok && value != "" {
				result[key] = value
			}
		}
		return result, nil
	}

	if s.prefix == "" {
		return result, nil
	}

	prefix := s.prefix + "_"
	for _, env := range os.Environ() {
		key, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(key, prefix) {
			continue
		}
		configKey := strings.ToLower(strings.TrimPrefix(key, prefix))
		result[strings.ReplaceAll(configKey, "_", ".")] = value
	}
	return result, nil
}

// flattenMap {"intercept": {"enabled": true}} -> {"intercept.enabled": true}
func flattenMap(prefix string, data map[string]any) map[string]any {
	result := make(map[string]any)

	for key, value := range data {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}

		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(fullKey, nested) {
				result[k] = v
			}
			continue
		}
		result[fullKey] = value
	}
	return result
}
