// Package config loads layered configuration (files, environment) through viper.
package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// Loader configuration loader (multiple data sources, merged by priority)
// Implements component.ConfigLoader
type Loader struct {
	sources      []ConfigSource
	mergedConfig map[string]any
	v            *viper.Viper
	loadedFiles  []string
}

// NewLoader creates a configuration loader
func NewLoader(sources ...ConfigSource) *Loader {
	return &Loader{
		sources:      sources,
		mergedConfig: make(map[string]any),
		v:            viper.New(),
	}
}

// AddSource adds a data source
func (l *Loader) AddSource(source ConfigSource) *Loader {
	l.sources = append(l.sources, source)
	return l
}

// Load loads and merges every data source (higher priority wins)
func (l *Loader) Load() error {
	sort.SliceStable(l.sources, func(i, j int) bool {
		return l.sources[i].Priority() < l.sources[j].Priority()
	})

	l.mergedConfig = make(map[string]any)
	l.loadedFiles = l.loadedFiles[:0]
	for _, source := range l.sources {
		data, err := source.Load()
		if err != nil {
			return fmt.Errorf("load source %s: %w", source.Name(), err)
		}

		if fileSource, ok := source.(*FileSource); ok {
			l.loadedFiles = append(l.loadedFiles, fileSource.path)
		}

		for key, value := range data {
			l.mergedConfig[key] = value
		}
	}

	// Every key is written as an override so nested reads see the merged view
	l.v = viper.New()
	for key, value := range unflattenMap(l.mergedConfig) {
		l.v.Set(key, value)
	}
	return nil
}

// unflattenMap {"intercept.enabled": true} -> {"intercept": {"enabled": true}}
func unflattenMap(flat map[string]any) map[string]any {
	result := make(map[string]any)

	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	// shorter keys first, so a nested key overrides a scalar parent
	sort.Strings(keys)

	for _, key := range keys {
		parts := strings.Split(key, ".")
		current := result
		for _, part := range parts[:len(parts)-1] {
			nested, ok := current[part].(map[string]any)
			if !ok {
				nested = make(map[string]any)
				current[part] = nested
			}
			current = nested
		}
		current[parts[len(parts)-1]] = flat[key]
	}
	return result
}

// Unmarshal decodes a configuration section into a struct (mapstructure tags)
func (l *Loader) Unmarshal(key string, v any) error {
	return l.v.UnmarshalKey(key, v)
}

// Get returns a configuration value
func (l *Loader) Get(key string) any {
	return l.v.Get(key)
}

// GetString returns a string configuration value
func (l *Loader) GetString(key string) string {
	return l.v.GetString(key)
}

// GetInt returns an integer configuration value
func (l *Loader) GetInt(key string) int {
	return l.v.GetInt(key)
}

// GetBool returns a boolean configuration value
func (l *Loader) GetBool(key string) bool {
	return l.v.GetBool(key)
}

// IsSet checks whether a configuration key exists
func (l *Loader) IsSet(key string) bool {
	return l.v.IsSet(key)
}

// GetLoadedFiles lists the files read by the last Load
func (l *Loader) GetLoadedFiles() []string {
	return l.loadedFiles
}
