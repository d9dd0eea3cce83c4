// Package env overlays environment variables on top of another config store.
//
// Every dotted key can be overridden by REQSCAN_<KEY> with dots replaced by
// underscores ("llm.model" is REQSCAN_LLM_MODEL). A few well-known variables
// of the model servers are honoured as aliases. Writes always go to the
// wrapped store; the environment is never modified.
package env

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
	"github.com/custodia-labs/reqscan/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.ConfigStore = (*Store)(nil)

// Prefix starts every reqscan environment variable.
const Prefix = "REQSCAN_"

// aliases maps config keys to third-party variables consulted after the
// REQSCAN_ variable.
var aliases = map[string][]string{
	"llm.base_url": {"OLLAMA_HOST"},
	"llm.api_key":  {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

// Store is a driven.ConfigStore that prefers environment values.
type Store struct {
	base   driven.ConfigStore
	lookup func(string) (string, bool)
}

// New wraps base with an environment overlay.
func New(base driven.ConfigStore) *Store {
	return &Store{base: base, lookup: os.LookupEnv}
}

// VarName returns the environment variable for a dotted key.
func VarName(key string) string {
	return Prefix + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

// LoadDotEnv loads KEY=VALUE files into the process environment.
// Missing files are skipped and variables that are already set are kept.
// Returns the files that were loaded.
func LoadDotEnv(paths ...string) ([]string, error) {
	var loaded []string
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return loaded, err
		}
		logger.Debug("loaded environment from %s", p)
		loaded = append(loaded, p)
	}
	return loaded, nil
}

// Source returns the environment variable that overrides key, if any.
func (s *Store) Source(key string) (string, bool) {
	name := VarName(key)
	if v, ok := s.lookup(name); ok && v != "" {
		return name, true
	}
	for _, alias := range aliases[key] {
		if v, ok := s.lookup(alias); ok && v != "" {
			return alias, true
		}
	}
	return "", false
}

// envValue returns the overriding value for key.
func (s *Store) envValue(key string) (string, bool) {
	name, ok := s.Source(key)
	if !ok {
		return "", false
	}
	v, _ := s.lookup(name)
	if name == "OLLAMA_HOST" && !strings.Contains(v, "://") {
		v = "http://" + v
	}
	return strings.TrimSpace(v), true
}

// Get retrieves a configuration value by key. Environment values are strings.
func (s *Store) Get(key string) (any, bool) {
	if v, ok := s.envValue(key); ok {
		return v, true
	}
	return s.base.Get(key)
}

// GetString retrieves a string configuration value.
func (s *Store) GetString(key string) string {
	if v, ok := s.envValue(key); ok {
		return v
	}
	return s.base.GetString(key)
}

// GetInt retrieves an integer configuration value.
// Unparseable environment values fall through to the wrapped store.
func (s *Store) GetInt(key string) int {
	if v, ok := s.envValue(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		logger.Warn("ignoring %s: %q is not an integer", VarName(key), v)
	}
	return s.base.GetInt(key)
}

// GetFloat retrieves a floating point configuration value.
func (s *Store) GetFloat(key string) float64 {
	if v, ok := s.envValue(key); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		logger.Warn("ignoring %s: %q is not a number", VarName(key), v)
	}
	return s.base.GetFloat(key)
}

// GetBool retrieves a boolean configuration value.
func (s *Store) GetBool(key string) bool {
	if v, ok := s.envValue(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		logger.Warn("ignoring %s: %q is not a boolean", VarName(key), v)
	}
	return s.base.GetBool(key)
}

// GetStringSlice retrieves a string slice. Environment values are comma separated.
func (s *Store) GetStringSlice(key string) []string {
	if v, ok := s.envValue(key); ok {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return s.base.GetStringSlice(key)
}

// Keys returns the keys of the wrapped store.
func (s *Store) Keys() []string {
	return s.base.Keys()
}

// Set stores a value in the wrapped store.
func (s *Store) Set(key string, value any) error {
	return s.base.Set(key, value)
}

// Save persists the wrapped store.
func (s *Store) Save() error {
	return s.base.Save()
}

// Load reloads the wrapped store.
func (s *Store) Load() error {
	return s.base.Load()
}

// Path returns the wrapped store's file path.
func (s *Store) Path() string {
	return s.base.Path()
}
