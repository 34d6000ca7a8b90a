package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// source holds values read from a YAML config file. Keys are normalised to
// the upper-case environment variable names, so `access_token_max_age: 900`
// and ACCESS_TOKEN_MAX_AGE configure the same setting.
type source struct {
	values map[string]string
}

func readFile(path string) (*source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	raw := map[string]any{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	src := &source{values: make(map[string]string, len(raw))}
	for k, v := range raw {
		key := strings.ToUpper(strings.ReplaceAll(k, "-", "_"))
		switch val := v.(type) {
		case []any:
			parts := make([]string, 0, len(val))
			for _, p := range val {
				parts = append(parts, fmt.Sprint(p))
			}
			src.values[key] = strings.Join(parts, ",")
		default:
			src.values[key] = fmt.Sprint(val)
		}
	}
	return src, nil
}

func (s *source) get(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	if s != nil {
		if v, ok := s.values[key]; ok && v != "" {
			return v
		}
	}
	return defaultValue
}

func (s *source) getInt(key string, defaultValue int) int {
	v := s.get(key, "")
	if v == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid integer config value, using default")
		return defaultValue
	}
	return i
}

func (s *source) getFloat(key string, defaultValue float64) float64 {
	v := s.get(key, "")
	if v == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid number config value, using default")
		return defaultValue
	}
	return f
}

func (s *source) getDuration(key string, defaultValue time.Duration) time.Duration {
	v := s.get(key, "")
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("invalid duration config value, using default")
		return defaultValue
	}
	return d
}

func (s *source) getList(key, defaultValue string) []string {
	var out []string
	for _, p := range strings.Split(s.get(key, defaultValue), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
