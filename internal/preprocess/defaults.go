package preprocess

import (
	"github.com/custodia-labs/reqscan/internal/core/ports/driven"
	"github.com/custodia-labs/reqscan/internal/preprocess/dehyphenate"
	"github.com/custodia-labs/reqscan/internal/preprocess/headerfooter"
	"github.com/custodia-labs/reqscan/internal/preprocess/pagenumbers"
	"github.com/custodia-labs/reqscan/internal/preprocess/whitespace"
)

// RegisterDefaults registers all built-in cleaners with the registry.
// Call this during application initialisation to enable the standard pipeline.
func RegisterDefaults(r *Registry) {
	r.Register(headerfooter.Name, buildHeaderFooter)
	r.Register(pagenumbers.Name, buildPageNumbers)
	r.Register(dehyphenate.Name, buildDehyphenate)
	r.Register(whitespace.Name, buildWhitespace)
}

// NewDefaultRegistry returns a registry with the built-in cleaners.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	RegisterDefaults(r)
	return r
}

// buildHeaderFooter creates a header/footer cleaner from generic config.
// Supported config keys:
//   - scan_lines (int): Lines checked at the top and bottom of each page (default: 2)
//   - min_ratio (float): Share of pages a line must repeat on (default: 0.6)
func buildHeaderFooter(cfg map[string]any) (driven.TextCleaner, error) {
	var opts []headerfooter.Option

	if cfg != nil {
		if n := getIntFromConfig(cfg, "scan_lines"); n > 0 {
			opts = append(opts, headerfooter.WithScanLines(n))
		}
		if ratio := getFloatFromConfig(cfg, "min_ratio"); ratio > 0 {
			opts = append(opts, headerfooter.WithMinRatio(ratio))
		}
	}

	return headerfooter.New(opts...), nil
}

// buildPageNumbers creates a page number cleaner.
// Supported config keys:
//   - inline (bool): Also remove "Page X of Y" runs inside lines (default: true)
func buildPageNumbers(cfg map[string]any) (driven.TextCleaner, error) {
	var opts []pagenumbers.Option
	if v, ok := cfg["inline"].(bool); ok {
		opts = append(opts, pagenumbers.WithInline(v))
	}
	return pagenumbers.New(opts...), nil
}

// buildDehyphenate creates a dehyphenation cleaner. It takes no config.
func buildDehyphenate(_ map[string]any) (driven.TextCleaner, error) {
	return dehyphenate.New(), nil
}

// buildWhitespace creates a whitespace cleaner.
// Supported config keys:
//   - join_lines (bool): Join wrapped lines inside a paragraph (default: true)
func buildWhitespace(cfg map[string]any) (driven.TextCleaner, error) {
	var opts []whitespace.Option
	if v, ok := cfg["join_lines"].(bool); ok {
		opts = append(opts, whitespace.WithJoinLines(v))
	}
	return whitespace.New(opts...), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// getFloatFromConfig safely extracts a float64 from generic config map.
func getFloatFromConfig(cfg map[string]any, key string) float64 {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}
