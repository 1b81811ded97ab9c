package knowledge

import (
	"testing"
	"time"
)

func TestBuildSearchConfigDefaults(t *testing.T) {
	cfg := buildSearchConfig(nil)

	if cfg.topK != 5 {
		t.Errorf("default topK = %d, want 5", cfg.topK)
	}
	if cfg.source != "" {
		t.Errorf("default source = %q, want empty", cfg.source)
	}
	if cfg.timeout != defaultSearchTimeout {
		t.Errorf("default timeout = %v, want %v", cfg.timeout, defaultSearchTimeout)
	}
}

func TestBuildSearchConfigOptions(t *testing.T) {
	cfg := buildSearchConfig([]SearchOption{
		WithTopK(8),
		WithSource(SourceWiki),
		WithTimeout(3 * time.Second),
	})

	if cfg.topK != 8 {
		t.Errorf("topK = %d, want 8", cfg.topK)
	}
	if cfg.source != SourceWiki {
		t.Errorf("source = %q, want %q", cfg.source, SourceWiki)
	}
	if cfg.timeout != 3*time.Second {
		t.Errorf("timeout = %v, want 3s", cfg.timeout)
	}
}

func TestBuildSearchConfigIgnoresInvalid(t *testing.T) {
	cfg := buildSearchConfig([]SearchOption{WithTopK(0), WithTimeout(-time.Second)})

	if cfg.topK != 5 {
		t.Errorf("topK = %d, want default 5 when given 0", cfg.topK)
	}
	if cfg.timeout != defaultSearchTimeout {
		t.Errorf("timeout = %v, want default when given negative", cfg.timeout)
	}
}
