package atlas

import (
	"errors"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.LayerSize != DefaultLayerSize {
		t.Errorf("expected LayerSize %d, got %d", DefaultLayerSize, cfg.LayerSize)
	}
	if cfg.MaxLayers != DefaultMaxLayers {
		t.Errorf("expected MaxLayers %d, got %d", DefaultMaxLayers, cfg.MaxLayers)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name  string
		cfg   Config
		field string
	}{
		{"too small", Config{LayerSize: 128, MaxLayers: 1}, "LayerSize"},
		{"too large", Config{LayerSize: 16384, MaxLayers: 1}, "LayerSize"},
		{"not power of two", Config{LayerSize: 1000, MaxLayers: 1}, "LayerSize"},
		{"no layers", Config{LayerSize: 256, MaxLayers: 0}, "MaxLayers"},
		{"too many layers", Config{LayerSize: 256, MaxLayers: 1000}, "MaxLayers"},
		{"valid", Config{LayerSize: 512, MaxLayers: 4}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.field == "" {
				if err != nil {
					t.Errorf("expected valid config, got %v", err)
				}
				return
			}
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected *ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("expected field %q, got %q", tt.field, cfgErr.Field)
			}
		})
	}
}
