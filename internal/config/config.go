package config

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// UI configures the annotation window.
type UI struct {
	CanvasWidth  int `mapstructure:"canvas_width"`
	CanvasHeight int `mapstructure:"canvas_height"`
	// Minimum side length, in display pixels, for a drag to become an annotation.
	MinBoxPx int `mapstructure:"min_box_px"`
}

// Export configures the training-format writers.
type Export struct {
	NumShards int `mapstructure:"num_shards"`
}

// Config is the application configuration.
type Config struct {
	UI     UI     `mapstructure:"ui"`
	Export Export `mapstructure:"export"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ui.canvas_width", 900)
	v.SetDefault("ui.canvas_height", 700)
	v.SetDefault("ui.min_box_px", 10)
	v.SetDefault("export.num_shards", 1)
}

// InitConfig loads the configuration from path. A missing file is not an error; the
// defaults apply.
func InitConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			// Fall through to the defaults.
		} else {
			return nil, errors.Wrapf(err, "failed to read config %q", path)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if cfg.UI.CanvasWidth < 200 || cfg.UI.CanvasHeight < 200 {
		return nil, errors.Errorf("canvas size %dx%d is too small",
			cfg.UI.CanvasWidth, cfg.UI.CanvasHeight)
	}
	if cfg.UI.MinBoxPx < 0 {
		return nil, errors.New("ui.min_box_px must not be negative")
	}
	if cfg.Export.NumShards < 1 {
		cfg.Export.NumShards = 1
	}

	return cfg, nil
}
