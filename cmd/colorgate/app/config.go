package app

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	colorgate "github.com/knzm/go-colorgate"
)

// Config drives one demonstration run.
type Config struct {
	// Callers is the number of callers started, alternating colors.
	Callers int
	// Stagger is the delay between two caller starts.
	Stagger time.Duration
	// Hold is how long each caller keeps the resource.
	Hold time.Duration
	// First is the color of the first caller.
	First colorgate.Color
	// MetricsAddr, when set, serves prometheus metrics during the run.
	MetricsAddr string
	Debug       bool
}

func loadConfig(v *viper.Viper) (Config, error) {
	first, err := colorgate.ParseColor(v.GetString("first"))
	if err != nil {
		return Config{}, errors.Wrap(err, "invalid --first")
	}
	cfg := Config{
		Callers:     v.GetInt("callers"),
		Stagger:     v.GetDuration("stagger"),
		Hold:        v.GetDuration("hold"),
		First:       first,
		MetricsAddr: v.GetString("metrics-addr"),
		Debug:       v.GetBool("debug"),
	}
	if cfg.Callers <= 0 {
		return Config{}, errors.Errorf("--callers must be positive, got %d", cfg.Callers)
	}
	if cfg.Stagger < 0 || cfg.Hold < 0 {
		return Config{}, errors.New("--stagger and --hold must not be negative")
	}
	return cfg, nil
}
