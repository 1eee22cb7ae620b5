// Package config handles runtime configuration loading using viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"prepaid-accounting/pkg/logging"
)

type Config struct {
	Admin    AdminConfig    `mapstructure:"admin"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Log      logging.Config `mapstructure:"log"`
	SeedDemo bool           `mapstructure:"seed_demo_data"`
}

// AdminConfig configures the management HTTP API.
type AdminConfig struct {
	Addr string `mapstructure:"addr"`
}

// EngineConfig tunes the admission protocol.
type EngineConfig struct {
	RingWorkers int           `mapstructure:"ring_workers"`
	RingQueue   int           `mapstructure:"ring_queue"`
	RingTimeout time.Duration `mapstructure:"ring_timeout"`
	ExpiryTick  time.Duration `mapstructure:"expiry_tick"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("admin.addr", ":8080")
	v.SetDefault("engine.ring_workers", 32)
	v.SetDefault("engine.ring_queue", 256)
	v.SetDefault("engine.ring_timeout", 5*time.Second)
	v.SetDefault("engine.expiry_tick", 10*time.Millisecond)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("seed_demo_data", false)
}

// Load reads the configuration file at path (optional; defaults apply when
// empty) with PREPAID_* environment variables taking precedence.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("PREPAID")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}
