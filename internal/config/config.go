package config

import (
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/yumyai/mutlookup/pkg/model"
)

const EnvPrefix = "MUTLOOKUP"

type Config struct {
	Data   string      `mapstructure:"data"`
	Addr   string      `mapstructure:"addr"`
	Static string      `mapstructure:"static"`
	Log    LogConfig   `mapstructure:"log"`
	Remap  RemapConfig `mapstructure:"remap"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// RemapConfig holds the RBD renumbering offset. Revisit if the reference
// numbering of the stored RBD labels changes.
type RemapConfig struct {
	RBDOffset int `mapstructure:"rbd_offset"`
}

// SetDefaults registers the fallback value of every key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("data", "./data")
	v.SetDefault("addr", "0.0.0.0:8080")
	v.SetDefault("static", "./static")
	v.SetDefault("log.level", "info")
	v.SetDefault("remap.rbd_offset", model.RBDNumberingOffset)
}

// New returns a viper instance reading MUTLOOKUP_* variables on top of the
// defaults. A .env file in the working directory is loaded first when present.
func New() (*viper.Viper, bool) {
	dotenvErr := godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	return v, dotenvErr == nil
}

func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}
	if cfg.Data == "" {
		return nil, errors.New("data directory must not be empty")
	}
	if cfg.Remap.RBDOffset < 0 {
		return nil, errors.Newf("remap.rbd_offset must be >= 0, got %d", cfg.Remap.RBDOffset)
	}
	return &cfg, nil
}
