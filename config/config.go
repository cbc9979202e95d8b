// Package config resolves settings from defaults, an optional ktx.yaml, a .env file and KTX_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"ktx-reserve-cli/service"
	"ktx-reserve-cli/store"
)

const envPrefix = "KTX"

type Config struct {
	UserServiceURL        string        `mapstructure:"user_service_url"`
	TrainServiceURL       string        `mapstructure:"train_service_url"`
	SeatServiceURL        string        `mapstructure:"seat_service_url"`
	ReservationServiceURL string        `mapstructure:"reservation_service_url"`
	HTTPTimeout           time.Duration `mapstructure:"http_timeout"`
	LogLevel              string        `mapstructure:"log_level"`
	LogFile               string        `mapstructure:"log_file"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("user_service_url", "http://localhost:8081")
	v.SetDefault("train_service_url", "http://localhost:8082")
	v.SetDefault("seat_service_url", "http://localhost:8083")
	v.SetDefault("reservation_service_url", "http://localhost:8084")
	v.SetDefault("http_timeout", 12*time.Second)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
}

// Load reads the configuration. configFile, when non-empty, replaces the ktx.yaml lookup.
func Load(configFile string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("ktx")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := store.ConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	urls := map[string]string{
		"user_service_url":        c.UserServiceURL,
		"train_service_url":       c.TrainServiceURL,
		"seat_service_url":        c.SeatServiceURL,
		"reservation_service_url": c.ReservationServiceURL,
	}
	for key, value := range urls {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s is required", key)
		}
	}
	if c.HTTPTimeout < 0 {
		return fmt.Errorf("http_timeout must not be negative")
	}
	return nil
}

func (c Config) Endpoints() service.Endpoints {
	return service.Endpoints{
		User:        strings.TrimRight(c.UserServiceURL, "/"),
		Train:       strings.TrimRight(c.TrainServiceURL, "/"),
		Seat:        strings.TrimRight(c.SeatServiceURL, "/"),
		Reservation: strings.TrimRight(c.ReservationServiceURL, "/"),
	}
}
