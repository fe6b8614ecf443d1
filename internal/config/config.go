package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Booking  *BookingConfig  `mapstructure:"booking"`
}

type APIConfig struct {
	Environment        string `mapstructure:"environment"`
	BaseURL            string `mapstructure:"base_url"`
	Port               string `mapstructure:"port"`
	JWTSigningKey      string `mapstructure:"jwt_signing_key"`
	AllowedCORSDomains string `mapstructure:"allowed_cors_domains"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"db_name"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// BookingConfig carries the booking policy knobs. They are configuration, not
// constants, so tests and environments can tune them independently.
type BookingConfig struct {
	// Per-category spending caps for a beneficiary's deposit, in EUR.
	// Event bookings are exempt from both caps.
	PhysicalCap string `mapstructure:"physical_cap"`
	DigitalCap  string `mapstructure:"digital_cap"`

	// Amount granted when an activation booking is redeemed, in EUR.
	ActivationDepositAmount string `mapstructure:"activation_deposit_amount"`

	// An event booking may be validated at most this many hours before the
	// event starts.
	ValidationWindowHours int `mapstructure:"validation_window_hours"`

	// Eligibility age window: min inclusive, max inclusive.
	EligibilityMinAge int `mapstructure:"eligibility_min_age"`
	EligibilityMaxAge int `mapstructure:"eligibility_max_age"`
}

func Load(configPath string) (*AppConfig, error) {
	conf := &AppConfig{}

	viper.SetConfigFile(configPath)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("viper.ReadInConfig -> %w", err)
	}

	if err := viper.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("viper.Unmarshal -> %w", err)
	}

	return conf, nil
}
