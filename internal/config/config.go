package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env             string        `mapstructure:"ENV"`
	Port            string        `mapstructure:"PORT"`
	RecordsURL      string        `mapstructure:"RECORDS_URL"`
	RecordsAPIKey   string        `mapstructure:"RECORDS_API_KEY"`
	RosterURL       string        `mapstructure:"ROSTER_URL"`
	RosterUsername  string        `mapstructure:"ROSTER_USERNAME"`
	RosterPassword  string        `mapstructure:"ROSTER_PASSWORD"`
	AssignURL       string        `mapstructure:"ASSIGN_URL"`
	StateDBPath     string        `mapstructure:"STATE_DB_PATH"`
	AdminKey        string        `mapstructure:"ADMIN_KEY"`
	CORSAllowed     string        `mapstructure:"CORS_ALLOWED_ORIGINS"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	MatchStrictness string        `mapstructure:"MATCH_STRICTNESS"`
}

func Load() (Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	_ = v.ReadInConfig()

	v.SetDefault("ENV", "dev")
	v.SetDefault("PORT", "8080")
	v.SetDefault("STATE_DB_PATH", "gmalla.db")
	v.SetDefault("REQUEST_TIMEOUT", "30s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("MATCH_STRICTNESS", "contains")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
