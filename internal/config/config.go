package config

import (
	"errors"
	"eventsnap/internal/ticketmaster"
	"eventsnap/lib/configutil"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// FileName is looked up from the working directory upwards, an
// `eventsnap.local.json5` next to it overrides individual fields.
const FileName = "eventsnap.json5"

type Api struct {
	BaseUrl        string `json:"base_url"`
	Classification string `json:"classification"`
	CountryCode    string `json:"country_code"`
	PageSize       int    `json:"page_size"`
	RequestDelayMs int    `json:"request_delay_ms"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	HorizonDays    int    `json:"horizon_days"`
}

func (a Api) RequestDelay() time.Duration {
	return time.Duration(a.RequestDelayMs) * time.Millisecond
}

func (a Api) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

func (a Api) Horizon() time.Duration {
	return time.Duration(a.HorizonDays) * 24 * time.Hour
}

type Paths struct {
	History        string `json:"history"`
	TransformedDir string `json:"transformed_dir"`
	DB             string `json:"db"`
}

type Config struct {
	Api   Api   `json:"api"`
	Paths Paths `json:"paths"`
}

func Defaults() Config {
	return Config{
		Api: Api{
			BaseUrl:        ticketmaster.DefaultBaseUrl,
			Classification: "Music",
			PageSize:       ticketmaster.MaxPageSize,
			RequestDelayMs: int(ticketmaster.DefaultRequestDelay / time.Millisecond),
			TimeoutSeconds: int(ticketmaster.DefaultTimeout / time.Second),
			HorizonDays:    90,
		},
		Paths: Paths{
			History:        "data/events_history.parquet",
			TransformedDir: "data/transformed_data",
			DB:             "data/events.db",
		},
	}
}

// Load returns the defaults with the config file layered on top.
func Load() (Config, error) {
	config, err := configutil.ReadWithDefaults(FileName, Defaults())
	if err != nil {
		return config, fmt.Errorf("read %s: %w", FileName, err)
	}
	return config, nil
}

// Env holds the settings that only ever come from the environment.
type Env struct {
	ApiKey      string `envconfig:"TICKETMASTER_API_KEY"`
	DB          string `envconfig:"EVENTSNAP_DB"`
	DBAuthToken string `envconfig:"EVENTSNAP_DB_AUTH_TOKEN"`
}

// LoadEnv reads `.env` if there is one, then the process environment.
// Variables already set in the process take precedence over `.env`.
func LoadEnv() (Env, error) {
	var env Env
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return env, fmt.Errorf("load .env: %w", err)
	}
	err = envconfig.Process("", &env)
	if err != nil {
		return env, fmt.Errorf("process environment: %w", err)
	}
	return env, nil
}
