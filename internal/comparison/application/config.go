package application

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	tariff "wattcompare/internal/tariff/domain"
	tempo "wattcompare/internal/tempo/domain"
)

// HouseholdConfig describes the meter contract the engine compares for.
type HouseholdConfig struct {
	Timezone           string                  `yaml:"timezone"`
	SubscribedPowerKVA int                     `yaml:"subscribed_power_kva"`
	CurrentOfferID     string                  `yaml:"current_offer_id"`
	Windows            tariff.HouseholdWindows `yaml:"windows"`
}

// TempoConfig holds the forecaster tuning. The threshold coefficients are
// opaque operational parameters.
type TempoConfig struct {
	SeasonStart string           `yaml:"season_start"`
	Thresholds  tempo.Thresholds `yaml:"thresholds"`
}

// Config is the engine configuration.
type Config struct {
	Household HouseholdConfig `yaml:"household"`
	Tempo     TempoConfig     `yaml:"tempo"`
	Window    string          `yaml:"window"`
	Mode      string          `yaml:"mode"`
}

// LoadConfig loads config from yaml or env.
func LoadConfig() (Config, error) {
	cfg := Config{
		Household: HouseholdConfig{
			Timezone:           getenvDefault("WATTCOMPARE_TIMEZONE", "Europe/Paris"),
			SubscribedPowerKVA: getenvIntDefault("WATTCOMPARE_POWER_KVA", 6),
			CurrentOfferID:     os.Getenv("WATTCOMPARE_CURRENT_OFFER"),
		},
		Tempo: TempoConfig{
			Thresholds: tempo.Thresholds{
				// Placeholder coefficients; tuned operationally.
				WhiteBoundary: tempo.Poly{C: 0.5},
				RedBoundary:   tempo.Poly{C: 0.8},
			},
		},
		Window: getenvDefault("WATTCOMPARE_WINDOW", "ROLLING_YEAR"),
		Mode:   getenvDefault("WATTCOMPARE_MODE", "fail_fast"),
	}

	if path := os.Getenv("WATTCOMPARE_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if cfg.Household.SubscribedPowerKVA <= 0 {
		return cfg, errors.New("config: subscribed power must be positive")
	}
	return cfg, nil
}

// Location resolves the household timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Household.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(c.Household.Timezone)
}

// SeasonStart parses the tempo season start date, defaulting to the most
// recent 1 September relative to now.
func (c Config) SeasonStart(now time.Time) (time.Time, error) {
	if c.Tempo.SeasonStart != "" {
		return time.Parse("2006-01-02", c.Tempo.SeasonStart)
	}
	year := now.Year()
	if now.Month() < time.September {
		year--
	}
	return time.Date(year, time.September, 1, 0, 0, 0, 0, time.UTC), nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvIntDefault(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
