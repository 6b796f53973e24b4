package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Port          string
	PublicBaseURL string
	JWTSecret     string
	ObservationMS int
	WinnerReward  int
	TokenTTLHours int
}

func Default() Config {
	return Config{
		Port:          "8080",
		PublicBaseURL: "http://localhost:8080",
		JWTSecret:     "behavior-call-dev-secret",
		ObservationMS: 300000,
		WinnerReward:  10,
		TokenTTLHours: 24 * 30,
	}
}

func Load() Config {
	cfg := Default()
	if raw := os.Getenv("PORT"); raw != "" {
		cfg.Port = raw
	}
	if raw := os.Getenv("PUBLIC_BASE_URL"); raw != "" {
		cfg.PublicBaseURL = raw
	}
	if raw := os.Getenv("JWT_SECRET"); raw != "" {
		cfg.JWTSecret = raw
	}
	if raw := os.Getenv("OBSERVATION_MS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.ObservationMS = value
		}
	}
	if raw := os.Getenv("WINNER_REWARD"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.WinnerReward = value
		}
	}
	if raw := os.Getenv("TOKEN_TTL_HOURS"); raw != "" {
		if value, err := strconv.Atoi(raw); err == nil && value > 0 {
			cfg.TokenTTLHours = value
		}
	}
	return cfg
}
