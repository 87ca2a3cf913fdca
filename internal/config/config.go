package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP server
	Port string

	// Storage
	DataBackend  string // memory | sqlite
	SQLiteDBPath string

	// Change-notification channel
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Recurrence worker
	RecurrenceInterval time.Duration

	// Analytics policy. Thresholds are tunable product policy, not
	// derived quantities.
	AnomalyRatio     float64
	AnomalyHighRatio float64
	HealthHighRatio  float64
	HealthMidRatio   float64
	ProjectionWindow int
	TopExpensesLimit int
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8081"),

		DataBackend:  getEnv("DATA_BACKEND", "memory"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/carteira.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "carteira"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "entity_changes"),

		RecurrenceInterval: getEnvDuration("RECURRENCE_INTERVAL", time.Hour),

		AnomalyRatio:     getEnvFloat("ANOMALY_RATIO", 1.5),
		AnomalyHighRatio: getEnvFloat("ANOMALY_HIGH_RATIO", 2.0),
		HealthHighRatio:  getEnvFloat("HEALTH_HIGH_RATIO", 2.0),
		HealthMidRatio:   getEnvFloat("HEALTH_MID_RATIO", 1.0),
		ProjectionWindow: getEnvInt("PROJECTION_WINDOW", 3),
		TopExpensesLimit: getEnvInt("TOP_EXPENSES_LIMIT", 5),
	}
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "memory", "sqlite":
	default:
		errs = append(errs, fmt.Sprintf("invalid data backend '%s': must be memory or sqlite", c.DataBackend))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errs = append(errs, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errs = append(errs, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.RecurrenceInterval < time.Minute {
		errs = append(errs, fmt.Sprintf("invalid recurrence interval %v: must be at least 1 minute", c.RecurrenceInterval))
	} else if c.RecurrenceInterval > 24*time.Hour {
		errs = append(errs, fmt.Sprintf("invalid recurrence interval %v: must be at most 24 hours", c.RecurrenceInterval))
	}

	if c.AnomalyRatio <= 1 {
		errs = append(errs, fmt.Sprintf("invalid anomaly ratio %v: must be greater than 1", c.AnomalyRatio))
	}
	if c.AnomalyHighRatio < c.AnomalyRatio {
		errs = append(errs, fmt.Sprintf("invalid anomaly high ratio %v: must be at least the anomaly ratio", c.AnomalyHighRatio))
	}
	if c.HealthMidRatio <= 0 || c.HealthHighRatio <= c.HealthMidRatio {
		errs = append(errs, "invalid health ratios: high must exceed mid and mid must be positive")
	}
	if c.ProjectionWindow < 1 || c.ProjectionWindow > 12 {
		errs = append(errs, fmt.Sprintf("invalid projection window %d: must be between 1 and 12 months", c.ProjectionWindow))
	}
	if c.TopExpensesLimit < 1 {
		errs = append(errs, fmt.Sprintf("invalid top expenses limit %d: must be at least 1", c.TopExpensesLimit))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
