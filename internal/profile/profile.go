package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
)

// Profile is configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo".
	Mode string
	// Addr is the binding address for server.
	Addr string
	// Port is the binding port for server.
	Port int
	// Data is the data directory.
	Data string
	// Driver is the database driver: "memory", "sqlite", "postgres".
	Driver string
	// DSN points to where the database is stored. Empty for the memory driver.
	DSN string
	// Version is the current version of server.
	Version string

	// SessionHistoryLimit bounds the per-session message history.
	SessionHistoryLimit int
	// FollowUpTTLSeconds is the lifetime of a pending yes/no follow-up.
	FollowUpTTLSeconds int
	// ChatRatePerSecond limits chat requests per client IP.
	ChatRatePerSecond float64
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns environment variable value or default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrDefaultInt returns environment variable value as int or default value.
func getEnvOrDefaultInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// FromEnv fills optional settings from PLANWISE_* environment variables.
// Flag values take precedence; env vars only fill zero-valued fields.
func (p *Profile) FromEnv() {
	if p.Data == "" {
		p.Data = getEnvOrDefault("PLANWISE_DATA", "")
	}
	if p.SessionHistoryLimit == 0 {
		p.SessionHistoryLimit = getEnvOrDefaultInt("PLANWISE_SESSION_HISTORY_LIMIT", 20)
	}
	if p.FollowUpTTLSeconds == 0 {
		p.FollowUpTTLSeconds = getEnvOrDefaultInt("PLANWISE_FOLLOWUP_TTL_SECONDS", 120)
	}
	if p.ChatRatePerSecond == 0 {
		p.ChatRatePerSecond = 10
	}
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtimeDataDir, err := os.Getwd(); err == nil {
			p.Data = runtimeDataDir
		} else {
			return errors.Wrap(err, "failed to resolve data directory")
		}
	}

	if p.Data != "" {
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			return errors.Wrapf(err, "invalid data directory %q", p.Data)
		}
		p.Data = dataDir
	}

	switch p.Driver {
	case "", "memory":
		p.Driver = "memory"
	case "sqlite":
		if p.DSN == "" {
			if p.Data == "" {
				return errors.New("sqlite driver requires --data or --dsn")
			}
			p.DSN = filepath.Join(p.Data, "planwise_prod.db")
		}
	case "postgres":
		if p.DSN == "" {
			return errors.New("postgres driver requires --dsn")
		}
	default:
		return errors.Errorf("unsupported driver %q", p.Driver)
	}

	return nil
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing "/" in case user supplies.
	dataDir = filepath.Clean(dataDir)

	fi, err := os.Stat(dataDir)
	if err != nil {
		return "", errors.Wrap(err, "unable to access data folder")
	}
	if !fi.IsDir() {
		return "", fmt.Errorf("data folder path %q is not a directory", dataDir)
	}

	return dataDir, nil
}
