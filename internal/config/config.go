package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"lifequest/internal/storage"
)

const (
	EnvUser     = "LIFEQUEST_USER"
	EnvCatalog  = "LIFEQUEST_CATALOG"
	EnvLogLevel = "LIFEQUEST_LOG_LEVEL"

	DefaultUser     = "me"
	DefaultLogLevel = "warn"
)

// Config holds the runtime settings shared by every command.
type Config struct {
	DBPath string
	UserID string
	// CatalogPath points at a YAML badge catalog. Empty means the built-in catalog.
	CatalogPath string
	LogLevel    string
}

// Load reads an optional .env file from the working directory and then the process environment.
// Variables already set in the environment win over the file.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, err
		}
	}

	dbPath, err := storage.ResolveDBPath()
	if err != nil {
		return Config{}, err
	}
	return Config{
		DBPath:      dbPath,
		UserID:      getenv(EnvUser, DefaultUser),
		CatalogPath: strings.TrimSpace(os.Getenv(EnvCatalog)),
		LogLevel:    getenv(EnvLogLevel, DefaultLogLevel),
	}, nil
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
