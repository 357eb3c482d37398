package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/treehole/internal/flagx"
	"github.com/joho/godotenv"
)

const (
	EnvRemoteURL      = "SUPABASE_URL"
	EnvAPIKey         = "SUPABASE_ANON_KEY"
	EnvDatabaseDSN    = "TREEHOLE_DATABASE_DSN"
	EnvStartupTimeout = "TREEHOLE_STARTUP_TIMEOUT"
	EnvDataDir        = "TREEHOLE_DATA_DIR"
	EnvLogLevel       = "TREEHOLE_LOG_LEVEL"
	EnvS3Endpoint     = "TREEHOLE_S3_ENDPOINT"
	EnvS3Region       = "TREEHOLE_S3_REGION"
	EnvS3Bucket       = "TREEHOLE_S3_BUCKET"
	EnvS3AccessKey    = "TREEHOLE_S3_ACCESS_KEY"
	EnvS3SecretKey    = "TREEHOLE_S3_SECRET_KEY"
)

// parseEnv loads a dotenv file into the process environment and overlays
// cfg with the variables above. The file comes from -env; otherwise an
// optional ".env" in the working directory is used. Variables already set
// in the environment are not overridden by the file.
func parseEnv(cfg *Config, args []string) error {
	if path := flagx.EnvFilePath(args); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file %s: %w", path, err)
		}
	} else if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	setString(&cfg.RemoteURL, EnvRemoteURL)
	setString(&cfg.APIKey, EnvAPIKey)
	setString(&cfg.DatabaseDSN, EnvDatabaseDSN)
	setString(&cfg.DataDir, EnvDataDir)
	setString(&cfg.LogLevel, EnvLogLevel)
	setString(&cfg.Avatar.Endpoint, EnvS3Endpoint)
	setString(&cfg.Avatar.Region, EnvS3Region)
	setString(&cfg.Avatar.Bucket, EnvS3Bucket)
	setString(&cfg.Avatar.AccessKey, EnvS3AccessKey)
	setString(&cfg.Avatar.SecretKey, EnvS3SecretKey)

	if v, ok := os.LookupEnv(EnvStartupTimeout); ok && v != "" {
		d, err := parseSeconds(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvStartupTimeout, err)
		}
		cfg.StartupTimeout = d
	}
	return nil
}

func setString(dst *string, name string) {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		*dst = v
	}
}

// parseSeconds accepts a Go duration ("8s") or a bare number of seconds.
func parseSeconds(v string) (time.Duration, error) {
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(v)
}
