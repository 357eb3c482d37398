package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/treehole/internal/flagx"
	"github.com/dmitrijs2005/treehole/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields distinguish "absent" from "empty" so a file only overrides what
// it names.
type JsonConfig struct {
	RemoteURL      *string         `json:"remote_url"`
	APIKey         *string         `json:"api_key"`
	DatabaseDSN    *string         `json:"database_dsn"`
	StartupTimeout *timex.Duration `json:"startup_timeout"`
	DataDir        *string         `json:"data_dir"`
	SeedFile       *string         `json:"seed_file"`
	LogLevel       *string         `json:"log_level"`
	Avatar         *struct {
		Endpoint  *string `json:"endpoint"`
		Region    *string `json:"region"`
		Bucket    *string `json:"bucket"`
		AccessKey *string `json:"access_key"`
		SecretKey *string `json:"secret_key"`
	} `json:"avatar_storage"`
}

// parseJson overlays cfg with the JSON file named by -c or -config.
// Without the flag nothing is loaded.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	overlay(&cfg.RemoteURL, jc.RemoteURL)
	overlay(&cfg.APIKey, jc.APIKey)
	overlay(&cfg.DatabaseDSN, jc.DatabaseDSN)
	overlay(&cfg.DataDir, jc.DataDir)
	overlay(&cfg.SeedFile, jc.SeedFile)
	overlay(&cfg.LogLevel, jc.LogLevel)
	if jc.StartupTimeout != nil {
		cfg.StartupTimeout = jc.StartupTimeout.Duration
	}
	if a := jc.Avatar; a != nil {
		overlay(&cfg.Avatar.Endpoint, a.Endpoint)
		overlay(&cfg.Avatar.Region, a.Region)
		overlay(&cfg.Avatar.Bucket, a.Bucket)
		overlay(&cfg.Avatar.AccessKey, a.AccessKey)
		overlay(&cfg.Avatar.SecretKey, a.SecretKey)
	}
	return nil
}

func overlay[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
