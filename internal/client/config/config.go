package config

import "time"

// AvatarStorage points the avatar uploader at an S3-compatible bucket.
// An empty Bucket disables uploads.
type AvatarStorage struct {
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
}

// Config holds runtime settings for the treehole CLI.
//
// RemoteURL and APIKey select the PostgREST backend. DatabaseDSN, when set,
// selects a direct Postgres connection instead. With neither, the client
// runs in local mode only.
type Config struct {
	RemoteURL      string
	APIKey         string
	DatabaseDSN    string
	StartupTimeout time.Duration
	DataDir        string
	SeedFile       string
	LogLevel       string
	Avatar         AvatarStorage
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.StartupTimeout = 8 * time.Second
	c.DataDir = ".treehole"
	c.LogLevel = "warn"
	c.Avatar.Region = "us-east-1"
}

// RemoteConfigured reports whether any remote backend is configured.
func (c *Config) RemoteConfigured() bool {
	return c.DatabaseDSN != "" || (c.RemoteURL != "" && c.APIKey != "")
}

// LoadConfig constructs a Config from defaults, then the environment
// (optionally seeded from a .env file), then a JSON file, then flags.
// Later sources take precedence over earlier ones. args excludes the
// program name.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseEnv(cfg, args); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
