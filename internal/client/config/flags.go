package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/treehole/internal/flagx"
)

var knownFlags = []string{"-u", "-k", "-d", "-t", "-data", "-seed", "-l"}

// parseFlags populates Config fields from command-line flags.
//
//	-u string   PostgREST project URL
//	-k string   API key
//	-d string   Postgres DSN (takes precedence over -u/-k)
//	-t int      startup timeout in seconds
//	-data dir   local data directory
//	-seed file  JSON seed set for empty stores
//	-l level    log level (debug, info, warn, error)
//
// Only the flags above are looked at; the rest of args is left to other
// stages via flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("treehole", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.RemoteURL, "u", cfg.RemoteURL, "PostgREST project URL")
	fs.StringVar(&cfg.APIKey, "k", cfg.APIKey, "API key")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "Postgres DSN")
	timeout := fs.Int("t", int(cfg.StartupTimeout.Seconds()), "startup timeout (in seconds)")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "local data directory")
	fs.StringVar(&cfg.SeedFile, "seed", cfg.SeedFile, "seed file")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			cfg.StartupTimeout = time.Duration(*timeout) * time.Second
		}
	})
	return nil
}
