// Package config loads runtime configuration for the treehole CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables, optionally seeded from a dotenv file given
//     with -env (or ./.env when present): SUPABASE_URL, SUPABASE_ANON_KEY,
//     TREEHOLE_DATABASE_DSN, TREEHOLE_STARTUP_TIMEOUT, TREEHOLE_DATA_DIR,
//     TREEHOLE_LOG_LEVEL and TREEHOLE_S3_*.
//  3. Optional JSON file selected with -c or -config.
//  4. Command-line flags, which override earlier values.
//
// # JSON schema
//
// Durations use timex.Duration, so "8s" and integer nanoseconds both work:
//
//	{
//	  "remote_url": "https://xyz.supabase.co",
//	  "api_key": "sb_publishable_...",
//	  "startup_timeout": "8s",
//	  "data_dir": ".treehole",
//	  "seed_file": "seed.json",
//	  "log_level": "info",
//	  "avatar_storage": {"endpoint": "http://localhost:9000", "bucket": "avatars"}
//	}
package config
