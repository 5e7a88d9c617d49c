package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/mynote-app/mynote/internal/flagx"
)

var knownFlags = []string{"-d", "-l", "-s", "-t", "-i", "-r", "-u"}

// parseFlags populates Config fields from the short command-line flags.
//
//	-d string   remote store DSN
//	-l string   local store file
//	-s string   session token secret
//	-t int      session lifetime (minutes)
//	-i int      session check interval (seconds)
//	-r string   Redis address for the session scope
//	-u string   application base URL
//
// Arguments other than these are filtered out with flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("mynote", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "remote store DSN")
	fs.StringVar(&cfg.LocalStorePath, "l", cfg.LocalStorePath, "local store file")
	fs.StringVar(&cfg.SessionSecret, "s", cfg.SessionSecret, "session token secret")
	ttl := fs.Int("t", int(cfg.SessionTTL.Minutes()), "session lifetime (in minutes)")
	interval := fs.Int("i", int(cfg.SessionCheckInterval.Seconds()), "session check interval (in seconds)")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "redis address for the session scope")
	fs.StringVar(&cfg.BaseURL, "u", cfg.BaseURL, "application base URL")

	if err := fs.Parse(flagx.FilterArgs(args, knownFlags)); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if *ttl <= 0 || *interval <= 0 {
		return fmt.Errorf("parse flags: -t and -i must be positive")
	}

	cfg.SessionTTL = time.Duration(*ttl) * time.Minute
	cfg.SessionCheckInterval = time.Duration(*interval) * time.Second
	return nil
}
