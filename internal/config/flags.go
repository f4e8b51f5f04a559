package config

import (
	"flag"
	"io"
	"time"

	"github.com/dmitrijs2005/otvetbot/internal/flagx"
)

var ownedFlags = flagx.Spec{
	Valued:   []string{"-s", "-store", "-u", "-i", "-t", "-rps", "-backend", "-backend-url", "-provider", "-model", "-lang", "-max-attempts"},
	Switches: []string{"-v", "-web-search"},
}

// parseFlags populates Config fields from command-line flags.
//
//	-s string        credential store path
//	-store string    credential store kind (json|sqlite)
//	-u string        Q&A platform base URL
//	-i int           poll interval (seconds)
//	-t int           request timeout (seconds)
//	-rps float       platform requests per second
//	-backend string  completion backend (openai|gemini)
//	-backend-url     OpenAI-compatible endpoint base URL
//	-provider        provider name forwarded to the backend
//	-model           model name (the default depends on -backend)
//	-lang            answer language
//	-max-attempts    enrollment attempts before giving up (0 = unbounded)
//	-web-search      allow the backend to search the web
//	-v               verbose logging
//
// Only the flags listed above are parsed; the rest of args is ignored.
func parseFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("otvetbot", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.StorePath, "s", cfg.StorePath, "credential store path")
	fs.StringVar(&cfg.StoreKind, "store", cfg.StoreKind, "credential store kind (json|sqlite)")
	fs.StringVar(&cfg.PlatformURL, "u", cfg.PlatformURL, "Q&A platform base URL")
	pollInterval := fs.Int("i", int(cfg.PollInterval.Seconds()), "poll interval (in seconds)")
	requestTimeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")
	fs.Float64Var(&cfg.RequestsPerSecond, "rps", cfg.RequestsPerSecond, "platform requests per second")
	fs.StringVar(&cfg.Backend, "backend", cfg.Backend, "completion backend (openai|gemini)")
	fs.StringVar(&cfg.BackendURL, "backend-url", cfg.BackendURL, "OpenAI-compatible endpoint")
	fs.StringVar(&cfg.BackendProvider, "provider", cfg.BackendProvider, "backend provider name")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "model name")
	fs.StringVar(&cfg.Language, "lang", cfg.Language, "answer language")
	fs.IntVar(&cfg.EnrollMaxAttempts, "max-attempts", cfg.EnrollMaxAttempts, "enrollment attempts, 0 for unbounded")
	fs.BoolVar(&cfg.WebSearch, "web-search", cfg.WebSearch, "allow web search")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "verbose logging")

	if err := fs.Parse(flagx.FilterArgs(args, ownedFlags)); err != nil {
		return err
	}

	// Seconds flags apply only when given; unset they would truncate
	// sub-second values from a config file.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "i":
			cfg.PollInterval = time.Duration(*pollInterval) * time.Second
		case "t":
			cfg.RequestTimeout = time.Duration(*requestTimeout) * time.Second
		}
	})
	return nil
}
