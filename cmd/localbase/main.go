// Package main is the developer CLI for the localbase fallback store.
//
// It bootstraps a store and offers a few inspection commands so the
// fallback data can be poked at without wiring up the application:
//
//	localbase init
//	localbase ls studies
//	localbase signin participant@researchhub.local
//	localbase whoami fallback-token-usr-participant-1756710000000
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/researchhub/localbase"
	"github.com/researchhub/localbase/auth"
)

func main() {
	if err := mainImpl(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "localbase: %v\n", err)
		os.Exit(1)
	}
}

func mainImpl() error {
	configPath := flag.String("config", "localbase.yaml", "Path to YAML config file (optional)")
	dataDir := flag.String("data-dir", "", "Data directory (default ./data)")
	backend := flag.String("backend", "", "Backing storage: file or sqlite (default file)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	cfg, err := localbase.LoadConfig(*configPath)
	if err != nil {
		return err
	}
	// Flags win over config file values.
	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) {
		set[f.Name] = true
	})
	if set["data-dir"] {
		cfg.DataDir = *dataDir
	}
	if set["backend"] {
		cfg.Backend = *backend
	}
	if set["log-level"] {
		cfg.LogLevel = *logLevel
	}

	ll := &slog.LevelVar{}
	switch cfg.LogLevel {
	case "debug":
		ll.Set(slog.LevelDebug)
	case "", "info":
		ll.Set(slog.LevelInfo)
	case "warn":
		ll.Set(slog.LevelWarn)
	case "error":
		ll.Set(slog.LevelError)
	default:
		return fmt.Errorf("unknown log level: %q", cfg.LogLevel)
	}
	logger := slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      ll,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
	slog.SetDefault(logger)

	args := flag.Args()
	if len(args) == 0 {
		return errors.New("usage: localbase [flags] init | ls <collection> | signin <email> | whoami <token>")
	}

	client, err := localbase.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	switch args[0] {
	case "init":
		// Open already ran the bootstrap; nothing left to do.
		fmt.Printf("store ready in %s\n", cfg.DataDir)
		return nil
	case "ls":
		if len(args) != 2 {
			return errors.New("usage: localbase ls <collection>")
		}
		rows, err := client.From(args[1]).Execute(ctx).Records()
		if err != nil {
			return err
		}
		return printJSON(rows)
	case "signin":
		if len(args) != 2 {
			return errors.New("usage: localbase signin <email>")
		}
		session, err := client.Auth().SignInWithPassword(ctx, auth.Credentials{Email: args[1]})
		if err != nil {
			return err
		}
		return printJSON(session)
	case "whoami":
		if len(args) != 2 {
			return errors.New("usage: localbase whoami <token>")
		}
		detail, err := client.Auth().GetUser(ctx, args[1])
		if err != nil {
			return err
		}
		return printJSON(detail)
	default:
		return fmt.Errorf("unknown command: %q", args[0])
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
