// Guardian command-line front end. It wires configuration, logging and
// the AI adapter together and exposes three commands:
//
//	guardian [flags] ask <prompt>   send a prompt to the configured model
//	guardian models                 list known models
//	guardian version                print the version
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/guardianhq/guardian/ai"
	"github.com/guardianhq/guardian/config"
	gerrors "github.com/guardianhq/guardian/errors"
	"github.com/guardianhq/guardian/gemini"
	"github.com/guardianhq/guardian/metrics"
)

var (
	configFile   = flag.String("config", "guardian.yaml", "Path to configuration file")
	systemPrompt = flag.String("system", "", "System prompt for the request")
	reasoning    = flag.Bool("reasoning", false, "Ask the model for an explicit reasoning section")
	syncMode     = flag.Bool("sync", false, "Use the blocking generate path")
	showVersion  = flag.Bool("version", false, "Print version and exit")
)

const Version = "v0.1.0"

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Printf("guardian %s\n", Version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "version":
		fmt.Printf("guardian %s\n", Version)
	case "models":
		printCatalog()
	case "ask":
		if len(args) < 2 {
			fmt.Fprintln(os.Stderr, "usage: guardian [flags] ask <prompt>")
			os.Exit(2)
		}
		if err := ask(strings.Join(args[1:], " ")); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: guardian [flags] <ask|models|version> ...")
	flag.PrintDefaults()
}

func ask(prompt string) error {
	// Credentials may live in a local .env; absence is not an error.
	_ = godotenv.Load()

	cfg, err := loadConfig(*configFile)
	if err != nil {
		return err
	}

	logger, err := buildLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to sync logger: %v\n", syncErr)
		}
	}()
	gerrors.SetLogger(logger)

	m := metrics.NewMetrics()
	if cfg.Metrics.Enabled {
		go func() {
			if err := http.ListenAndServe(cfg.Metrics.Address, m.Handler()); err != nil {
				logger.Warn("metrics endpoint stopped", zap.Error(err))
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := gemini.New(ctx, cfg, logger, m)
	if err != nil {
		return gerrors.NewInitError("failed to initialize inference service", err)
	}

	if len(svc.Accounts()) == 0 {
		fmt.Fprintln(os.Stderr, "Warning: no API credentials found.")
		fmt.Fprintln(os.Stderr, "         Set GEMINI_API_KEY (or GOOGLE_API_KEY) before using AI features.")
	}

	client := ai.NewClientWithService(cfg, logger, m, svc)

	switch {
	case *reasoning:
		reply, err := client.GenerateWithReasoning(ctx, prompt, *systemPrompt, nil)
		if err != nil {
			return err
		}
		fmt.Printf("REASONING:\n%s\n\nRESPONSE:\n%s\n", reply.Reasoning, reply.Response)
	case *syncMode:
		text, err := client.GenerateSync(prompt, *systemPrompt, nil)
		if err != nil {
			return err
		}
		fmt.Println(text)
	default:
		text, err := client.Generate(ctx, prompt, *systemPrompt, nil)
		if err != nil {
			return err
		}
		fmt.Println(text)
	}

	return nil
}

// loadConfig reads the configured file, falling back to defaults when
// the file does not exist.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config.DefaultConfig(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// buildLogger maps the logging section onto a zap configuration.
func buildLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var zcfg zap.Config
	if cfg.Format == "text" {
		zcfg = zap.NewDevelopmentConfig()
	} else {
		zcfg = zap.NewProductionConfig()
	}

	level, err := zap.ParseAtomicLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zcfg.Level = level

	return zcfg.Build()
}

func printCatalog() {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tPROVIDER\tSOURCE\tCAPABILITIES")
	for _, m := range gemini.Catalog() {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.Name, m.Provider, m.Source, m.Capabilities)
	}
	w.Flush()
	fmt.Println("\nNote: Antigravity models use internal quotas.")
}
