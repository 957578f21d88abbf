// Package main provides the Scribe TUI application: incremental meeting note
// capture, LLM-backed structuring and refinement, and rich export of the
// finalized minutes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/entrhq/scribe/pkg/calendar"
	appconfig "github.com/entrhq/scribe/pkg/config"
	"github.com/entrhq/scribe/pkg/executor/tui"
	"github.com/entrhq/scribe/pkg/export"
	"github.com/entrhq/scribe/pkg/llm/openai"
	"github.com/entrhq/scribe/pkg/logging"
	"github.com/entrhq/scribe/pkg/session"
	"github.com/entrhq/scribe/pkg/storage"
)

const version = "0.1.0" // Version of the Scribe application

// flags holds the command-line overlay on top of file and env config.
type flags struct {
	ConfigPath  string
	NotesRoot   string
	APIKey      string
	BaseURL     string
	Model       string
	Calendar    string
	ShowVersion bool
}

func main() {
	f := parseFlags()

	if f.ShowVersion {
		fmt.Printf("Scribe v%s\n", version)
		return
	}

	cfg, err := loadConfig(f)
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Create context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	if err := run(ctx, cfg); err != nil {
		cancel()
		log.Fatalf("Application error: %v", err)
	}
}

// parseFlags parses command line flags
func parseFlags() *flags {
	f := &flags{}

	flag.StringVar(&f.ConfigPath, "config", "", "Path to config file (default: ~/.scribe/config.yaml)")
	flag.StringVar(&f.NotesRoot, "notes-root", "", "Directory for finalized meeting folders")
	flag.StringVar(&f.APIKey, "api-key", "", "API key (or set OPENAI_API_KEY env var)")
	flag.StringVar(&f.BaseURL, "base-url", "", "API base URL for OpenAI-compatible endpoints")
	flag.StringVar(&f.Model, "model", "", "LLM model to use")
	flag.StringVar(&f.Calendar, "calendar", "", "Path to the YAML calendar file")
	flag.BoolVar(&f.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Scribe - meeting notes, structured\n\n")
		fmt.Fprintf(os.Stderr, "Usage: scribe [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_API_KEY      API key\n")
		fmt.Fprintf(os.Stderr, "  OPENAI_BASE_URL     API base URL (for compatible APIs)\n")
		fmt.Fprintf(os.Stderr, "  SCRIBE_NOTES_ROOT   Notes root directory\n")
		fmt.Fprintf(os.Stderr, "  SCRIBE_MODEL        Model name\n")
		fmt.Fprintf(os.Stderr, "  SCRIBE_CALENDAR     Calendar file path\n")
	}

	flag.Parse()
	return f
}

// loadConfig assembles the configuration: file, then env, then flags.
// Any validation failure here is fatal before a session begins.
func loadConfig(f *flags) (*appconfig.Config, error) {
	path := f.ConfigPath
	if path == "" {
		defaultPath, err := appconfig.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	cfg, err := appconfig.Load(path)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnv()

	if f.NotesRoot != "" {
		cfg.NotesRoot = f.NotesRoot
	}
	if f.APIKey != "" {
		cfg.APIKey = f.APIKey
	}
	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
	}
	if f.Model != "" {
		cfg.Model = f.Model
	}
	if f.Calendar != "" {
		cfg.CalendarPath = f.Calendar
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// run wires the collaborators and starts the TUI.
func run(ctx context.Context, cfg *appconfig.Config) error {
	logger, logErr := logging.NewLogger("scribe")
	if logErr != nil {
		log.Printf("Warning: file logging degraded: %v", logErr)
	}
	defer logger.Close()

	// Storage must be usable before any phase begins.
	store := storage.NewStore(cfg.NotesRoot)
	if err := store.ValidateRoot(); err != nil {
		return fmt.Errorf("%w: %v", appconfig.ErrConfig, err)
	}

	providerOpts := []openai.ProviderOption{
		openai.WithModel(cfg.Model),
		openai.WithMaxTokens(cfg.MaxTokens),
	}
	if cfg.BaseURL != "" {
		providerOpts = append(providerOpts, openai.WithBaseURL(cfg.BaseURL))
	}

	provider, err := openai.NewProvider(cfg.APIKey, providerOpts...)
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}

	var cal calendar.Calendar = calendar.Unavailable{}
	if cfg.CalendarPath != "" {
		outbox := cfg.OutboxPath
		if outbox == "" {
			outbox = filepath.Join(filepath.Dir(cfg.CalendarPath), "outbox")
		}
		cal = calendar.NewFileCalendar(cfg.CalendarPath, outbox)
	}

	sess := session.New(provider, store)

	logger.Infof("session starting: model=%s notes_root=%s calendar=%v",
		provider.GetModel(), store.Root(), cal.Available())

	executor := tui.NewExecutor(sess, cal, export.SystemClipboard{}, logger)
	if err := executor.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return fmt.Errorf("executor error: %w", err)
	}

	return nil
}
