package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"ragdesk/internal/app"
	"ragdesk/internal/config"
	"ragdesk/internal/logger"
	"ragdesk/internal/notify"
	"ragdesk/internal/tui"
)

const usage = `Usage: ragdesk [--config=ragdesk.yaml] [-v] [command]

Without a command the terminal UI starts.

Commands:
  files                          list uploaded files
  upload <path>...               upload local files
  delete <name>                  delete an uploaded file
  models                         list available models
  ask [-files a,b] [-model m] <question>
                                 ask a question, optionally scoped to files
  embed                          build the vector store and follow its log
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	_ = godotenv.Load()

	fs := flag.NewFlagSet("ragdesk", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() { fmt.Fprint(stderr, usage) }
	var cfgPath string
	var verbose bool
	fs.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/ragdesk/config.yaml if not provided)")
	fs.BoolVar(&verbose, "v", false, "Log to stderr (headless commands only)")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		fmt.Fprintf(stderr, "failed to load config: %v\n", err)
		return 1
	}

	rest := fs.Args()
	headless := len(rest) > 0
	log, err := logger.New(logger.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Console:    headless && (cfg.Log.Console || verbose),
	})
	if err != nil {
		fmt.Fprintf(stderr, "failed to init logger: %v\n", err)
		return 1
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !headless {
		if err := runTUI(ctx, cfg, log); err != nil {
			fmt.Fprintf(stderr, "ragdesk: %v\n", err)
			return 1
		}
		return 0
	}

	c := app.New(cfg, log, notify.NewConsole(stdout))
	cmd, ok := commands[rest[0]]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", rest[0])
		fs.Usage()
		return 2
	}
	if err := cmd(ctx, c, rest[1:], stdout); err != nil {
		var ue *usageError
		if errors.As(err, &ue) {
			fmt.Fprintf(stderr, "%v\n\n", err)
			fs.Usage()
			return 2
		}
		log.Debug("command failed", zap.String("command", rest[0]), zap.Error(err))
		return 1
	}
	return 0
}

func runTUI(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) error {
	bridge := tui.NewBridge()
	defer bridge.Close()
	c := app.New(cfg, log, bridge)

	model := tui.New(ctx, tui.Deps{
		Files:     c.Files,
		Chat:      c.Chat,
		Embedding: c.Embedding,
		Models:    c.Models,
		Inspector: c.Inspector,
		Excerpter: c.Excerpter,
	}, bridge)
	log.Info("starting tui", zap.String("backend", cfg.Backend.BaseURL))
	_, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
