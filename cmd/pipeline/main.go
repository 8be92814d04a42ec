package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nguyentantai21042004/summary-flow/internal/config"
	"github.com/nguyentantai21042004/summary-flow/internal/logger"
	"github.com/nguyentantai21042004/summary-flow/internal/preflight"
	"github.com/nguyentantai21042004/summary-flow/internal/processor"
	"github.com/nguyentantai21042004/summary-flow/internal/summarizer"
	"github.com/nguyentantai21042004/summary-flow/pkg/executor"
)

// skipPreflight marks subcommands that never run a pipeline stage
const skipPreflight = "skip-preflight"

// app carries the state shared by every subcommand
type app struct {
	configPath string
	envPath    string
	verbosity  int
	logFormat  string

	cfg  *config.Config
	log  logger.Logger
	exec executor.Executor
}

func main() {
	// Create context with cancellation on SIGINT/SIGTERM; running tools are killed with it
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(&app{}).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "pipeline",
		Short:         "Download, transcribe and summarize online videos with local models",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd); err != nil {
				return err
			}
			// A missing tool aborts before any stage runs
			if cmd.Annotations[skipPreflight] == "" {
				return a.resolveTools(cmd.Context())
			}
			return nil
		},
	}

	fs := root.PersistentFlags()
	fs.StringVarP(&a.configPath, "config", "c", "config.yaml", "Path to the YAML config file")
	fs.StringVarP(&a.envPath, "env", "e", ".env", "Path to a .env file with API keys")
	fs.CountVarP(&a.verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug)")
	fs.StringVar(&a.logFormat, "log-format", "", "Log format: text or json")

	root.AddCommand(
		newRunCmd(a),
		newExtractCmd(a),
		newTranscribeCmd(a),
		newSummarizeCmd(a),
		newReportCmd(a),
		newWatchCmd(a),
		newCheckCmd(a),
	)
	return root
}

// setup loads env, configuration and logger before any subcommand runs
func (a *app) setup(cmd *cobra.Command) error {
	if err := godotenv.Load(a.envPath); err != nil {
		// .env is optional unless named explicitly
		if cmd.Flags().Changed("env") || !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load env file: %w", err)
		}
	}

	var (
		cfg *config.Config
		err error
	)
	if cmd.Flags().Changed("config") {
		cfg, err = config.Load(a.configPath)
	} else {
		cfg, err = config.LoadOrDefault(a.configPath)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cmd.Flags().Changed("verbose") {
		cfg.Verbosity = a.verbosity
	}
	if a.logFormat != "" {
		cfg.Logging.Format = a.logFormat
	}
	level := cfg.Logging.Level
	if level == "" || cmd.Flags().Changed("verbose") {
		level = logger.LevelForVerbosity(cfg.Verbosity)
	}

	a.cfg = cfg
	a.log = logger.NewWithWriter(os.Stderr, level, cfg.Logging.Format)
	a.exec = executor.New()
	return nil
}

// resolveTools runs the preflight check and pins the resolved absolute paths into config
func (a *app) resolveTools(ctx context.Context) error {
	resolved, err := preflight.Check(ctx, a.exec, a.log,
		preflight.Requirement{Name: a.cfg.Tools.Downloader, InstallURL: a.cfg.Tools.DownloaderInstallURL},
		preflight.Requirement{Name: a.cfg.Tools.Transcoder, InstallURL: a.cfg.Tools.TranscoderInstallURL},
	)
	if err != nil {
		return err
	}

	a.cfg.Tools.Downloader = resolved[a.cfg.Tools.Downloader]
	a.cfg.Tools.Transcoder = resolved[a.cfg.Tools.Transcoder]
	return nil
}

func (a *app) newSummarizer() (summarizer.Summarizer, error) {
	return summarizer.New(a.cfg, a.exec, a.log)
}

func (a *app) newProcessor() (processor.Processor, error) {
	sum, err := a.newSummarizer()
	if err != nil {
		return nil, err
	}
	return processor.New(a.cfg, a.exec, sum, a.log), nil
}

// ensureDirectories creates required directories if they don't exist
func ensureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}
