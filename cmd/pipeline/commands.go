package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nguyentantai21042004/summary-flow/internal/processor"
	"github.com/nguyentantai21042004/summary-flow/internal/summarizer"
	"github.com/nguyentantai21042004/summary-flow/internal/watcher"
)

func newRunCmd(a *app) *cobra.Command {
	var listPath string

	cmd := &cobra.Command{
		Use:   "run [URL...]",
		Short: "Run the whole pipeline for one or more URLs",
		Example: `  pipeline run "https://www.youtube.com/watch?v=tAP1eZYEuKA"
  pipeline run --list jobs.urls -v`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && listPath == "" {
				return errors.New("provide at least one URL or --list")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := ensureDirectories(a.cfg.Dirs()...); err != nil {
				return err
			}
			proc, err := a.newProcessor()
			if err != nil {
				return err
			}

			var errs []error
			for _, url := range args {
				res, err := proc.Process(ctx, url)
				if err != nil {
					a.log.Error(ctx, "Failed to process %s: %v", url, err)
					errs = append(errs, err)
					continue
				}
				fmt.Fprintln(cmd.OutOrStdout(), res.SummaryPath)
			}
			if listPath != "" {
				errs = append(errs, proc.ProcessList(ctx, listPath))
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().StringVarP(&listPath, "list", "l", "", "Job file with one URL per line")
	return cmd
}

func newExtractCmd(a *app) *cobra.Command {
	var opts processor.ExtractOptions

	cmd := &cobra.Command{
		Use:   "extract URL",
		Short: "Download audio and convert it to 16 kHz mono WAV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			proc, err := a.newProcessor()
			if err != nil {
				return err
			}

			path, err := proc.ExtractAudio(ctx, args[0], opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "", "Output directory (default paths.audio)")
	cmd.Flags().StringVarP(&opts.Filename, "filename", "f", "", "Output file name (default <upload date>_<title>.wav)")
	return cmd
}

func newTranscribeCmd(a *app) *cobra.Command {
	var opts processor.TranscribeOptions

	cmd := &cobra.Command{
		Use:   "transcribe WAV",
		Short: "Transcribe a WAV file with whisper.cpp",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			proc, err := a.newProcessor()
			if err != nil {
				return err
			}

			audioPath, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			path, err := proc.Transcribe(cmd.Context(), audioPath, opts)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}

	addToolFlags(cmd.Flags(), &opts.ToolDir, &opts.Model, "whisper.cpp")
	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "", "Output directory (default paths.processed)")
	return cmd
}

func newSummarizeCmd(a *app) *cobra.Command {
	var req summarizer.Request

	cmd := &cobra.Command{
		Use:   "summarize TRANSCRIPT",
		Short: "Summarize a transcript into JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sum, err := a.newSummarizer()
			if err != nil {
				return err
			}

			req.TranscriptPath = args[0]
			if req.OutDir == "" {
				stem := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
				req.OutDir = filepath.Join(a.cfg.Paths.Summaries, stem)
			}

			arts, err := sum.Summarize(cmd.Context(), req)
			if err != nil {
				if arts.GenerationPath != "" {
					a.log.Warn(cmd.Context(), "Raw generation kept at %s", arts.GenerationPath)
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), arts.JSONPath)
			return nil
		},
	}

	fs := cmd.Flags()
	addToolFlags(fs, &req.ToolDir, &req.Model, "llama.cpp")
	fs.StringVarP(&req.OutDir, "out", "o", "", "Output directory (default paths.summaries/<stem>)")
	fs.StringVar(&req.SchemaPath, "schema", "", "JSON schema file used to constrain generation")
	fs.StringVar(&req.PromptTemplate, "prompt", "", "Prompt template with a single %s for the transcript")
	fs.IntVarP(&req.Tokens, "tokens", "n", 0, "Number of tokens to predict")
	fs.IntVar(&req.ContextSize, "ctx-size", 0, "Context size")
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "report FILE",
		Short:       "Render a JSON summary or a plain transcript as .docx",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{skipPreflight: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			in := args[0]
			data, err := os.ReadFile(in)
			if err != nil {
				return err
			}

			stem := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
			if outPath == "" {
				outPath = strings.TrimSuffix(in, filepath.Ext(in)) + ".docx"
			}

			if strings.EqualFold(filepath.Ext(in), ".json") {
				err = summarizer.WriteReport(stem, data, outPath)
			} else {
				err = summarizer.WriteTranscriptDocx(stem, string(data), outPath)
			}
			if err != nil {
				return fmt.Errorf("write report: %w", err)
			}

			a.log.Info(cmd.Context(), "Report written: %s", outPath)
			fmt.Fprintln(cmd.OutOrStdout(), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output .docx path (default next to the input)")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Process job files dropped into the inbox directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := ensureDirectories(append(a.cfg.Dirs(), a.cfg.Paths.Inbox, a.cfg.Paths.Archived)...); err != nil {
				return err
			}
			proc, err := a.newProcessor()
			if err != nil {
				return err
			}

			w, err := watcher.New(a.cfg.Paths.Inbox, proc.HandleJob, a.log, a.cfg.Performance.MaxConcurrent, watcher.DefaultSettleDelay)
			if err != nil {
				return err
			}
			defer w.Stop()

			a.log.Info(ctx, "========================================")
			a.log.Info(ctx, "Summary pipeline is ready")
			a.log.Info(ctx, "System: %s/%s, %d CPU cores", runtime.GOOS, runtime.GOARCH, runtime.NumCPU())
			a.log.Info(ctx, "Inbox: %s", a.cfg.Paths.Inbox)
			a.log.Info(ctx, "Summaries: %s", a.cfg.Paths.Summaries)
			a.log.Info(ctx, "Backend: %s", a.cfg.Summarizer.Backend)
			a.log.Info(ctx, "Press Ctrl+C to stop")
			a.log.Info(ctx, "========================================")

			if err := w.Start(ctx); err != nil && !errors.Is(err, ctx.Err()) {
				return err
			}
			a.log.Info(ctx, "Summary pipeline stopped")
			return nil
		},
	}
}

func newCheckCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify external tools and model files are installed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%-12s %s\n", "downloader", a.cfg.Tools.Downloader)
			fmt.Fprintf(out, "%-12s %s\n", "transcoder", a.cfg.Tools.Transcoder)

			files := []struct{ label, path string }{
				{"whisper", a.cfg.WhisperBinary()},
				{"whisper-mdl", filepath.Join(a.cfg.Whisper.Dir, "models", a.cfg.Whisper.Model)},
			}
			if a.cfg.Summarizer.Backend == "llama" {
				files = append(files,
					struct{ label, path string }{"llama", a.cfg.LlamaBinary()},
					struct{ label, path string }{"llama-mdl", filepath.Join(a.cfg.Llama.Dir, "models", a.cfg.Llama.Model)},
				)
			}

			var errs []error
			for _, f := range files {
				if _, err := os.Stat(f.path); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", f.label, err))
					fmt.Fprintf(out, "%-12s MISSING %s\n", f.label, f.path)
					continue
				}
				fmt.Fprintf(out, "%-12s %s\n", f.label, f.path)
			}
			return errors.Join(errs...)
		},
	}
}

// addToolFlags registers the shared --dir/--model overrides for a local model tool
func addToolFlags(fs *pflag.FlagSet, dir, model *string, tool string) {
	fs.StringVar(dir, "dir", "", fmt.Sprintf("Path to the %s checkout (default from config)", tool))
	fs.StringVarP(model, "model", "m", "", "Model file under <dir>/models (default from config)")
}
