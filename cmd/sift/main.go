package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"sift/internal/annotate"
	"sift/internal/config"
	"sift/internal/diag"
	"sift/internal/dump"
	"sift/internal/pipeline"
	"sift/internal/stats"
	"sift/internal/storage"
	"sift/internal/wikitext"
)

var (
	rootCmd = &cobra.Command{
		Use:           "sift",
		Short:         "Classify the wikilinks of a MediaWiki dump by parentheses and structure",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	configPath string
	dbPath     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "sift.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "SQLite database of annotated pages")

	f := annotateCmd.Flags()
	f.StringP("output", "o", "", "Output file for JSON lines (- for stdout)")
	f.IntP("workers", "w", 0, "Number of pages annotated in parallel (0 = all CPUs)")
	f.String("offsets", "", "Offset unit of link starts and lengths: rune or byte")
	f.StringSlice("transparent-tag", nil, "Tag whose span does not make links in-structure (repeatable)")
	f.String("tag-scanner", "", "Tag lexer: native or treesitter")
	f.String("ids", "", "CSV file of page ids to annotate (first column, header skipped)")
	f.String("log-level", "", "Diagnostic log level")
	f.Int("progress-every", 0, "Log progress every N pages")

	rootCmd.AddCommand(annotateCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(lookupCmd)
}

// loadConfig layers flags that were set explicitly over the config file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.DB = dbPath
	}
	if cmd.Name() != "annotate" {
		return cfg, cfg.Validate()
	}

	if flags.Changed("output") {
		cfg.Output, _ = flags.GetString("output")
	}
	if flags.Changed("workers") {
		cfg.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("offsets") {
		cfg.Offsets, _ = flags.GetString("offsets")
	}
	if flags.Changed("transparent-tag") {
		cfg.TransparentTags, _ = flags.GetStringSlice("transparent-tag")
	}
	if flags.Changed("tag-scanner") {
		cfg.TagScanner, _ = flags.GetString("tag-scanner")
	}
	if flags.Changed("ids") {
		cfg.IDsFile, _ = flags.GetString("ids")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("progress-every") {
		cfg.ProgressEvery, _ = flags.GetInt("progress-every")
	}
	return cfg, cfg.Validate()
}

var annotateCmd = &cobra.Command{
	Use:   "annotate [dump]",
	Short: "Annotate every article of a dump and write one JSON line per page",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		if len(args) == 1 {
			cfg.Input = args[0]
		}

		logger, err := diag.NewLogger(cmd.ErrOrStderr(), cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		logger, _ = diag.WithRun(logger)
		logger.Info("starting", "input", cfg.Input, "output", cfg.Output, "workers", cfg.Workers, "offsets", cfg.Offsets)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		ann, err := newAnnotator(cfg, logger)
		if err != nil {
			return fmt.Errorf("failed to create annotator: %w", err)
		}

		// 1. Input
		in, err := dump.Open(cfg.Input)
		if err != nil {
			return err
		}
		defer in.Close()

		var filter *dump.IDFilter
		if cfg.IDsFile != "" {
			filter, err = dump.LoadIDFilter(cfg.IDsFile)
			if err != nil {
				return fmt.Errorf("failed to load page ids: %w", err)
			}
			logger.Info("restricting to listed pages", "ids", filter.Len())
		}

		// 2. Sinks
		var sinks pipeline.MultiSink
		if cfg.DB != "" {
			store, err := storage.NewSQLiteStore(cfg.DB)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer store.Close()
			sinks = append(sinks, pipeline.NewStoreSink(store, 0))
		}

		out, closeOut, err := openOutput(cmd, cfg.Output)
		if err != nil {
			return fmt.Errorf("failed to open output: %w", err)
		}
		sinks = append(pipeline.MultiSink{pipeline.NewJSONLinesSink(out)}, sinks...)

		// 3. Annotate
		p := pipeline.New(ann, sinks, pipeline.Settings{
			Workers:       cfg.Workers,
			ProgressEvery: cfg.ProgressEvery,
			Filter:        filter,
		}, logger)

		sum, runErr := p.Run(ctx, dump.NewReader(in))
		if err := sinks.Close(); err != nil && runErr == nil {
			runErr = err
		}
		if err := closeOut(); err != nil && runErr == nil {
			runErr = err
		}
		if runErr != nil {
			logger.Error("Run failed", "err", runErr, "written", sum.Written)
			return runErr
		}
		return nil
	},
}

func newAnnotator(cfg *config.Config, logger *log.Logger) (*annotate.Annotator, error) {
	var scanner wikitext.TagScanner = wikitext.NativeScanner{}
	if cfg.TagScanner == config.ScannerTreeSitter {
		scanner = wikitext.TreeSitterScanner{}
	}
	return annotate.New(annotate.Options{
		TransparentTags: cfg.TransparentTags,
		Offsets:         cfg.Offsets,
		Scanner:         scanner,
		Logger:          logger,
	})
}

func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

var statsCmd = &cobra.Command{
	Use:   "stats [jsonl]",
	Short: "Summarize an annotated JSON lines file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in io.Reader = os.Stdin
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		s, err := stats.Collect(in)
		if err != nil {
			return err
		}
		_, err = s.WriteTo(cmd.OutOrStdout())
		return err
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup <title>",
	Short: "Print a stored page and its first free link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cfg.DB == "" {
			return fmt.Errorf("no database configured, pass --db")
		}

		store, err := storage.NewSQLiteStore(cfg.DB)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer store.Close()

		rec, link, ok, err := store.FirstLink(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		line, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintln(w, string(line))
		if ok {
			fmt.Fprintf(w, "first link: %s\n", link.Title)
		} else {
			fmt.Fprintln(w, "first link: none")
		}
		return nil
	},
}
