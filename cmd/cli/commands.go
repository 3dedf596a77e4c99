package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/dsjohal14/prepsearch/internal/libs/config"
	"github.com/dsjohal14/prepsearch/internal/libs/obs"
	"github.com/dsjohal14/prepsearch/internal/scope/db"
	"github.com/dsjohal14/prepsearch/internal/scope/search"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// options holds the persistent flags shared by every command
type options struct {
	cfg      *config.Config
	jsonOut  bool
	logLevel string
	loadErr  error
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "prepsearch",
		Short:         "Search SAT practice test content",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			obs.InitLogger(opts.logLevel)
			if opts.loadErr != nil {
				logger := cliLogger(cmd, "config")
				logger.Warn().Err(opts.loadErr).Msg("invalid environment config, using defaults")
			}
			return nil
		},
	}

	cfg, err := config.Load()
	if err != nil {
		// Keep --help usable and let flags override; the error is reported once logging is set up
		opts.loadErr = err
		cfg = config.Defaults()
	}
	opts.cfg = cfg

	flags := root.PersistentFlags()
	flags.StringVar(&cfg.TestsSource, "source", cfg.TestsSource, "test source: http, postgres or file")
	flags.StringVar(&cfg.TestsAPIURL, "api-url", cfg.TestsAPIURL, "base URL of the tests REST API")
	flags.StringVar(&cfg.DatabaseURL, "database-url", cfg.DatabaseURL, "Postgres connection string")
	flags.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "directory holding the tests snapshot")
	flags.IntVar(&cfg.FetchLimit, "limit", cfg.FetchLimit, "maximum number of tests to load")
	flags.DurationVar(&cfg.FetchTimeout, "timeout", cfg.FetchTimeout, "fetch timeout")
	flags.BoolVar(&opts.jsonOut, "json", false, "print JSON output")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level")

	root.AddCommand(
		newSearchCmd(opts),
		newSuggestCmd(opts),
		newHighlightCmd(opts),
		newSnapshotCmd(opts),
		newInteractiveCmd(opts),
	)
	return root
}

// openSession loads the configured repository into a ready search session
func openSession(ctx context.Context, cmd *cobra.Command, opts *options) (*search.Session, func(), error) {
	repo, err := db.Open(ctx, opts.cfg)
	if err != nil {
		return nil, nil, err
	}

	logger := cliLogger(cmd, "search")
	session := search.NewSession(search.SessionConfig{
		Repository:   repo,
		Logger:       logger,
		Limit:        opts.cfg.FetchLimit,
		FetchTimeout: opts.cfg.FetchTimeout,
	})
	if err := session.Open(ctx); err != nil {
		_ = repo.Close()
		return nil, nil, fmt.Errorf("failed to load tests from %s: %w", repo.Name(), err)
	}
	return session, func() { _ = repo.Close() }, nil
}

func cliLogger(cmd *cobra.Command, component string) zerolog.Logger {
	return obs.LoggerTo(cmd.ErrOrStderr(), component)
}

func newSearchCmd(opts *options) *cobra.Command {
	var sortMode string
	var disabled []string
	var highlight bool

	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search test content for a term",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filters, err := parseDisabled(disabled)
			if err != nil {
				return err
			}

			session, closeFn, err := openSession(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer closeFn()

			term := strings.Join(args, " ")
			results := session.Search(term, filters, search.ParseSortMode(sortMode))
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), results.Groups)
			}
			printGroups(cmd.OutOrStdout(), results.Groups, strings.TrimSpace(term), highlight)
			return nil
		},
	}

	cmd.Flags().StringVar(&sortMode, "sort", string(search.SortRelevance), "sort mode: relevance, testName or matchCount")
	cmd.Flags().StringSliceVar(&disabled, "exclude", nil, "field types to leave out (title, description, section, question, explanation, passage, option)")
	cmd.Flags().BoolVar(&highlight, "highlight", true, "mark matches in the output")
	return cmd
}

func newSuggestCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <partial>",
		Short: "Suggest test titles and section names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			session, closeFn, err := openSession(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer closeFn()

			suggestions := session.Suggest(args[0])
			if opts.jsonOut {
				if suggestions == nil {
					suggestions = []string{}
				}
				return writeJSON(cmd.OutOrStdout(), suggestions)
			}
			for _, s := range suggestions {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}

func newHighlightCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "highlight <text> <term>",
		Short: "Show how text is split around a term",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			segments := search.Highlight(args[0], args[1])
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), segments)
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderSegments(segments))
			return nil
		},
	}
}

func newSnapshotCmd(opts *options) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Copy tests from the configured source into a local snapshot",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			repo, err := db.Open(ctx, opts.cfg)
			if err != nil {
				return err
			}
			defer func() { _ = repo.Close() }()

			tests, err := repo.ListTests(ctx, opts.cfg.FetchLimit)
			if err != nil {
				return fmt.Errorf("failed to list tests from %s: %w", repo.Name(), err)
			}

			store, err := db.NewFileStore(out)
			if err != nil {
				return err
			}
			store.Replace(tests)
			if err := store.Close(); err != nil {
				return err
			}

			logger := cliLogger(cmd, "snapshot")
			logger.Info().
				Str("source", repo.Name()).
				Int("doc_count", len(tests)).
				Str("path", store.Path()).
				Msg("snapshot written")
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d tests to %s\n", len(tests), store.Path())
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "./data", "snapshot output directory")
	return cmd
}

func newInteractiveCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "interactive",
		Short: "Read terms line by line and search after each pause in typing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			session, closeFn, err := openSession(cmd.Context(), cmd, opts)
			if err != nil {
				return err
			}
			defer closeFn()

			return runInteractive(cmd.InOrStdin(), cmd.OutOrStdout(), session, opts.cfg.DebounceInterval)
		},
	}
}

func parseDisabled(names []string) (search.Filters, error) {
	filters := search.DefaultFilters()
	for _, name := range names {
		ft := search.FieldType(strings.TrimSpace(name))
		if _, ok := filters[ft]; !ok {
			return nil, fmt.Errorf("unknown field type %q", name)
		}
		filters[ft] = false
	}
	return filters, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
