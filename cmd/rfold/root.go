package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	apppkg "github.com/kk-code-lab/rfold/internal/app"
	"github.com/kk-code-lab/rfold/internal/config"
	"github.com/kk-code-lab/rfold/internal/logging"
	"github.com/kk-code-lab/rfold/internal/rules"
	"github.com/kk-code-lab/rfold/internal/tree"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
)

// Version is overridden at link time.
var Version = "dev"

type options struct {
	configPath string
	root       string
	verbose    bool
	debug      bool
	logFile    string
	showHidden bool
	locale     string
	noWatch    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "rfold [dir]",
		Short: "Browse a directory with generated files folded under their sources",
		Long: `rfold shows a directory tree in which files matching a hide rule are folded
beneath the file that triggered them, e.g. app.js and app.js.map under app.ts.

Rules come from the global config file and from .rfold.yaml in the browsed
directory:

  hide:
    .ts: [.js, .js.map]
    .scss: [.css]`,
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowser(cmd, opts, args)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "Global configuration file (default: user config dir)")
	flags.StringVar(&opts.root, "root", "", "Directory to browse (default: current directory)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug output (same as --verbose)")
	flags.StringVar(&opts.logFile, "log-file", "", "Write browser logs to this file")
	flags.BoolVarP(&opts.showHidden, "show-hidden", "a", false, "Show dotfiles")
	flags.StringVar(&opts.locale, "locale", "", "Collation locale for name ordering (BCP 47, e.g. de or sv)")
	cmd.Flags().BoolVar(&opts.noWatch, "no-watch", false, "Do not watch the directory for changes")

	cmd.AddCommand(newTreeCmd(opts), newRulesCmd(opts))
	return cmd
}

// logger builds the logger for a command. The browser owns the terminal, so
// it only logs when --log-file is given.
func (o *options) logger(stderr io.Writer, interactive bool) (zerolog.Logger, io.Closer, error) {
	verbose := o.verbose || o.debug
	if o.logFile != "" {
		f, err := logging.OpenFile(o.logFile)
		if err != nil {
			return zerolog.Nop(), nil, err
		}
		return logging.New(logging.Options{Out: f, Verbose: verbose, NoColor: true}), f, nil
	}
	if interactive {
		return zerolog.Nop(), nil, nil
	}
	return logging.New(logging.Options{Out: stderr, Verbose: verbose}), nil, nil
}

// workspace is a browsed directory with its resolved configuration.
type workspace struct {
	root  string
	paths config.Paths
	fs    billy.Filesystem
	store *rules.Store
	tree  *tree.Tree
	// problems holds rules rejected by validation; the rest are in store.
	problems error
}

func (o *options) openWorkspace(cmd *cobra.Command, dir string) (*workspace, error) {
	ctx := cmd.Context()
	if dir == "" {
		dir = o.root
	}
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		dir = cwd
	}
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}

	paths := config.DefaultPaths(root)
	if o.configPath != "" {
		paths.Global = o.configPath
	}
	cfg, err := config.Load(paths)
	if err != nil {
		return nil, err
	}
	set, problems := cfg.RuleSet()
	if problems != nil {
		zerolog.Ctx(ctx).Warn().Err(problems).Msg("ignoring invalid hide rules")
	}

	showHidden := cfg.ShowHidden
	if cmd.Flags().Changed("show-hidden") {
		showHidden = o.showHidden
	}
	tag, err := parseLocale(firstNonEmpty(o.locale, cfg.Locale))
	if err != nil {
		return nil, err
	}

	fsys := osfs.New(root)
	store := rules.NewStore(set)
	zerolog.Ctx(ctx).Debug().
		Str("root", root).
		Str("global", paths.Global).
		Int("rules", set.Len()).
		Str("locale", tag.String()).
		Msg("workspace")
	return &workspace{
		root:     root,
		paths:    paths,
		fs:       fsys,
		store:    store,
		tree:     tree.New(fsys, "/", store, tree.WithLocale(tag), tree.WithShowHidden(showHidden)),
		problems: problems,
	}, nil
}

// reloadRules re-reads both configuration files. A decode failure keeps the
// current rules; validation problems still yield the valid remainder.
func (w *workspace) reloadRules() (*rules.Set, error) {
	cfg, err := config.Load(w.paths)
	if err != nil {
		return nil, err
	}
	return cfg.RuleSet()
}

func parseLocale(s string) (language.Tag, error) {
	if s == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("locale %q: %w", s, err)
	}
	return tag, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func runBrowser(cmd *cobra.Command, opts *options, args []string) error {
	logger, closer, err := opts.logger(cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}
	if closer != nil {
		defer closer.Close()
	}
	ctx, cancel := context.WithCancel(logger.WithContext(cmd.Context()))
	defer cancel()
	cmd.SetContext(ctx)

	ws, err := opts.openWorkspace(cmd, argOrEmpty(args))
	if err != nil {
		return err
	}

	app, err := apppkg.NewApplication(ctx, apppkg.Options{
		Root:        ws.root,
		FS:          ws.fs,
		Tree:        ws.tree,
		Store:       ws.store,
		ReloadRules: ws.reloadRules,
		ConfigFile:  "/" + config.WorkspaceFileName,
		Watch:       !opts.noWatch,
		Warning:     ws.problems,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = app.Close()
	}()

	logger.Info().Str("root", ws.root).Msg("browser started")
	app.Run()
	return nil
}

func argOrEmpty(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
