package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	oplog "github.com/op/go-logging"
	"github.com/spf13/cobra"

	"github.com/CrestNiraj12/hntui/app"
	"github.com/CrestNiraj12/hntui/infra/cache"
	"github.com/CrestNiraj12/hntui/infra/config"
	"github.com/CrestNiraj12/hntui/infra/hn"
	"github.com/CrestNiraj12/hntui/infra/logging"
	"github.com/CrestNiraj12/hntui/tui"
	"github.com/CrestNiraj12/hntui/tui/feed"
)

var log = oplog.MustGetLogger("main")

// cliFlags holds flag values. They only override the loaded config when
// set on the command line.
type cliFlags struct {
	configPath  string
	baseURL     string
	cacheDir    string
	noFileCache bool
	logLevel    string
	ints        map[string]*int
}

// intFlags lists the numeric options exposed as flags, by TOML key.
var intFlags = []struct {
	key   string
	usage string
	field func(*config.Config) *int
}{
	{"count", "stories in the first page", func(c *config.Config) *int { return &c.Count }},
	{"page_size", "stories appended per page", func(c *config.Config) *int { return &c.PageSize }},
	{"cache_size", "items kept in memory", func(c *config.Config) *int { return &c.CacheSize }},
	{"concurrency", "parallel item fetches", func(c *config.Config) *int { return &c.Concurrency }},
	{"child_concurrency", "parallel reply subtree fetches", func(c *config.Config) *int { return &c.ChildConcurrency }},
	{"comment_prefetch_depth", "reply levels fetched with a thread", func(c *config.Config) *int { return &c.CommentPrefetchDepth }},
	{"ttl", "seconds a cached item stays fresh", func(c *config.Config) *int { return &c.TTLSecs }},
	{"max_stale", "seconds a stale item may be served", func(c *config.Config) *int { return &c.MaxStaleSecs }},
	{"retention", "seconds before cache cleanup deletes an item", func(c *config.Config) *int { return &c.RetentionSecs }},
	{"top_ids_ttl", "seconds the top story list is reused", func(c *config.Config) *int { return &c.TopIDsTTLSecs }},
	{"request_timeout", "HTTP request timeout in seconds", func(c *config.Config) *int { return &c.RequestTimeoutSecs }},
	{"prefetch_idle_delay", "idle milliseconds before comment prefetch", func(c *config.Config) *int { return &c.PrefetchIdleMillis }},
	{"max_comment_prefetches", "concurrent comment prefetches", func(c *config.Config) *int { return &c.MaxCommentPrefetches }},
	{"default_visible_levels", "comment levels shown expanded", func(c *config.Config) *int { return &c.DefaultVisibleLevels }},
	{"tick_interval", "UI tick in milliseconds", func(c *config.Config) *int { return &c.TickMillis }},
}

func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func newRootCmd() *cobra.Command {
	cmd, _ := buildRootCmd()
	return cmd
}

func buildRootCmd() (*cobra.Command, *cliFlags) {
	f := &cliFlags{ints: make(map[string]*int, len(intFlags))}

	cmd := &cobra.Command{
		Use:           "hntui",
		Short:         "Browse Hacker News top stories and comment threads in the terminal",
		Args:          cobra.NoArgs,
		Version:       versionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg, f.logLevel)
		},
	}
	cmd.SetVersionTemplate("{{.Version}}\n")

	defaults := config.Default()
	flags := cmd.Flags()
	flags.StringVar(&f.configPath, "config", "", "config file (default <user config dir>/hntui/config.toml)")
	flags.StringVar(&f.baseURL, "base-url", defaults.BaseURL, "API root")
	flags.StringVar(&f.cacheDir, "cache-dir", defaults.CacheDir, "disk cache directory")
	flags.BoolVar(&f.noFileCache, "no-file-cache", false, "keep items in memory only")
	flags.StringVar(&f.logLevel, "log-level", "INFO", "log level (DEBUG, INFO, WARNING, ERROR)")
	for _, opt := range intFlags {
		v := new(int)
		f.ints[opt.key] = v
		flags.IntVar(v, flagName(opt.key), *opt.field(&defaults), opt.usage)
	}
	return cmd, f
}

// loadConfig layers explicitly set flags over config.Load and validates
// the result.
func loadConfig(cmd *cobra.Command, f *cliFlags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = f.baseURL
	}
	if flags.Changed("cache-dir") {
		cfg.CacheDir = f.cacheDir
	}
	if f.noFileCache {
		cfg.FileCache = false
	}
	for _, opt := range intFlags {
		if flags.Changed(flagName(opt.key)) {
			*opt.field(&cfg) = *f.ints[opt.key]
		}
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func feedOptions(cfg config.Config) feed.Options {
	return feed.Options{
		Count:                cfg.Count,
		PageSize:             cfg.PageSize,
		PrefetchIdleDelay:    cfg.PrefetchIdleDelay(),
		MaxCommentPrefetches: cfg.MaxCommentPrefetches,
		DefaultVisibleLevels: cfg.DefaultVisibleLevels,
		TickInterval:         cfg.TickInterval(),
	}
}

func run(ctx context.Context, cfg config.Config, logLevel string) error {
	// 1. Logging goes to a file; the terminal belongs to the UI.
	logPath, logCloser, err := logging.Setup(logLevel)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	v, _, _ := resolvedRuntimeVersionInfo(version, commit, date)
	log.Infof("hntui %s starting, log file %s", v, logPath)

	// 2. Build the cache tiers.
	mem, err := cache.NewItemCache(cfg.CacheSize)
	if err != nil {
		return err
	}
	var (
		disk  *cache.DiskCache
		store app.StateStore
	)
	if cfg.FileCache {
		disk, err = cache.NewDiskCache(cfg.CacheDir, cfg.TTL())
		if err != nil {
			log.Warningf("disk cache disabled: %v", err)
			disk = nil
		} else {
			store = cache.NewStateStore(cfg.CacheDir)
		}
	}

	// 3. Build the service (concrete type satisfies app.StoryService).
	client := hn.NewClient(cfg.BaseURL, cfg.RequestTimeout())
	svc := hn.NewService(client, mem, disk, hn.Options{
		Concurrency:          cfg.Concurrency,
		ChildConcurrency:     cfg.ChildConcurrency,
		CommentPrefetchDepth: cfg.CommentPrefetchDepth,
		MaxStale:             cfg.MaxStale(),
		TopIDsTTL:            cfg.TopIDsTTL(),
	})
	defer svc.Close()
	if disk != nil {
		svc.StartJanitor(cfg.Retention())
	}

	// 4. Wire the root TUI model, seeded from the last saved list.
	root := tui.NewApp(tui.Deps{
		Stories: svc,
		State:   store,
		Options: feedOptions(cfg),
	})
	if store != nil {
		st, ok, err := store.Load(ctx)
		switch {
		case err != nil:
			log.Warningf("load saved story list: %v", err)
		case ok:
			root = root.Restore(st)
		}
	}

	// 5. Run.
	final, err := tea.NewProgram(root, tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("run: %w", err)
	}

	// 6. Save the list once more on the way out.
	if a, ok := final.(tui.App); ok {
		saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Feed().SaveState(saveCtx); err != nil {
			log.Warningf("save story list on exit: %v", err)
		}
	}
	log.Info("hntui exiting")
	return nil
}
