package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	xsearch "github.com/anatolykoptev/go-xsearch"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// crawlConfig is the YAML config file shape.
type crawlConfig struct {
	Queries []struct {
		Query    string `yaml:"query"`
		Category string `yaml:"category"`
	} `yaml:"queries"`
	Cookies   string `yaml:"cookies"`
	Proxy     string `yaml:"proxy"`
	Limit     int    `yaml:"limit"`
	Retries   int    `yaml:"retries"`
	Out       string `yaml:"out"`
	Save      bool   `yaml:"save"`
	SQLite    bool   `yaml:"sqlite"`
	PageDelay string `yaml:"page_delay"`
}

// NewSearchCmd creates the search command.
func NewSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search [query...]",
		Short: "Crawl search results for one or more queries",
		Long: `Search crawls the paginated search endpoint for every query, running all
queries concurrently over one authenticated session.

Examples:
  # Crawl two queries with a result limit
  xsearch search --cookies cookies.json --limit 100 "golang generics" "rust async"

  # Queries from a YAML config, pages persisted to SQLite
  xsearch search -c crawl.yaml --sqlite

Config file (crawl.yaml) example:
  cookies: cookies.json
  limit: 500
  save: true
  queries:
    - query: "golang generics"
      category: Latest
    - query: "rust async"
      category: Top`,
		Args: cobra.ArbitraryArgs,
		RunE: runSearchCmd,
	}

	cmd.Flags().StringP("config", "c", "", "YAML config file with queries and options")
	cmd.Flags().String("cookies", "", "JSON cookie file carrying ct0 and auth_token")
	cmd.Flags().String("category", string(xsearch.CategoryLatest), "Search category (Top, Latest, People, Media)")
	cmd.Flags().IntP("limit", "l", 0, "Stop a query once this many distinct results were seen (0 = unbounded)")
	cmd.Flags().IntP("retries", "r", 0, "Retry budget for transient failures (0 = default of 3)")
	cmd.Flags().DurationP("delay", "d", 0, "Delay between consecutive pages of one query (0 = default of 10s)")
	cmd.Flags().StringP("out", "o", "", "Output directory for results and saved pages")
	cmd.Flags().Bool("save", false, "Persist each intermediate page")
	cmd.Flags().Bool("sqlite", false, "Persist pages to SQLite instead of JSON files")
	cmd.Flags().String("proxy", "", "Proxy URL for all requests")

	return cmd
}

func runSearchCmd(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, queries, limit, useSQLite, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	cfg.Logger = logger

	if useSQLite {
		store, err := xsearch.OpenSQLiteStore(cfg.OutDir)
		if err != nil {
			return err
		}
		defer store.Close()
		cfg.Store = store
		cfg.SavePages = true
	}

	client, err := xsearch.NewClient(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	results, runErr := client.Run(ctx, queries, limit)

	for _, res := range results {
		switch {
		case res.Err != nil:
			logger.Error("query failed",
				slog.String("query", res.Query.Text),
				slog.Int("entries", len(res.Entries)),
				slog.Any("error", res.Err))
		default:
			logger.Info("query complete",
				slog.String("query", res.Query.Text),
				slog.Int("entries", len(res.Entries)))
		}
	}
	logger.Info("crawl finished",
		slog.Int("queries", len(queries)),
		slog.Duration("elapsed", time.Since(start)))

	if err := writeResults(cfg.OutDir, results); err != nil {
		return err
	}
	return runErr
}

// buildConfig merges the YAML config file with command-line flags; flags win.
func buildConfig(cmd *cobra.Command, args []string) (xsearch.Config, []xsearch.Query, int, bool, error) {
	var cfg xsearch.Config
	var queries []xsearch.Query
	var limit int
	var useSQLite bool

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, nil, 0, false, fmt.Errorf("read config: %w", err)
		}
		var fc crawlConfig
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return cfg, nil, 0, false, fmt.Errorf("parse config %s: %w", path, err)
		}
		for _, q := range fc.Queries {
			cat := xsearch.Category(q.Category)
			if cat == "" {
				cat = xsearch.CategoryLatest
			}
			queries = append(queries, xsearch.Query{Text: q.Query, Category: cat})
		}
		cfg.CookieFile = fc.Cookies
		cfg.Proxy = fc.Proxy
		cfg.Retries = fc.Retries
		cfg.OutDir = fc.Out
		cfg.SavePages = fc.Save
		limit = fc.Limit
		useSQLite = fc.SQLite
		if fc.PageDelay != "" {
			d, err := time.ParseDuration(fc.PageDelay)
			if err != nil {
				return cfg, nil, 0, false, fmt.Errorf("parse page_delay: %w", err)
			}
			cfg.PageDelay = d
		}
	}

	category, _ := cmd.Flags().GetString("category")
	for _, text := range args {
		queries = append(queries, xsearch.Query{Text: text, Category: xsearch.Category(category)})
	}
	if len(queries) == 0 {
		return cfg, nil, 0, false, fmt.Errorf("no queries given (arguments or config file)")
	}

	if v, _ := cmd.Flags().GetString("cookies"); v != "" {
		cfg.CookieFile = v
	}
	if v, _ := cmd.Flags().GetString("proxy"); v != "" {
		cfg.Proxy = v
	}
	if v, _ := cmd.Flags().GetInt("retries"); v != 0 {
		cfg.Retries = v
	}
	if v, _ := cmd.Flags().GetDuration("delay"); v != 0 {
		cfg.PageDelay = v
	}
	if v, _ := cmd.Flags().GetString("out"); v != "" {
		cfg.OutDir = v
	}
	if v, _ := cmd.Flags().GetBool("save"); v {
		cfg.SavePages = true
	}
	if v, _ := cmd.Flags().GetBool("sqlite"); v {
		useSQLite = true
	}
	if v, _ := cmd.Flags().GetInt("limit"); v != 0 {
		limit = v
	}
	if cfg.CookieFile == "" {
		return cfg, nil, 0, false, fmt.Errorf("--cookies (or cookies: in config) is required")
	}
	return cfg, queries, limit, useSQLite, nil
}

// writeResults dumps the accumulated entries of every query to one JSON
// file per crawl.
func writeResults(dir string, results []xsearch.CrawlResult) error {
	if dir == "" {
		dir = "data/search_results"
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	out := make(map[string][]xsearch.Entry, len(results))
	for _, res := range results {
		out[res.Query.Text] = res.Entries
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("results_%d.json", time.Now().UnixNano()))
	if err := os.WriteFile(path, data, 0640); err != nil {
		return fmt.Errorf("write results: %w", err)
	}
	return nil
}
