package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/suggestbox/suggestbox/internal/config"
	"github.com/suggestbox/suggestbox/internal/logging"
	"github.com/suggestbox/suggestbox/internal/scheduler"
	"github.com/suggestbox/suggestbox/internal/store"
	"github.com/suggestbox/suggestbox/pkg/server"
	"github.com/suggestbox/suggestbox/pkg/shortcut"
	"github.com/suggestbox/suggestbox/pkg/source"
	"github.com/suggestbox/suggestbox/pkg/suggest"
)

func loadConfig() (*config.Config, error) {
	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func openRepository(cfg *config.Config) (*shortcut.Repository, *store.SQLiteStore, error) {
	db, err := store.New(cfg.Database.Path)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}

	repo := shortcut.NewRepository(db, shortcut.Config{
		MaxStatAge:                cfg.Shortcuts.ParseMaxStatAge(),
		MaxSourceEventAge:         cfg.Shortcuts.ParseMaxSourceEventAge(),
		MinClicksForSourceRanking: cfg.Shortcuts.MinClicksRanking,
		MaxShortcutsReturned:      cfg.Shortcuts.MaxReturned,
		Weight:                    shortcut.ExponentialDecay(cfg.Shortcuts.ParseScoreHalfLife()),
		RefreshingIconURI:         cfg.Shortcuts.RefreshingIcon,
	})
	return repo, db, nil
}

type reportOpts struct {
	query      string
	source     string
	shortcutID string
	text1      string
	text2      string
	action     string
	data       string
}

func runReport(opts reportOpts) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	repo, db, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	s := suggest.Suggestion{
		Source:       suggest.SourceID(opts.source),
		ShortcutID:   opts.shortcutID,
		Text1:        opts.text1,
		Text2:        opts.text2,
		IntentAction: opts.action,
		IntentData:   opts.data,
	}

	if err := repo.ReportClick(context.Background(), opts.query, s); err != nil {
		return fmt.Errorf("report click: %w", err)
	}
	return nil
}

func runShortcuts(query string, jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	repo, db, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	shortcuts, err := repo.ShortcutsFor(context.Background(), query, time.Now())
	if err != nil {
		return fmt.Errorf("get shortcuts: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(shortcuts)
	}

	if len(shortcuts) == 0 {
		fmt.Println("no shortcuts (try recording clicks first: suggestbox report)")
		return nil
	}

	return printShortcuts(shortcuts)
}

func printShortcuts(shortcuts []shortcut.Shortcut) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCORE\tHITS\tSOURCE\tTEXT\tLAST CLICK")
	for _, s := range shortcuts {
		fmt.Fprintf(w, "%.3f\t%d\t%s\t%s\t%s\n",
			s.Score, s.HitCount, s.Source, s.Text1,
			s.LastHit.Format(time.RFC3339))
	}
	return w.Flush()
}

func runSuggest(query string, limit, click int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	repo, db, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := context.Background()

	// Shortcuts come first: they render before any live source responds.
	shortcuts, err := repo.ShortcutsFor(ctx, query, time.Now())
	if err != nil {
		return fmt.Errorf("get shortcuts: %w", err)
	}

	results := make([]suggest.Suggestion, 0, len(shortcuts))
	for _, s := range shortcuts {
		results = append(results, s.Suggestion)
	}

	seen := make(map[string]bool, len(results))
	for _, s := range results {
		seen[string(s.Source)+"\x00"+s.Key()] = true
	}

	for _, src := range source.Build(cfg) {
		suggestions, err := src.Suggest(ctx, query, limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  %s error: %v\n", src.ID(), err)
			continue
		}
		for _, s := range suggestions {
			key := string(s.Source) + "\x00" + s.Key()
			if seen[key] {
				continue
			}
			seen[key] = true
			results = append(results, s)
		}
	}

	if len(results) == 0 {
		fmt.Println("no suggestions")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSOURCE\tTEXT\tDATA")
	for i, s := range results {
		marker := ""
		if i < len(shortcuts) {
			marker = "*"
		}
		fmt.Fprintf(w, "%d%s\t%s\t%s\t%s\n", i+1, marker, s.Source, s.Text1, s.IntentData)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if click > 0 {
		if click > len(results) {
			return fmt.Errorf("no result %d to click", click)
		}
		picked := results[click-1]
		if err := repo.ReportClick(ctx, query, picked); err != nil {
			return fmt.Errorf("report click: %w", err)
		}
		fmt.Fprintf(os.Stderr, "clicked: %s\n", picked.Text1)
	}

	return nil
}

func runRanking(jsonOutput bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	repo, db, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ranks, err := repo.SourceRanking(context.Background(), time.Now())
	if err != nil {
		return fmt.Errorf("source ranking: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ranks)
	}

	if len(ranks) == 0 {
		fmt.Println("no sources ranked (not enough clicks yet)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CLICKS\tSOURCE")
	for _, r := range ranks {
		fmt.Fprintf(w, "%d\t%s\n", r.Clicks, r.Source)
	}
	return w.Flush()
}

func runClear() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	repo, db, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repo.ClearHistory(context.Background()); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	fmt.Println("history cleared")
	return nil
}

func runServe(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	log, err := logging.New(debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	repo, db, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := server.New(repo, log, port)
	return srv.ListenAndServe()
}

func runDaemon(port int) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if port == 0 {
		port = cfg.Server.Port
	}

	log, err := logging.New(debug)
	if err != nil {
		return err
	}
	defer log.Sync()

	repo, db, err := openRepository(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	sched := scheduler.New(db, log,
		cfg.Maintenance.ParsePurgeInterval(),
		cfg.Shortcuts.ParseMaxStatAge(),
		cfg.Shortcuts.ParseMaxSourceEventAge(),
	)

	// Start maintenance in background.
	go func() {
		if err := sched.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("scheduler error", zap.Error(err))
		}
	}()

	srv := server.New(repo, log, port)
	return srv.Run(ctx)
}
