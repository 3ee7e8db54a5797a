// Command fts is the combined entry point: it loads a cleanenv config
// and dispatches to the same internal/indexer and internal/searcher
// APIs the plain index/search CLIs use, adding an interactive console
// and an optional document side-car on top.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"nutrie/internal/config"
	"nutrie/internal/docstore/leveldb"
	"nutrie/internal/indexer"
	"nutrie/internal/searcher"
	"nutrie/internal/sl"
	"nutrie/internal/tui"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func setupLogger(env string) *slog.Logger {
	switch env {
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

func main() {
	cfg := config.MustLoad()
	log := setupLogger(cfg.Env)

	log.Info("fts", "env", cfg.Env, "index_dir", cfg.IndexDir)

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, "usage: fts build <inputfile> | fts search <term> [<term>...]")
		os.Exit(1)
	}

	var docStore *leveldb.Store
	if cfg.DocStore.Enabled {
		store, err := leveldb.Open(log, cfg.DocStore.Path)
		if err != nil {
			log.Error("fts: failed to open docstore", "error", sl.Err(err))
			os.Exit(2)
		}
		defer store.Close()
		docStore = store
	}

	switch args[0] {
	case "build":
		if len(args) != 2 {
			fmt.Fprintln(os.Stderr, "usage: fts build <inputfile>")
			os.Exit(1)
		}
		var ds indexer.DocStore
		if docStore != nil {
			ds = docStore
		}
		stats, err := indexer.Build(context.Background(), log, args[1], cfg.IndexDir, cfg.Workers, ds)
		if err != nil {
			log.Error("fts: build failed", "error", sl.Err(err))
			os.Exit(2)
		}
		log.Info("fts: build complete", "documents", stats.Documents, "terms", stats.Terms)

	case "search":
		s, err := searcher.Open(log, cfg.IndexDir)
		if err != nil {
			log.Error("fts: failed to open index", "error", sl.Err(err))
			os.Exit(2)
		}

		if cfg.Interactive {
			console, err := tui.New(log, s, docStore, 20)
			if err != nil {
				log.Error("fts: failed to start console", "error", sl.Err(err))
				os.Exit(2)
			}
			defer console.Close()
			if err := console.Start(); err != nil {
				log.Error("fts: console exited with error", "error", sl.Err(err))
				os.Exit(2)
			}
			return
		}

		terms := args[1:]
		if len(terms) == 0 {
			fmt.Fprintln(os.Stderr, "usage: fts search <term> [<term>...]")
			os.Exit(1)
		}
		matches, err := s.Search(terms, false)
		if err != nil {
			log.Error("fts: query failed", "error", sl.Err(err))
			os.Exit(2)
		}
		if len(matches) == 0 {
			fmt.Println("Not found!")
			return
		}
		fmt.Printf("Found in %d docs!\n", len(matches))
		for _, m := range matches {
			fmt.Printf("doc %d  tf=%d  positions=%v\n", m.Doc, m.Tf, m.Positions)
		}

	default:
		fmt.Fprintf(os.Stderr, "unknown subcommand %q\n", args[0])
		os.Exit(1)
	}
}
