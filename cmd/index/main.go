// Command index builds an on-disk nutrie index from a newline-delimited,
// '|'-tokenized corpus: `index [-docstore] [-workers N] [-log-level
// LEVEL] <inputfile> <outputdir>`. Flags must precede the positional
// arguments, since flag.Parse stops at the first non-flag argument.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"nutrie/internal/docstore/leveldb"
	"nutrie/internal/indexer"
	"nutrie/internal/sl"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: index [-docstore] [-workers N] [-log-level LEVEL] <inputfile> <outputdir>")
}

func main() {
	workersFlag := flag.Int("workers", 4, "number of indexing workers")
	docstoreFlag := flag.Bool("docstore", false, "also store raw document text in a sibling docs.ldb directory")
	logLevelFlag := flag.String("log-level", "info", "log level: debug, info, warn, error")
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		usage()
		os.Exit(1)
	}
	inputFile, outputDir := args[0], args[1]

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(*logLevelFlag)}))

	var docStore indexer.DocStore
	if *docstoreFlag {
		store, err := leveldb.Open(log, filepath.Join(outputDir, "docs.ldb"))
		if err != nil {
			log.Error("index: failed to open docstore", "error", sl.Err(err))
			os.Exit(2)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error("index: failed to close docstore", "error", sl.Err(err))
			}
		}()
		docStore = store
	}

	stats, err := indexer.Build(context.Background(), log, inputFile, outputDir, *workersFlag, docStore)
	if err != nil {
		log.Error("index: build failed", "error", sl.Err(err))
		os.Exit(2)
	}

	fmt.Printf("Indexed %d documents, %d terms, in %v\n", stats.Documents, stats.Terms, stats.BuildTime)
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
