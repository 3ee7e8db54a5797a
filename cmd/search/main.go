// Command search answers conjunctive queries over a nutrie index:
// `search [-prefix] [-fuzzy] [-i] <indexdir> <term> [<term>...]`. Flags
// must precede the positional arguments, since flag.Parse stops at the
// first non-flag argument. `-i` launches the interactive gocui console
// instead of running one query.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"nutrie/internal/docstore/leveldb"
	"nutrie/internal/searcher"
	"nutrie/internal/sl"
	"nutrie/internal/tui"
)

func usage() {
	fmt.Fprintln(os.Stderr, "usage: search [-prefix] [-fuzzy] [-i] <indexdir> <term> [<term>...]")
}

func main() {
	prefixFlag := flag.Bool("prefix", false, "treat the query as a prefix lookup")
	fuzzyFlag := flag.Bool("fuzzy", false, "suggest terms within edit distance 2 on a miss")
	interactiveFlag := flag.Bool("i", false, "launch the interactive search console")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 || (!*interactiveFlag && len(args) < 2) {
		usage()
		os.Exit(1)
	}
	indexDir := args[0]

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	s, err := searcher.Open(log, indexDir)
	if err != nil {
		log.Error("search: failed to open index", "error", sl.Err(err))
		os.Exit(2)
	}

	if *interactiveFlag {
		runInteractive(log, s, indexDir)
		return
	}

	terms := args[1:]
	matches, err := s.Search(terms, *prefixFlag)
	if err != nil {
		log.Error("search: query failed", "error", sl.Err(err))
		os.Exit(2)
	}

	if len(matches) == 0 {
		fmt.Println("Not found!")
		if *fuzzyFlag {
			suggestFuzzy(s, terms)
		}
		os.Exit(0)
	}

	fmt.Printf("Found in %d docs!\n", len(matches))
	for _, m := range matches {
		fmt.Printf("doc %d  tf=%d  positions=%v\n", m.Doc, m.Tf, m.Positions)
	}
}

func suggestFuzzy(s *searcher.Searcher, terms []string) {
	for _, t := range terms {
		suggestions := s.FuzzySuggest(t)
		if len(suggestions) == 0 {
			continue
		}
		fmt.Printf("did you mean (for %q):\n", t)
		for _, sug := range suggestions {
			fmt.Printf("  %s (distance %d)\n", sug.Term, sug.Distance)
		}
	}
}

func runInteractive(log *slog.Logger, s *searcher.Searcher, indexDir string) {
	var docs *leveldb.Store
	docsPath := indexDir + "/docs.ldb"
	if _, err := os.Stat(docsPath); err == nil {
		if store, err := leveldb.Open(log, docsPath); err == nil {
			docs = store
			defer store.Close()
		}
	}

	console, err := tui.New(log, s, docs, 20)
	if err != nil {
		log.Error("search: failed to start console", "error", sl.Err(err))
		os.Exit(2)
	}
	defer console.Close()

	if err := console.Start(); err != nil {
		log.Error("search: console exited with error", "error", sl.Err(err))
		os.Exit(2)
	}
}
