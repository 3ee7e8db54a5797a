// Package indexer implements the build-time driver: scanning a
// newline-delimited, '|'-tokenized corpus into per-document forward
// indices, grouping those into per-term postings, and handing the
// sorted vocabulary to the trie builder. Tokenization runs in parallel
// over a worker pool; term-id assignment, per-line sorting and every
// TermBuffer mutation stay single-threaded, matching the
// single-threaded core the trie builder and TermBuffer require.
package indexer

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"nutrie/internal/bktree"
	"nutrie/internal/frequency"
	"nutrie/internal/termbuf"
	"nutrie/internal/trie"
	"nutrie/internal/types"
	"nutrie/internal/workers"
)

const (
	metaSize = 48
	// metaLogInterval is how often Build logs a line-rate sample.
	metaLogInterval = 2 * time.Second
)

// Stats summarizes a completed build, returned to the caller for
// logging or display.
type Stats struct {
	Documents int
	Terms     int
	DictSize  uint64
	RootPtr   uint64
	BuildTime time.Duration
}

// tokenPos is one (term text, position) occurrence parsed from a line,
// before term-id assignment.
type tokenPos struct {
	text string
	pos  types.Position
}

// lineJob is what the worker pool tokenizes: a raw input line and the
// doc-id it was assigned.
type lineJob struct {
	docID types.DocId
	line  string
}

// lineResult is a tokenized line: every (text, position) pair found,
// in input order. Term-id assignment and sorting by term-id happen
// single-threaded in the consumer, since the vocabulary/interner is
// shared state.
type lineResult struct {
	docID  types.DocId
	line   string
	tokens []tokenPos
}

func tokenizeLine(_ context.Context, job lineJob) (lineResult, error) {
	parts := strings.Split(job.line, "|")
	tokens := make([]tokenPos, 0, len(parts))
	pos := types.Position(0)
	for _, p := range parts {
		if p == "" {
			continue
		}
		tokens = append(tokens, tokenPos{text: p, pos: pos})
		pos++
	}
	return lineResult{docID: job.docID, line: job.line, tokens: tokens}, nil
}

// hasNonEmptyToken reports whether line contains at least one
// non-empty '|'-delimited field, without allocating a tokens slice —
// scanLines uses this to decide whether a line consumes a doc-id,
// since a doc-id must not be burned on a line like "|" or "||" that
// carries no indexable content.
func hasNonEmptyToken(line string) bool {
	for _, p := range strings.Split(line, "|") {
		if p != "" {
			return true
		}
	}
	return false
}

// DocStore receives each document's raw line as it is indexed. It is
// optional: Build works the same with or without one.
type DocStore interface {
	Put(id types.DocId, text string)
}

// interner assigns TermIds to term text in first-seen order. It is
// touched only by the single-threaded consumer goroutine, never by
// workers.
type interner struct {
	ids   map[string]types.TermId
	terms []types.Term
	next  types.TermId
}

func newInterner() *interner {
	return &interner{ids: make(map[string]types.TermId), next: 1}
}

func (in *interner) intern(text string) types.TermId {
	if id, ok := in.ids[text]; ok {
		return id
	}
	id := in.next
	in.next++
	in.ids[text] = id
	in.terms = append(in.terms, types.Term{Text: text, TermId: id})
	return id
}

// Build scans inputPath line by line, tokenizes in parallel over
// numWorkers goroutines, assigns term-ids and appends to a PostingsStore
// single-threaded, then flushes the sorted vocabulary through the trie
// builder into outputDir's five index files.
func Build(ctx context.Context, log *slog.Logger, inputPath, outputDir string, numWorkers int, docs DocStore) (Stats, error) {
	const op = "indexer.Build"
	start := time.Now()

	if numWorkers < 1 {
		numWorkers = 1
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	defer f.Close()

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return Stats{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("indexer: build starting", "input", inputPath, "output", outputDir, "workers", numWorkers)

	pool := workers.New[lineResult](numWorkers)
	poolCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go pool.Run(poolCtx)

	store := termbuf.NewPostingsStore()
	in := newInterner()

	var docCount int
	freq := &frequency.Frequency{Interval: metaLogInterval, LastTime: time.Now()}

	scanErrCh := make(chan error, 1)
	go func() {
		defer pool.Close()
		scanErrCh <- scanLines(f, &docCount, pool)
	}()

	for res := range pool.Results() {
		if res.Err != nil {
			freq.RecordFailure(res.Duration)
			return Stats{}, fmt.Errorf("%s: %w", op, res.Err)
		}
		if err := applyLine(in, store, res.Value); err != nil {
			freq.RecordFailure(res.Duration)
			return Stats{}, fmt.Errorf("%s: %w", op, err)
		}
		if docs != nil {
			docs.Put(res.Value.docID, res.Value.line)
		}
		freq.RecordSuccess(res.Duration)
		freq.Add(1)
		freq.Check(log)
	}

	if err := <-scanErrCh; err != nil {
		return Stats{}, fmt.Errorf("%s: %w", op, err)
	}

	freq.Summary(log)

	sort.Slice(in.terms, func(i, j int) bool { return in.terms[i].Text < in.terms[j].Text })

	dictPath := filepath.Join(outputDir, "dict")
	docsPath := filepath.Join(outputDir, "docs")
	tfsPath := filepath.Join(outputDir, "tfs")
	posPath := filepath.Join(outputDir, "positions")
	metaPath := filepath.Join(outputDir, "meta")

	dictFile, err := os.Create(dictPath)
	if err != nil {
		return Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	defer dictFile.Close()
	docsFile, err := os.Create(docsPath)
	if err != nil {
		return Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	defer docsFile.Close()
	tfsFile, err := os.Create(tfsPath)
	if err != nil {
		return Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	defer tfsFile.Close()
	posFile, err := os.Create(posPath)
	if err != nil {
		return Stats{}, fmt.Errorf("%s: %w", op, err)
	}
	defer posFile.Close()

	dictWriter := bufio.NewWriter(dictFile)
	docsWriter := bufio.NewWriter(docsFile)
	tfsWriter := bufio.NewWriter(tfsFile)
	posWriter := bufio.NewWriter(posFile)

	res, err := trie.Build(types.TermId(len(in.terms)+1), in.terms, store, dictWriter, trie.Encoders{
		Docs:      docsWriter,
		Tfs:       tfsWriter,
		Positions: posWriter,
	})
	if err != nil {
		return Stats{}, fmt.Errorf("%s: %w", op, err)
	}

	for _, w := range []*bufio.Writer{dictWriter, docsWriter, tfsWriter, posWriter} {
		if err := w.Flush(); err != nil {
			return Stats{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := writeMeta(metaPath, res); err != nil {
		return Stats{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := writeBKTree(filepath.Join(outputDir, "bk"), in.terms); err != nil {
		return Stats{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("indexer: build finished",
		"documents", docCount,
		"terms", len(in.terms),
		"dict_size", res.DictSize,
		"elapsed", time.Since(start),
	)

	return Stats{
		Documents: docCount,
		Terms:     len(in.terms),
		DictSize:  res.DictSize,
		RootPtr:   res.RootPtr,
		BuildTime: time.Since(start),
	}, nil
}

// scanLines reads inputPath, assigns doc-ids to lines carrying at least
// one non-empty token, and enqueues one lineJob per document onto pool.
// A line that is empty, or tokenizes to zero non-empty tokens (e.g.
// "|" or "||"), is skipped without consuming a doc-id.
func scanLines(r io.Reader, docCount *int, pool *workers.WorkerPool[lineResult]) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var nextDocID types.DocId = 1
	for scanner.Scan() {
		line := scanner.Text()
		if !hasNonEmptyToken(line) {
			continue
		}

		docID := nextDocID
		nextDocID++
		*docCount++

		job := workers.Job[lineResult]{
			Description: workers.JobDescriptor{ID: workers.JobID(fmt.Sprintf("line-%d", docID))},
			ExecFn: func(ctx context.Context, _ lineResult) (lineResult, error) {
				return tokenizeLine(ctx, lineJob{docID: docID, line: line})
			},
		}
		pool.AddJob(job)
	}
	return scanner.Err()
}

// applyLine assigns term-ids to every token in res (single-threaded),
// sorts the resulting (term_id, position) pairs, groups consecutive
// runs of the same term-id, and appends one docs/tfs/positions entry
// per run into store. A per-document checksum confirms every position
// was consumed exactly once.
func applyLine(in *interner, store *termbuf.PostingsStore, res lineResult) error {
	type idPos struct {
		id  types.TermId
		pos types.Position
	}

	pairs := make([]idPos, len(res.tokens))
	for i, t := range res.tokens {
		pairs[i] = idPos{id: in.intern(t.text), pos: t.pos}
	}

	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].id != pairs[j].id {
			return pairs[i].id < pairs[j].id
		}
		return pairs[i].pos < pairs[j].pos
	})

	consumed := 0
	i := 0
	for i < len(pairs) {
		j := i
		termID := pairs[i].id
		cum := uint64(store.Positions.Len(termID))

		store.Docs.Add(termID, uint64(res.docID))
		store.Tfs.Add(termID, cum)

		for j < len(pairs) && pairs[j].id == termID {
			store.Positions.Add(termID, uint64(pairs[j].pos))
			j++
			consumed++
		}
		i = j
	}

	if consumed != len(pairs) {
		return fmt.Errorf("indexer: doc %d checksum mismatch: consumed %d of %d positions", res.docID, consumed, len(pairs))
	}
	return nil
}

// writeMeta writes the fixed 48-byte little-endian meta record:
// dict_size, root_ptr, term_buffer_size, then three reserved zero
// fields readers must not rely on.
func writeMeta(path string, res trie.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	buf := make([]byte, metaSize)
	putU64(buf[0:8], res.DictSize)
	putU64(buf[8:16], res.RootPtr)
	putU64(buf[16:24], res.TermBufferSize)

	_, err = f.Write(buf)
	return err
}

func putU64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * uint(i)))
	}
}

// writeBKTree writes the sixth, optional on-disk file: the vocabulary in
// sorted order, from which search -fuzzy rebuilds a BK-tree at open
// time.
func writeBKTree(path string, terms []types.Term) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := bktree.Write(w, terms); err != nil {
		return err
	}
	return w.Flush()
}
