// Package leveldb adapts the teacher's batched leveldb storage into a
// document-text side-car: the columnar index keeps no document bodies,
// only term statistics, so a real indexer CLI needs somewhere to put the
// raw line a search result can show as a snippet. Documents are written
// in a sibling directory next to the five index files, keyed by the
// DocId assigned during indexing, and are entirely optional.
package leveldb

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/syndtr/goleveldb/leveldb"

	"nutrie/internal/sl"
	"nutrie/internal/types"

	"log/slog"
)

// ErrNotFound is returned by Get when no document is stored for a DocId.
var ErrNotFound = errors.New("docstore: document not found")

const (
	bufferSize   = 1000
	flushTimeout = 2 * time.Second
)

// Store batches document-text writes behind a channel, flushed either
// when the batch fills or flushTimeout elapses, mirroring the teacher's
// writeWorker discipline.
type Store struct {
	log       *slog.Logger
	db        *leveldb.DB
	writeChan chan docWrite
	wg        sync.WaitGroup
}

type docWrite struct {
	id   types.DocId
	text string
}

// Open creates or opens the leveldb directory at path and starts the
// batched write worker.
func Open(log *slog.Logger, path string) (*Store, error) {
	const op = "docstore.leveldb.Open"

	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s := &Store{
		log:       log,
		db:        db,
		writeChan: make(chan docWrite, bufferSize*2),
	}

	s.wg.Add(1)
	go s.writeWorker()

	return s, nil
}

func docKey(id types.DocId) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], id)
	return append([]byte("doc:"), buf[:]...)
}

func (s *Store) writeWorker() {
	defer s.wg.Done()

	batch := new(leveldb.Batch)
	ticker := time.NewTicker(flushTimeout)
	defer ticker.Stop()

	flush := func() {
		if batch.Len() == 0 {
			return
		}
		if err := s.db.Write(batch, nil); err != nil {
			s.log.Error("docstore: failed to write batch", "error", sl.Err(err))
		}
		batch = new(leveldb.Batch)
	}

	for {
		select {
		case w, ok := <-s.writeChan:
			if !ok {
				flush()
				return
			}
			batch.Put(docKey(w.id), []byte(w.text))
			if batch.Len() >= bufferSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// Put enqueues a document for batched write. It blocks if the write
// channel is full, applying backpressure to the indexing driver.
func (s *Store) Put(id types.DocId, text string) {
	s.writeChan <- docWrite{id: id, text: text}
}

// Get returns the stored text for id, or ErrNotFound.
func (s *Store) Get(id types.DocId) (string, error) {
	data, err := s.db.Get(docKey(id), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(data), nil
}

// Close drains the write channel, waits for the worker to flush, and
// closes the underlying database.
func (s *Store) Close() error {
	close(s.writeChan)
	s.wg.Wait()
	return s.db.Close()
}
