package trie

import (
	"encoding/binary"
	"io"

	"nutrie/internal/seq"
)

// columnWriter drains a Sequence into a flat little-endian uint64
// stream — the on-disk counterpart of seq.Sequence.
type columnWriter struct {
	w     io.Writer
	count uint64
}

func newColumnWriter(w io.Writer) *columnWriter {
	return &columnWriter{w: w}
}

func (c *columnWriter) writeSequence(s seq.Sequence) error {
	var buf [8]byte
	for {
		v, ok := s.Next()
		if !ok {
			return nil
		}
		binary.LittleEndian.PutUint64(buf[:], v)
		if _, err := c.w.Write(buf[:]); err != nil {
			return err
		}
		c.count++
	}
}
