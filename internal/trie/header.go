package trie

import (
	"encoding/binary"

	"nutrie/internal/types"
)

// headerAlign is the alignment boundary a node's child tables are
// padded to before the next header begins.
const headerAlign = 8

// HeaderSize is the fixed byte size of a marshaled TrieNodeHeader.
const HeaderSize = 40

// TrieNodeHeader is the fixed-size, packed, little-endian record
// written once per flushed trie node.
//
// NumPostings/PostingsPtr describe the node's own word postings (zero
// when !IsWord). When NumChildren > 0, an additional
// NumPrefixPostings-sized window starting at PostingsPtr+NumPostings
// holds the duplicate-free merge of every child's effective postings —
// see SPEC_FULL.md §4.5 for why this is a second window rather than an
// overwrite of NumPostings/PostingsPtr.
type TrieNodeHeader struct {
	NumPostings       uint64
	PostingsPtr       uint64
	TermPtr           uint32
	TermID            types.TermId
	NumChildren       uint32
	TermLength        uint16
	NumPrefixPostings uint32
	IsWord            bool
}

// Marshal packs h into HeaderSize bytes, little-endian, with trailing
// zero padding out to the natural 8-byte alignment boundary.
func (h *TrieNodeHeader) Marshal() []byte {
	buf := make([]byte, HeaderSize)
	binary.LittleEndian.PutUint64(buf[0:8], h.NumPostings)
	binary.LittleEndian.PutUint64(buf[8:16], h.PostingsPtr)
	binary.LittleEndian.PutUint32(buf[16:20], h.TermPtr)
	binary.LittleEndian.PutUint32(buf[20:24], h.TermID)
	binary.LittleEndian.PutUint32(buf[24:28], h.NumChildren)
	binary.LittleEndian.PutUint16(buf[28:30], h.TermLength)
	binary.LittleEndian.PutUint32(buf[30:34], h.NumPrefixPostings)
	if h.IsWord {
		buf[34] = 1
	}
	return buf
}

// UnmarshalHeader reads a TrieNodeHeader from the first HeaderSize
// bytes of buf.
func UnmarshalHeader(buf []byte) TrieNodeHeader {
	return TrieNodeHeader{
		NumPostings:       binary.LittleEndian.Uint64(buf[0:8]),
		PostingsPtr:       binary.LittleEndian.Uint64(buf[8:16]),
		TermPtr:           binary.LittleEndian.Uint32(buf[16:20]),
		TermID:            binary.LittleEndian.Uint32(buf[20:24]),
		NumChildren:       binary.LittleEndian.Uint32(buf[24:28]),
		TermLength:        binary.LittleEndian.Uint16(buf[28:30]),
		NumPrefixPostings: binary.LittleEndian.Uint32(buf[30:34]),
		IsWord:            buf[34] != 0,
	}
}

// alignPadding reports how many zero bytes must follow pos to reach
// the next multiple of align.
func alignPadding(pos int64, align int64) int64 {
	rem := pos % align
	if rem == 0 {
		return 0
	}
	return align - rem
}
