// Package binbuf implements the assembler's flat 64 KiB output arena:
// append-only allocation with a single "last allocation" that Realloc
// can grow in place, an origin marker, and a FIFO of queued file writes
// drained at the end of assembly. Grounded on spec.md §4.9 and the
// original BinaryBuffer.c.
package binbuf

import (
	"bytes"
	"encoding/binary"

	"github.com/adamgreen/snapncrackle/internal/errs"
)

// Size is the fixed arena size shared by the object and dummy buffers.
const Size = 64 * 1024

// SAVSignature is the 4-byte header signature for a plain SAV file.
var SAVSignature = [4]byte{'S', 'A', 'V', 0x1A}

// RW18SAVSignature is the 4-byte header signature for an RW18 SAV file,
// distinguishing it from a plain SAV header on read. The original's
// defining constant wasn't available to cross-check; this is this
// repository's own choice, recorded in DESIGN.md.
var RW18SAVSignature = [4]byte{'R', 'W', '1', 0x1A}

// QueuedWrite snapshots one pending file emission.
type QueuedWrite struct {
	Filename string
	Base     int
	Length   int
	Origin   uint16
	RW18     bool
	Side     uint16
	Track    uint16
	Offset   uint16
}

// Buffer is a single 64 KiB append-only arena.
type Buffer struct {
	data        []byte
	current     int
	base        int
	lastAlloc   int
	lastAllocOK bool
	origin      uint16
	queue       []QueuedWrite
}

// New returns an empty Buffer.
func New() *Buffer {
	return &Buffer{data: make([]byte, Size)}
}

// Alloc bumps the cursor by n bytes and returns a slice over them.
func (b *Buffer) Alloc(n int) ([]byte, error) {
	if b.current+n > len(b.data) {
		return nil, errs.Errorf(errs.BufferOverrun, Size)
	}
	start := b.current
	b.current += n
	b.lastAlloc = start
	b.lastAllocOK = true
	return b.data[start:b.current], nil
}

// Realloc grows the most recent allocation to n bytes; it is only valid
// when called immediately after the Alloc (or Realloc) it is growing.
func (b *Buffer) Realloc(prev []byte, n int) ([]byte, error) {
	if prev == nil {
		return b.Alloc(n)
	}
	if !b.lastAllocOK || &b.data[b.lastAlloc] != &prev[0] {
		return nil, errs.Errorf(errs.InvalidArgument, "realloc of non-last allocation")
	}
	b.current = b.lastAlloc
	return b.Alloc(n)
}

// SetOrigin snapshots the current cursor as the base of the next queued
// write and records the logical load address for that segment.
func (b *Buffer) SetOrigin(origin uint16) {
	b.origin = origin
	b.base = b.current
}

// Origin returns the current logical load address.
func (b *Buffer) Origin() uint16 { return b.origin }

// Bytes returns the full backing array (for tests and readback).
func (b *Buffer) Bytes() []byte { return b.data }

// QueueWriteToFile appends a plain-SAV queued write capturing the bytes
// written since the last SetOrigin.
func (b *Buffer) QueueWriteToFile(filename string) {
	b.queue = append(b.queue, QueuedWrite{
		Filename: filename,
		Base:     b.base,
		Length:   b.current - b.base,
		Origin:   b.origin,
	})
}

// QueueRW18WriteToFile appends an RW18-SAV queued write.
func (b *Buffer) QueueRW18WriteToFile(filename string, side, track, offset uint16) {
	b.queue = append(b.queue, QueuedWrite{
		Filename: filename,
		Base:     b.base,
		Length:   b.current - b.base,
		RW18:     true,
		Side:     side,
		Track:    track,
		Offset:   offset,
	})
}

// Queue returns the pending writes in FIFO order.
func (b *Buffer) Queue() []QueuedWrite { return b.queue }

// Encode renders a queued write as header+payload bytes, ready to
// write to disk.
func (b *Buffer) Encode(q QueuedWrite) []byte {
	var out bytes.Buffer
	if q.RW18 {
		out.Write(RW18SAVSignature[:])
		binary.Write(&out, binary.LittleEndian, q.Side)
		binary.Write(&out, binary.LittleEndian, q.Track)
		binary.Write(&out, binary.LittleEndian, q.Offset)
		binary.Write(&out, binary.LittleEndian, uint16(q.Length))
	} else {
		out.Write(SAVSignature[:])
		binary.Write(&out, binary.LittleEndian, q.Origin)
		binary.Write(&out, binary.LittleEndian, uint16(q.Length))
	}
	out.Write(b.data[q.Base : q.Base+q.Length])
	return out.Bytes()
}
