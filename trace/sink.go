// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
//
// Package trace implements the debug_sink hook named in spec.md §6: a
// bounded on-disk ring buffer of raw protocol frames (request and
// response, with timestamps and the owning compilation id) so a
// Supervisor that has gone Broken can be inspected post-mortem without
// re-running the failing compile.
//
// Modeled on the teacher's db.Open (db/db.go): a single *bbolt.DB opened
// once and guarded by a mutex, except a Sink is owned by one Supervisor
// rather than shared process-wide — nothing in the core state machine
// depends on a Sink being present (SPEC_FULL.md §3).
package trace

import (
	"encoding/binary"
	"fmt"
	"sync"
	"time"

	bolt "github.com/coreos/bbolt"
)

var framesBucket = []byte("frames")

// Direction tags which way a recorded frame travelled.
type Direction byte

const (
	Outbound Direction = iota
	Inbound
)

func (d Direction) String() string {
	if d == Outbound {
		return "out"
	}
	return "in"
}

// Entry is one recorded frame.
type Entry struct {
	Seq           uint64
	At            time.Time
	CompilationID uint32
	Direction     Direction
	Payload       []byte
}

// Sink is a bounded ring buffer of frames backed by a bbolt file. Safe
// for concurrent use, though in practice only ever driven by the
// Supervisor that owns it.
type Sink struct {
	db  *bolt.DB
	max int

	mu  sync.Mutex
	seq uint64
}

// Open opens (creating if necessary) a Sink at path retaining at most
// maxEntries frames; once full, the oldest frame is evicted on every new
// write.
func Open(path string, maxEntries int) (*Sink, error) {
	if maxEntries <= 0 {
		maxEntries = 512
	}
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 3 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("trace: open %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(framesBucket)
		return err
	}); err != nil {
		db.Close()
		return nil, fmt.Errorf("trace: init %s: %w", path, err)
	}
	s := &Sink{db: db, max: maxEntries}
	s.seq = s.lastSeq()
	return s, nil
}

func (s *Sink) lastSeq() uint64 {
	var last uint64
	s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(framesBucket).Cursor()
		if k, _ := c.Last(); k != nil {
			last = binary.BigEndian.Uint64(k)
		}
		return nil
	})
	return last
}

// Record appends one frame, evicting the oldest frame if the buffer is
// now over capacity.
func (s *Sink) Record(compilationID uint32, dir Direction, payload []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++

	e := Entry{Seq: s.seq, At: time.Now(), CompilationID: compilationID, Direction: dir, Payload: payload}
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, e.Seq)

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(framesBucket)
		if err := b.Put(key, encodeEntry(e)); err != nil {
			return err
		}
		return evictOverflow(b, s.max)
	})
}

func evictOverflow(b *bolt.Bucket, max int) error {
	// Count with a cursor: Bucket.Stats reads committed pages only and
	// would miss the frame Put in this same transaction.
	c := b.Cursor()
	count := 0
	for k, _ := c.First(); k != nil; k, _ = c.Next() {
		count++
	}
	for n := count - max; n > 0; n-- {
		k, _ := c.First()
		if k == nil {
			break
		}
		if err := c.Delete(); err != nil {
			return err
		}
	}
	return nil
}

// All returns every retained frame, oldest first.
func (s *Sink) All() ([]Entry, error) {
	var out []Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(framesBucket).ForEach(func(k, v []byte) error {
			e, err := decodeEntry(v)
			if err != nil {
				return err
			}
			out = append(out, e)
			return nil
		})
	})
	return out, err
}

// Close releases the underlying bbolt file.
func (s *Sink) Close() error { return s.db.Close() }

func encodeEntry(e Entry) []byte {
	buf := make([]byte, 0, 21+len(e.Payload))
	var seq, at, cid, plen [8]byte
	binary.BigEndian.PutUint64(seq[:], e.Seq)
	binary.BigEndian.PutUint64(at[:], uint64(e.At.UnixNano()))
	binary.BigEndian.PutUint32(cid[:4], e.CompilationID)
	binary.BigEndian.PutUint32(plen[:4], uint32(len(e.Payload)))
	buf = append(buf, seq[:]...)
	buf = append(buf, at[:]...)
	buf = append(buf, cid[:4]...)
	buf = append(buf, byte(e.Direction))
	buf = append(buf, plen[:4]...)
	buf = append(buf, e.Payload...)
	return buf
}

func decodeEntry(data []byte) (Entry, error) {
	if len(data) < 25 {
		return Entry{}, fmt.Errorf("trace: truncated entry (%d bytes)", len(data))
	}
	e := Entry{
		Seq:           binary.BigEndian.Uint64(data[0:8]),
		At:            time.Unix(0, int64(binary.BigEndian.Uint64(data[8:16]))),
		CompilationID: binary.BigEndian.Uint32(data[16:20]),
		Direction:     Direction(data[20]),
	}
	n := binary.BigEndian.Uint32(data[21:25])
	if len(data) < 25+int(n) {
		return Entry{}, fmt.Errorf("trace: truncated payload (want %d, have %d)", n, len(data)-25)
	}
	e.Payload = append([]byte(nil), data[25:25+n]...)
	return e, nil
}
