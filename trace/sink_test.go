// Copyright 2017 karma.run AG. All rights reserved.
// Use of this source code is governed by an AGPL license that can be found in the LICENSE file.
package trace

import (
	"path/filepath"
	"testing"
)

func TestRecordAndAll(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "trace.db"), 10)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Record(1001, Outbound, []byte("request")); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := s.Record(1001, Inbound, []byte("response")); err != nil {
		t.Fatalf("Record: %v", err)
	}

	entries, err := s.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2", len(entries))
	}
	if string(entries[0].Payload) != "request" || entries[0].Direction != Outbound {
		t.Fatalf("entries[0] = %+v", entries[0])
	}
	if string(entries[1].Payload) != "response" || entries[1].Direction != Inbound {
		t.Fatalf("entries[1] = %+v", entries[1])
	}
}

func TestRingBufferEviction(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "trace.db"), 3)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	for i := 0; i < 5; i++ {
		if err := s.Record(uint32(i), Outbound, []byte{byte(i)}); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	entries, err := s.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3", len(entries))
	}
	if entries[0].CompilationID != 2 {
		t.Fatalf("oldest surviving entry has CompilationID %d, want 2", entries[0].CompilationID)
	}
}
