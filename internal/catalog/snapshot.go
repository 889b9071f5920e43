package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"salvo-backend/internal/model"
)

// ErrMalformed is returned when a catalog document cannot be parsed.
var ErrMalformed = errors.New("catalog: malformed document")

// Source supplies the business catalog as a point-in-time snapshot.
// A missing backing store is an empty catalog, not an error.
type Source interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// Entry is one undecoded record. Decoding is deferred so a single bad
// record cannot fail the whole snapshot.
type Entry struct {
	Index int
	Raw   json.RawMessage
}

// Decode parses the entry into a BusinessRecord.
func (e Entry) Decode() (model.BusinessRecord, error) {
	var rec model.BusinessRecord
	if err := json.Unmarshal(e.Raw, &rec); err != nil {
		return model.BusinessRecord{}, fmt.Errorf("record %d: %w", e.Index, err)
	}
	return rec, nil
}

// Snapshot is an ordered, read-only view of the catalog.
type Snapshot struct {
	entries []Entry
}

// document is the on-disk / in-Redis layout: {"sellers": [...]}.
type document struct {
	Sellers []json.RawMessage `json:"sellers"`
}

// Parse builds a Snapshot from a catalog document. Only the envelope is
// validated here; records are checked one by one by the reader.
func Parse(data []byte) (*Snapshot, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	s := &Snapshot{entries: make([]Entry, 0, len(doc.Sellers))}
	for i, raw := range doc.Sellers {
		s.entries = append(s.entries, Entry{Index: i, Raw: raw})
	}
	return s, nil
}

// Empty returns a snapshot with no records.
func Empty() *Snapshot {
	return &Snapshot{}
}

// FromRecords builds a snapshot from already decoded records. Handy for
// seeding Redis and for tests.
func FromRecords(recs ...model.BusinessRecord) (*Snapshot, error) {
	s := &Snapshot{entries: make([]Entry, 0, len(recs))}
	for i, r := range recs {
		raw, err := json.Marshal(r)
		if err != nil {
			return nil, err
		}
		s.entries = append(s.entries, Entry{Index: i, Raw: raw})
	}
	return s, nil
}

// Entries returns the records in catalog order.
func (s *Snapshot) Entries() []Entry {
	if s == nil {
		return nil
	}
	return s.entries
}

// Len is the number of records, searchable or not.
func (s *Snapshot) Len() int {
	return len(s.Entries())
}

// Marshal renders the snapshot back into the catalog document layout.
func (s *Snapshot) Marshal() ([]byte, error) {
	doc := document{Sellers: make([]json.RawMessage, 0, s.Len())}
	for _, e := range s.Entries() {
		doc.Sellers = append(doc.Sellers, e.Raw)
	}
	return json.MarshalIndent(doc, "", "  ")
}

// with returns a copy of s with rec appended.
func (s *Snapshot) with(rec model.BusinessRecord) (*Snapshot, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, s.Len()+1)
	entries = append(entries, s.Entries()...)
	entries = append(entries, Entry{Index: len(entries), Raw: raw})
	return &Snapshot{entries: entries}, nil
}
