package services

import (
	"strings"
	"sync"
	"time"

	"vendorguard/internal/domain/models"
)

// WindowEntry is the slice of a past submission the network analyzer needs
type WindowEntry struct {
	ID          string
	VendorName  string
	Email       string
	Description string
	TaxID       string
	SourceIP    string
	SubmittedAt time.Time
}

// Domain returns the lowercased email domain of the entry
func (e WindowEntry) Domain() string {
	at := strings.LastIndex(e.Email, "@")
	if at < 0 || at == len(e.Email)-1 {
		return ""
	}
	return strings.ToLower(e.Email[at+1:])
}

// WindowSource provides the recent-submission window to the network analyzer
type WindowSource interface {
	Recent(now time.Time) []WindowEntry
}

// WindowStore keeps submissions from the trailing retention period, keyed
// for the network analyzer's clustering checks. Append-only within the
// window; entries age out on read. Reads may be slightly stale under
// concurrent appends, which is acceptable for this analysis.
type WindowStore struct {
	mu        sync.RWMutex
	entries   []WindowEntry
	retention time.Duration
}

// NewWindowStore creates a store with the given retention period
func NewWindowStore(retention time.Duration) *WindowStore {
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &WindowStore{retention: retention}
}

// Add appends a submission to the window
func (s *WindowStore) Add(sub *models.Submission) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, WindowEntry{
		ID:          sub.ID,
		VendorName:  sub.VendorName,
		Email:       sub.ContactEmail,
		Description: sub.BusinessDescription,
		TaxID:       sub.TaxID,
		SourceIP:    sub.SourceIP,
		SubmittedAt: sub.SubmittedAt,
	})
}

// Seed bulk-loads historical entries
func (s *WindowStore) Seed(entries []WindowEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entries...)
}

// Recent returns entries still inside the retention window and evicts the rest
func (s *WindowStore) Recent(now time.Time) []WindowEntry {
	cutoff := now.Add(-s.retention)

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	for _, e := range s.entries {
		if e.SubmittedAt.After(cutoff) {
			kept = append(kept, e)
		}
	}
	s.entries = kept

	out := make([]WindowEntry, len(kept))
	copy(out, kept)
	return out
}
