package subscription

import (
	"sort"

	"github.com/Veraticus/spice-insights/internal/model"
)

// Session carries the vendors a user has confirmed or dismissed during one
// review. It lives only as long as its owner (a CLI run, a TUI model, a
// single HTTP request) and is never written to storage.
type Session struct {
	dismissed map[string]struct{}
	confirmed map[string]struct{}
}

// NewSession creates a session with the given vendors already dismissed.
func NewSession(dismissed ...string) *Session {
	s := &Session{
		dismissed: make(map[string]struct{}),
		confirmed: make(map[string]struct{}),
	}
	for _, v := range dismissed {
		s.Dismiss(v)
	}
	return s
}

// Dismiss marks a vendor as not being a subscription. It is a no-op on a
// nil session.
func (s *Session) Dismiss(vendor string) {
	if s == nil {
		return
	}
	if s.dismissed == nil {
		s.dismissed = make(map[string]struct{})
	}
	if key := model.NormalizeVendor(vendor); key != "" {
		s.dismissed[key] = struct{}{}
	}
}

// Confirm marks a vendor as promoted to a real subscription. It is a no-op
// on a nil session.
func (s *Session) Confirm(vendor string) {
	if s == nil {
		return
	}
	if s.confirmed == nil {
		s.confirmed = make(map[string]struct{})
	}
	if key := model.NormalizeVendor(vendor); key != "" {
		s.confirmed[key] = struct{}{}
	}
}

// Excluded reports whether the vendor should be skipped by detection.
// A nil session excludes nothing.
func (s *Session) Excluded(vendor string) bool {
	if s == nil {
		return false
	}
	key := model.NormalizeVendor(vendor)
	if _, ok := s.dismissed[key]; ok {
		return true
	}
	_, ok := s.confirmed[key]
	return ok
}

// Dismissed returns the dismissed vendor keys in sorted order.
func (s *Session) Dismissed() []string {
	if s == nil {
		return nil
	}
	return sortedKeys(s.dismissed)
}

// Confirmed returns the confirmed vendor keys in sorted order.
func (s *Session) Confirmed() []string {
	if s == nil {
		return nil
	}
	return sortedKeys(s.confirmed)
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Keys returns every excluded vendor key, dismissed or confirmed, sorted.
func (s *Session) Keys() []string {
	if s == nil {
		return nil
	}
	all := make(map[string]struct{}, len(s.dismissed)+len(s.confirmed))
	for k := range s.dismissed {
		all[k] = struct{}{}
	}
	for k := range s.confirmed {
		all[k] = struct{}{}
	}
	return sortedKeys(all)
}
