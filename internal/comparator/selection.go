package comparator

import "errors"

var (
	// ErrLastBank is the warning signal returned when removing the only
	// selected bank. The selection is left unchanged.
	ErrLastBank = errors.New("LAST_BANK_SELECTED")
	// ErrUnknownBank is returned for a bank id missing from the catalog.
	ErrUnknownBank = errors.New("UNKNOWN_BANK")
)

// DefaultBanks is the priority list: the first known entry is the single
// default bank, and all known entries form the initial selection.
var DefaultBanks = []string{"bgfi", "ugb", "bicig"}

// Selection is the set of banks a comparison is restricted to. Once the
// catalog is known it is never empty.
type Selection struct {
	known    []string
	selected map[string]struct{}
}

// NewSelection creates a selection over the known bank ids, in catalog
// order, starting from the default trio.
func NewSelection(known []string) *Selection {
	s := &Selection{selected: map[string]struct{}{}}
	s.SetKnown(known)
	return s
}

// SetKnown replaces the catalog. Selected banks that disappeared are
// dropped; an emptied selection falls back to the defaults.
func (s *Selection) SetKnown(known []string) {
	s.known = dedupe(known)
	for id := range s.selected {
		if !s.isKnown(id) {
			delete(s.selected, id)
		}
	}
	if len(s.selected) == 0 {
		s.Reset()
	}
}

// Known returns the catalog ids.
func (s *Selection) Known() []string {
	return append([]string(nil), s.known...)
}

// Toggle adds id, or removes it unless it is the last selected bank.
func (s *Selection) Toggle(id string) error {
	if !s.isKnown(id) {
		return ErrUnknownBank
	}
	if _, ok := s.selected[id]; ok {
		if len(s.selected) == 1 {
			return ErrLastBank
		}
		delete(s.selected, id)
		return nil
	}
	s.selected[id] = struct{}{}
	return nil
}

// SelectAll selects every known bank.
func (s *Selection) SelectAll() {
	for _, id := range s.known {
		s.selected[id] = struct{}{}
	}
}

// Clear resets to the single default bank.
func (s *Selection) Clear() {
	s.selected = map[string]struct{}{}
	if id := s.defaultBank(); id != "" {
		s.selected[id] = struct{}{}
	}
}

// ToggleAll selects all banks, or, when all are already selected, goes back
// to the single default bank.
func (s *Selection) ToggleAll() {
	if s.AllSelected() {
		s.Clear()
		return
	}
	s.SelectAll()
}

// Reset restores the known members of DefaultBanks, or the single default
// bank when none of them is known.
func (s *Selection) Reset() {
	s.selected = map[string]struct{}{}
	for _, id := range DefaultBanks {
		if s.isKnown(id) {
			s.selected[id] = struct{}{}
		}
	}
	if len(s.selected) == 0 {
		s.Clear()
	}
}

// Contains reports whether id is selected.
func (s *Selection) Contains(id string) bool {
	_, ok := s.selected[id]
	return ok
}

// IDs returns the selected ids in catalog order.
func (s *Selection) IDs() []string {
	out := make([]string, 0, len(s.selected))
	for _, id := range s.known {
		if _, ok := s.selected[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// Len returns the number of selected banks.
func (s *Selection) Len() int { return len(s.selected) }

// AllSelected reports whether every known bank is selected.
func (s *Selection) AllSelected() bool {
	return len(s.known) > 0 && len(s.selected) == len(s.known)
}

// Set returns a lookup copy of the selection.
func (s *Selection) Set() map[string]struct{} {
	out := make(map[string]struct{}, len(s.selected))
	for id := range s.selected {
		out[id] = struct{}{}
	}
	return out
}

func (s *Selection) defaultBank() string {
	for _, id := range DefaultBanks {
		if s.isKnown(id) {
			return id
		}
	}
	if len(s.known) > 0 {
		return s.known[0]
	}
	return ""
}

func (s *Selection) isKnown(id string) bool {
	for _, k := range s.known {
		if k == id {
			return true
		}
	}
	return false
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
