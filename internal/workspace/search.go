package workspace

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

func (s *State) StartSearch() {
	s.mode = ModeSearch
}

// EndSearch leaves the search bar. The query stays applied.
func (s *State) EndSearch() {
	if s.mode == ModeSearch {
		s.mode = ModeNormal
	}
}

// SetQuery replaces the query and marks the view stale. The view is only
// recomputed by FlushSearch.
func (s *State) SetQuery(q string) {
	if q == s.query {
		return
	}
	s.query = q
	s.searchDirty = true
}

func (s *State) AppendQuery(r rune) {
	s.SetQuery(s.query + string(r))
}

func (s *State) BackspaceQuery() {
	if s.query == "" {
		return
	}
	_, size := utf8.DecodeLastRuneInString(s.query)
	s.SetQuery(s.query[:len(s.query)-size])
}

func (s *State) SearchDirty() bool { return s.searchDirty }

// FlushSearch recomputes the filtered view once the caller has no more input
// queued. pending may be nil. It reports whether the view was recomputed.
func (s *State) FlushSearch(pending func() bool) bool {
	if !s.searchDirty {
		return false
	}
	if pending != nil && pending() {
		return false
	}
	s.ApplySearch()
	return true
}

// ApplySearch recomputes the filtered view immediately.
func (s *State) ApplySearch() {
	s.filter()
	s.previewScroll = 0
	if strings.TrimSpace(s.query) == "" {
		s.clampCursor()
		s.projectScroll, s.sessionScroll = 0, 0
		return
	}
	s.projectIdx, s.sessionIdx = 0, 0
	s.projectScroll, s.sessionScroll = 0, 0
	s.status = fmt.Sprintf("Search '%s' matched %d projects", s.query, len(s.projects))
	s.log.Debug("search applied", "query", s.query, "projects", len(s.projects))
}
