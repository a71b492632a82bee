// Package search ranks sessions and projects against a free-text query.
package search

import (
	"math"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/baaaaaaaka/codex-workspace/internal/codexhistory"
)

const (
	matchScore      = 10
	contiguousBonus = 8
	boundaryBonus   = 6
)

// Score matches query as an ordered, case-insensitive subsequence of
// haystack. Matched characters earn a base score plus bonuses for runs and
// word starts; the total is reduced by len(haystack)/8 so denser matches win.
// An empty query always matches with score 0.
func Score(query, haystack string) (int64, bool) {
	if query == "" {
		return 0, true
	}
	q := []rune(query)
	qi := 0
	var score int64
	prevMatch := -1
	var prev rune
	i := 0
	for _, ch := range haystack {
		if qi < len(q) && foldEqual(ch, q[qi]) {
			score += matchScore
			if prevMatch >= 0 && i == prevMatch+1 {
				score += contiguousBonus
			}
			if i == 0 || isBoundary(prev) {
				score += boundaryBonus
			}
			prevMatch = i
			qi++
		}
		prev = ch
		i++
	}
	if qi != len(q) {
		return 0, false
	}
	return score - int64(utf8.RuneCountInString(haystack)/8), true
}

func foldEqual(a, b rune) bool {
	return a == b || unicode.ToLower(a) == unicode.ToLower(b)
}

func isBoundary(r rune) bool {
	switch r {
	case ' ', '/', '_', '-', '.':
		return true
	}
	return false
}

// sessionText is the haystack a session is matched against.
func sessionText(s codexhistory.SessionSummary) string {
	return s.SearchBlob + "\n" + s.FileName + "\n" + s.ID + "\n" + s.Cwd
}

// SessionScore is the best of the session text score and half the project
// path score.
func SessionScore(query string, s codexhistory.SessionSummary) (int64, bool) {
	best := int64(math.MinInt64)
	matched := false
	if sc, ok := Score(query, sessionText(s)); ok {
		best = sc
		matched = true
	}
	if sc, ok := Score(query, strings.ToLower(s.Cwd)); ok {
		if half := sc / 2; !matched || half > best {
			best = half
		}
		matched = true
	}
	return best, matched
}

type scored struct {
	session codexhistory.SessionSummary
	score   int64
}

// Filter returns the catalog narrowed to sessions matching query. Sessions are
// ordered by score then start time, projects by match count then cwd. A blank
// query returns a copy of the catalog in its original order.
func Filter(catalog []codexhistory.ProjectBucket, query string) []codexhistory.ProjectBucket {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		out := make([]codexhistory.ProjectBucket, len(catalog))
		for i, p := range catalog {
			out[i] = codexhistory.ProjectBucket{
				Cwd:      p.Cwd,
				Sessions: append([]codexhistory.SessionSummary(nil), p.Sessions...),
			}
		}
		return out
	}

	var out []codexhistory.ProjectBucket
	for _, project := range catalog {
		var hits []scored
		for _, sess := range project.Sessions {
			if sc, ok := SessionScore(query, sess); ok {
				hits = append(hits, scored{session: sess, score: sc})
			}
		}
		if len(hits) == 0 {
			continue
		}
		sort.SliceStable(hits, func(i, j int) bool {
			if hits[i].score != hits[j].score {
				return hits[i].score > hits[j].score
			}
			return hits[i].session.StartedAt > hits[j].session.StartedAt
		})
		sessions := make([]codexhistory.SessionSummary, len(hits))
		for i, h := range hits {
			sessions[i] = h.session
		}
		out = append(out, codexhistory.ProjectBucket{Cwd: project.Cwd, Sessions: sessions})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i].Sessions) != len(out[j].Sessions) {
			return len(out[i].Sessions) > len(out[j].Sessions)
		}
		return out[i].Cwd < out[j].Cwd
	})
	return out
}
