package codexhistory

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Scan builds the project catalog for the sessions under root. Files that
// cannot be read are left out; only a root that cannot be listed fails the
// scan. A missing root is an empty catalog.
func Scan(root string) ([]ProjectBucket, error) {
	files, err := collectSessionFiles(root)
	if err != nil {
		return nil, err
	}

	groups := map[string][]SessionSummary{}
	for _, path := range files {
		sess, err := readSessionSummary(path)
		if err != nil {
			continue
		}
		groups[sess.Cwd] = append(groups[sess.Cwd], sess)
	}
	return groupByProject(groups), nil
}

func groupByProject(groups map[string][]SessionSummary) []ProjectBucket {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	projects := make([]ProjectBucket, 0, len(keys))
	for _, key := range keys {
		sessions := groups[key]
		sort.SliceStable(sessions, func(i, j int) bool {
			if sessions[i].StartedAt != sessions[j].StartedAt {
				return sessions[i].StartedAt > sessions[j].StartedAt
			}
			return sessions[i].Path < sessions[j].Path
		})
		projects = append(projects, ProjectBucket{Cwd: key, Sessions: sessions})
	}
	return projects
}

// SessionCount totals the sessions across all buckets.
func SessionCount(projects []ProjectBucket) int {
	n := 0
	for _, p := range projects {
		n += len(p.Sessions)
	}
	return n
}

// FindSession resolves ref against the catalog by file path, file name or
// session id (an 8+ character id prefix is accepted when unambiguous).
func FindSession(projects []ProjectBucket, ref string) (SessionSummary, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return SessionSummary{}, fmt.Errorf("empty session reference")
	}
	abs := ref
	if p, err := filepath.Abs(ExpandTilde(ref)); err == nil {
		abs = p
	}

	var prefixMatches []SessionSummary
	for _, project := range projects {
		for _, sess := range project.Sessions {
			if sess.Path == ref || sess.Path == abs || sess.FileName == ref || sess.ID == ref {
				return sess, nil
			}
			if len(ref) >= 8 && strings.HasPrefix(sess.ID, ref) {
				prefixMatches = append(prefixMatches, sess)
			}
		}
	}
	switch len(prefixMatches) {
	case 0:
		return SessionSummary{}, fmt.Errorf("session not found: %s", ref)
	case 1:
		return prefixMatches[0], nil
	default:
		return SessionSummary{}, fmt.Errorf("session reference %q is ambiguous (%d matches)", ref, len(prefixMatches))
	}
}

// FindProject returns the bucket whose cwd equals cwd.
func FindProject(projects []ProjectBucket, cwd string) (ProjectBucket, bool) {
	for _, p := range projects {
		if p.Cwd == cwd {
			return p, true
		}
	}
	return ProjectBucket{}, false
}
