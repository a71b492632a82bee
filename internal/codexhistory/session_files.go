package codexhistory

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// collectSessionFiles walks root (e.g. ~/.codex/sessions/) recursively and
// returns all .jsonl file paths in lexical order. A missing root yields no
// files; a root that cannot be listed is an error. Unreadable subdirectories
// are skipped.
func collectSessionFiles(root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat sessions root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("sessions root is not a directory: %s", root)
	}

	var files []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), sessionFileExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read sessions root: %w", err)
	}
	return files, nil
}
