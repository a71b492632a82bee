package preview

// FoldSet records, per session path, which turn indices are collapsed. It
// lives for the whole run and is never written to disk.
type FoldSet struct {
	folded map[string]map[int]bool
}

func NewFoldSet() *FoldSet {
	return &FoldSet{folded: map[string]map[int]bool{}}
}

// For returns the collapsed turns of path. The map must not be modified.
func (f *FoldSet) For(path string) map[int]bool {
	return f.folded[path]
}

func (f *FoldSet) IsFolded(path string, turn int) bool {
	return f.folded[path][turn]
}

func (f *FoldSet) Fold(path string, turn int) {
	set := f.folded[path]
	if set == nil {
		set = map[int]bool{}
		f.folded[path] = set
	}
	set[turn] = true
}

func (f *FoldSet) Unfold(path string, turn int) {
	set := f.folded[path]
	if set == nil {
		return
	}
	delete(set, turn)
	if len(set) == 0 {
		delete(f.folded, path)
	}
}

// Toggle flips the fold state of a turn and reports whether it is now folded.
func (f *FoldSet) Toggle(path string, turn int) bool {
	if f.IsFolded(path, turn) {
		f.Unfold(path, turn)
		return false
	}
	f.Fold(path, turn)
	return true
}

// ToggleAll expands every turn when all of them are folded and folds every
// turn otherwise. It reports whether the turns are now folded.
func (f *FoldSet) ToggleAll(path string, turns int) bool {
	if turns <= 0 {
		return false
	}
	all := true
	for i := 0; i < turns; i++ {
		if !f.IsFolded(path, i) {
			all = false
			break
		}
	}
	if all {
		delete(f.folded, path)
		return false
	}
	set := make(map[int]bool, turns)
	for i := 0; i < turns; i++ {
		set[i] = true
	}
	f.folded[path] = set
	return true
}

// Prune drops fold state for paths that keep reports false for.
func (f *FoldSet) Prune(keep func(path string) bool) {
	for path := range f.folded {
		if !keep(path) {
			delete(f.folded, path)
		}
	}
}
