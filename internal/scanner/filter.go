package scanner

import (
	"path/filepath"
	"strings"
)

// Filter decides file eligibility and directory pruning.
type Filter struct {
	extensions map[string]struct{}
	skipDirs   map[string]struct{}
}

// NewFilter creates a filter from the default lists plus the given extras.
// Extensions without a leading dot get one.
func NewFilter(extraExtensions, extraSkipDirs []string) *Filter {
	f := &Filter{
		extensions: make(map[string]struct{}, len(DefaultExtensions)+len(extraExtensions)),
		skipDirs:   make(map[string]struct{}, len(DefaultSkipDirs)+len(extraSkipDirs)),
	}
	for _, ext := range append(append([]string{}, DefaultExtensions...), extraExtensions...) {
		ext = strings.TrimSpace(ext)
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.extensions[ext] = struct{}{}
	}
	for _, dir := range append(append([]string{}, DefaultSkipDirs...), extraSkipDirs...) {
		dir = strings.Trim(strings.TrimSpace(dir), "/")
		if dir != "" {
			f.skipDirs[dir] = struct{}{}
		}
	}
	return f
}

// SkipDir reports whether a directory with this name must not be descended into.
func (f *Filter) SkipDir(name string) bool {
	_, ok := f.skipDirs[name]
	return ok
}

// Eligible reports whether the file at rel (relative to the walk root) should be indexed.
func (f *Filter) Eligible(rel string) bool {
	name := filepath.Base(rel)
	if strings.HasPrefix(name, ".") {
		return false
	}
	if _, ok := f.extensions[filepath.Ext(name)]; !ok {
		return false
	}

	dir := filepath.Dir(rel)
	if dir == "." {
		return true
	}
	for _, part := range strings.Split(filepath.ToSlash(dir), "/") {
		if f.SkipDir(part) {
			return false
		}
	}
	return true
}
