package walker

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sderose/powerwalk/objects"
)

// Sort keys for a directory's children. The empty key keeps whatever
// order the directory listing produced.
const (
	SortNone      = ""
	SortName      = "name"
	SortIName     = "iname"
	SortATime     = "atime"
	SortMTime     = "mtime"
	SortCTime     = "ctime"
	SortSize      = "size"
	SortExtension = "extension"
)

func validSortKey(key string) bool {
	switch key {
	case SortNone, SortName, SortIName, SortATime, SortMTime, SortCTime, SortSize, SortExtension:
		return true
	}
	return false
}

type childEntry struct {
	name  string
	isDir bool
	info  objects.FileInfo
}

// sortChildren orders a directory listing per the configured key,
// direction and grouping, and returns the child names. The sort key was
// validated when the walker was built; a stat failure during sorting
// falls back to the zero FileInfo rather than failing the listing.
func sortChildren(pathname string, entries []os.DirEntry, key string, reverse bool, grouping DirGrouping) []string {
	children := make([]childEntry, 0, len(entries))
	for _, entry := range entries {
		child := childEntry{name: entry.Name(), isDir: entry.IsDir()}
		if stat, err := entry.Info(); err == nil {
			child.info = objects.FileInfoFromStat(stat)
		}
		children = append(children, child)
	}

	if key != SortNone {
		sort.SliceStable(children, func(i, j int) bool {
			return childLess(children[i], children[j], key)
		})
	}
	if reverse {
		for i, j := 0, len(children)-1; i < j; i, j = i+1, j-1 {
			children[i], children[j] = children[j], children[i]
		}
	}

	if grouping != GroupMixed {
		dirs := make([]childEntry, 0, len(children))
		files := make([]childEntry, 0, len(children))
		for _, child := range children {
			if child.isDir {
				dirs = append(dirs, child)
			} else {
				files = append(files, child)
			}
		}
		if grouping == GroupDirsFirst {
			children = append(dirs, files...)
		} else {
			children = append(files, dirs...)
		}
	}

	names := make([]string, 0, len(children))
	for _, child := range children {
		names = append(names, child.name)
	}
	return names
}

func childLess(a childEntry, b childEntry, key string) bool {
	switch key {
	case SortName:
		return a.name < b.name
	case SortIName:
		return strings.ToLower(a.name) < strings.ToLower(b.name)
	case SortATime:
		return a.info.AccessTime().Before(b.info.AccessTime())
	case SortMTime:
		return a.info.ModTime().Before(b.info.ModTime())
	case SortCTime:
		return a.info.ChangeTime().Before(b.info.ChangeTime())
	case SortSize:
		return a.info.Size() < b.info.Size()
	case SortExtension:
		return filepath.Ext(a.name) < filepath.Ext(b.name)
	}
	return false
}
