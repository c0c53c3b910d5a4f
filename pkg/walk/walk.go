// Copyright © 2021 Rak Laptudirm <raklaptudirm@gmail.com>
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package walk enumerates a filesystem target (a file or a directory
// tree) into the ordered file list a torrent's info dictionary is built
// from, applying one of five WalkModes to decide the order.
package walk

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Entry is one enumerated filesystem entry: a length and an ordered
// sequence of path segments relative to the walked root. This package
// does not depend on pkg/torrent (which itself depends on pkg/walk to
// drive Create), so it carries its own minimal shape rather than
// torrent.FileEntry; callers translate between the two at the boundary.
type Entry struct {
	Length int64
	Path   []string
}

// Mode selects the ordering policy applied to the enumerated file list.
type Mode int

const (
	// Default is whatever order the underlying directory walk returns;
	// it is not guaranteed to be stable across platforms or filesystems.
	Default Mode = iota
	// Alphabetical sorts by the full path-segment sequence, compared
	// segment by segment on raw bytes.
	Alphabetical
	// BreadthFirstAlphabetical sorts segment by segment using a
	// case-insensitive natural-order comparison (numeric runs compare by
	// value), with a strict path prefix sorting before its extension.
	BreadthFirstAlphabetical
	// BreadthFirstLevel is like BreadthFirstAlphabetical, but at each
	// compared depth an entry terminating there sorts before one that
	// continues deeper, so files sort before sibling subdirectories.
	BreadthFirstLevel
	// FileSize sorts descending by length.
	FileSize
)

// Parse converts a CLI walk-mode index (0..=4) into a Mode.
func Parse(n int) (Mode, bool) {
	if n < int(Default) || n > int(FileSize) {
		return Default, false
	}
	return Mode(n), true
}

// Walk enumerates root (a file or a directory) into an ordered Entry list
// according to mode. If root names a regular file, the result is a
// single entry with an empty Path (the single-file form); its on-disk
// name is returned separately since InfoBlock carries it at the top
// level, not inside an Entry.
func Walk(root string, mode Mode) (name string, files []Entry, err error) {
	info, err := os.Stat(root)
	if err != nil {
		return "", nil, err
	}

	if !info.IsDir() {
		return info.Name(), []Entry{{Length: info.Size()}}, nil
	}

	name = filepath.Base(filepath.Clean(root))

	var entries []Entry
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// a single unreadable entry is skipped, not fatal, per the
			// walker's contract around transient per-entry stat failures
			return nil
		}
		if d.IsDir() {
			return nil
		}

		fi, statErr := d.Info()
		if statErr != nil {
			return nil
		}
		if fi.Mode()&fs.ModeSymlink != 0 {
			// symlinks are followed: resolve to the link's target and
			// use its size, rather than the symlink's own metadata.
			fi, statErr = os.Stat(path)
			if statErr != nil {
				return nil
			}
		}
		if !fi.Mode().IsRegular() {
			// non-regular entries (devices, sockets, pipes, or a
			// symlink that resolved to a directory) are skipped
			// silently.
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}

		entries = append(entries, Entry{
			Length: fi.Size(),
			Path:   splitPath(rel),
		})
		return nil
	})
	if err != nil {
		return "", nil, err
	}

	sortEntries(entries, mode)
	return name, entries, nil
}

func splitPath(rel string) []string {
	return strings.Split(filepath.ToSlash(rel), "/")
}

func sortEntries(entries []Entry, mode Mode) {
	switch mode {
	case Default:
		// leave the walk's own order untouched
	case Alphabetical:
		sort.SliceStable(entries, func(i, j int) bool {
			return comparePath(entries[i].Path, entries[j].Path, false) < 0
		})
	case BreadthFirstAlphabetical:
		sort.SliceStable(entries, func(i, j int) bool {
			return comparePath(entries[i].Path, entries[j].Path, true) < 0
		})
	case BreadthFirstLevel:
		sort.SliceStable(entries, func(i, j int) bool {
			return compareLevel(entries[i].Path, entries[j].Path) < 0
		})
	case FileSize:
		sort.SliceStable(entries, func(i, j int) bool {
			return entries[i].Length > entries[j].Length
		})
	}
}

// comparePath compares two path-segment sequences segment by segment. If
// natural is true, each segment is compared with natural, case-insensitive
// ordering; otherwise segments compare as raw bytes. A strict prefix
// always sorts before its extension.
func comparePath(a, b []string, natural bool) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		var c int
		if natural {
			c = compareNatural(a[i], b[i])
		} else {
			c = strings.Compare(a[i], b[i])
		}
		if c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}

// compareLevel is BreadthFirstAlphabetical's ordering, except that at the
// first depth where one path ends, that path sorts first even if the
// other path's same-depth segment would otherwise compare less (files
// before sibling subdirectories at the same level).
func compareLevel(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		aEnds := i == len(a)-1
		bEnds := i == len(b)-1
		if aEnds != bEnds {
			if aEnds {
				return -1
			}
			return 1
		}
		if c := compareNatural(a[i], b[i]); c != 0 {
			return c
		}
	}
	return len(a) - len(b)
}
