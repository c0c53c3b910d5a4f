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

package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/raklaptudirm/tormake/pkg/torrent"
)

// maxDisplayedAnnounces and maxDisplayedFiles bound how much of a large
// torrent's announce list / file tree inspect prints before truncating,
// mirroring the original implementation's display limits.
const (
	maxDisplayedAnnounces = 20
	maxDisplayedFiles     = 100
)

// Summary renders a human-readable description of t for the inspect mode.
func Summary(t *torrent.Torrent) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", color.CyanString("name:"), t.Info.Name)
	fmt.Fprintf(&b, "%s %s\n", color.CyanString("info hash:"), t.InfoHashHex())

	if t.Announce != "" {
		fmt.Fprintf(&b, "%s %s\n", color.CyanString("announce:"), t.Announce)
	}
	if len(t.AnnounceList) > 0 {
		fmt.Fprintf(&b, "%s\n", color.CyanString("announce list:"))
		shown := 0
		for tier, urls := range t.AnnounceList {
			if shown >= maxDisplayedAnnounces {
				fmt.Fprintf(&b, "  ... %d more tier(s)\n", len(t.AnnounceList)-shown)
				break
			}
			fmt.Fprintf(&b, "  tier %d: %s\n", tier+1, strings.Join(urls, ", "))
			shown++
		}
	}
	if t.Comment != "" {
		fmt.Fprintf(&b, "%s %s\n", color.CyanString("comment:"), t.Comment)
	}
	if t.CreatedBy != "" {
		fmt.Fprintf(&b, "%s %s\n", color.CyanString("created by:"), t.CreatedBy)
	}
	if t.CreationDate != nil {
		fmt.Fprintf(&b, "%s %s\n", color.CyanString("created:"), time.Unix(*t.CreationDate, 0).Local().Format(time.RFC1123))
	}
	if t.Encoding != "" {
		fmt.Fprintf(&b, "%s %s\n", color.CyanString("encoding:"), t.Encoding)
	}
	if t.Hash != "" {
		fmt.Fprintf(&b, "%s %s\n", color.CyanString("hash:"), t.Hash)
	}

	fmt.Fprintf(&b, "%s %s\n", color.CyanString("piece length:"), humanize.IBytes(uint64(t.Info.PieceLength)))
	fmt.Fprintf(&b, "%s %d\n", color.CyanString("pieces:"), len(t.Info.Pieces)/20)
	fmt.Fprintf(&b, "%s %s\n", color.CyanString("total size:"), humanize.IBytes(uint64(t.Info.TotalLength())))
	fmt.Fprintf(&b, "%s %v\n", color.CyanString("private:"), t.Info.Private)

	if t.Info.MultiFile() {
		fmt.Fprintf(&b, "%s\n", color.CyanString(fmt.Sprintf("files (%d):", len(t.Info.Files))))
		b.WriteString(fileTree(t.Info.Files))
	}

	return b.String()
}

// fileTree renders a multi-file torrent's file list as an indented tree,
// grouping entries by their shared directory prefixes, in the spirit of
// the original implementation's tree printer.
func fileTree(files []torrent.FileEntry) string {
	type node struct {
		children map[string]*node
		size     int64
		isFile   bool
	}
	root := &node{children: map[string]*node{}}

	shown := files
	truncated := 0
	if len(shown) > maxDisplayedFiles {
		truncated = len(shown) - maxDisplayedFiles
		shown = shown[:maxDisplayedFiles]
	}

	for _, f := range shown {
		cur := root
		for i, seg := range f.Path {
			next, ok := cur.children[seg]
			if !ok {
				next = &node{children: map[string]*node{}}
				cur.children[seg] = next
			}
			if i == len(f.Path)-1 {
				next.isFile = true
				next.size = f.Length
			}
			cur = next
		}
	}

	var b strings.Builder
	var walk func(n *node, prefix string)
	walk = func(n *node, prefix string) {
		names := make([]string, 0, len(n.children))
		for name := range n.children {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			child := n.children[name]
			if child.isFile {
				fmt.Fprintf(&b, "%s%s (%s)\n", prefix, name, humanize.IBytes(uint64(child.size)))
			} else {
				fmt.Fprintf(&b, "%s%s/\n", prefix, name)
			}
			walk(child, prefix+"  ")
		}
	}
	walk(root, "  ")

	if truncated > 0 {
		fmt.Fprintf(&b, "  ... %d more file(s)\n", truncated)
	}

	return b.String()
}

// VerifyReport renders a FailureReport for the verify mode, annotating
// files that were missing or size-mismatched separately from files merely
// touched by a bad piece.
func VerifyReport(info torrent.InfoBlock, report *torrent.FailureReport) string {
	var b strings.Builder

	if report.OK() {
		b.WriteString(color.GreenString("OK: target matches the torrent\n"))
		return b.String()
	}

	fmt.Fprintf(&b, "%s %d of %d piece(s) failed\n",
		color.RedString("FAILED:"), len(report.FailedPieces), len(info.Pieces)/20)

	files := info.FileEntries()
	indices := make([]int, 0, len(report.FailedFiles))
	for i := range report.FailedFiles {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	for _, i := range indices {
		name := fileName(files[i], info.Name)
		if _, known := report.KnownBadFiles[i]; known {
			fmt.Fprintf(&b, "  %s %s [missing or size mismatch]\n", color.RedString("✗"), name)
		} else {
			fmt.Fprintf(&b, "  %s %s\n", color.YellowString("✗"), name)
		}
	}

	return b.String()
}

func fileName(f torrent.FileEntry, single string) string {
	if len(f.Path) == 0 {
		return single
	}
	return strings.Join(f.Path, "/")
}
