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

package torrent

import "path/filepath"

// FileEntry is one member of a multi-file torrent's file list: a length
// and an ordered sequence of path segments. For a single-file torrent the
// one implicit FileEntry has an empty Path; its name is carried by the
// enclosing InfoBlock.Name instead.
type FileEntry struct {
	Length int64
	Path   []string
}

// bencodeFile is the wire shape of a FileEntry within info.files.
type bencodeFile struct {
	Length int64    `bencode:"length"`
	Path   []string `bencode:"path"`
}

func (f FileEntry) toBencode() bencodeFile {
	return bencodeFile{Length: f.Length, Path: f.Path}
}

// filePath resolves a FileEntry to its on-disk path under root. A
// single-file entry (empty Path) resolves to root itself.
func filePath(root string, f FileEntry) string {
	if len(f.Path) == 0 {
		return root
	}
	segments := append([]string{root}, f.Path...)
	return filepath.Join(segments...)
}
