package walk_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raklaptudirm/tormake/pkg/walk"
)

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

func namesInOrder(t *testing.T, root string, mode walk.Mode) []string {
	t.Helper()
	_, entries, err := walk.Walk(root, mode)
	if err != nil {
		t.Fatal(err)
	}
	out := make([]string, len(entries))
	for i, f := range entries {
		out[i] = strings.Join(f.Path, "/")
	}
	return out
}

func TestWalkOrderingModes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a", "10.txt"), 1)
	writeFile(t, filepath.Join(dir, "a", "2.txt"), 1)
	writeFile(t, filepath.Join(dir, "a", "1.txt"), 1)

	alpha := namesInOrder(t, dir, walk.Alphabetical)
	if want := []string{"a/1.txt", "a/10.txt", "a/2.txt"}; !equal(alpha, want) {
		t.Errorf("Alphabetical: got %v, want %v", alpha, want)
	}

	natural := namesInOrder(t, dir, walk.BreadthFirstAlphabetical)
	if want := []string{"a/1.txt", "a/2.txt", "a/10.txt"}; !equal(natural, want) {
		t.Errorf("BreadthFirstAlphabetical: got %v, want %v", natural, want)
	}
}

func TestWalkFileSizeDescending(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "small.bin"), 10)
	writeFile(t, filepath.Join(dir, "big.bin"), 100)
	writeFile(t, filepath.Join(dir, "mid.bin"), 50)

	_, entries, err := walk.Walk(dir, walk.FileSize)
	if err != nil {
		t.Fatal(err)
	}
	for i := 1; i < len(entries); i++ {
		if entries[i-1].Length < entries[i].Length {
			t.Fatalf("FileSize: entries not descending: %+v", entries)
		}
	}
}

func TestWalkBreadthFirstLevelFilesBeforeSubdirs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "z.txt"), 1)
	writeFile(t, filepath.Join(dir, "a", "nested.txt"), 1)

	order := namesInOrder(t, dir, walk.BreadthFirstLevel)
	if order[0] != "z.txt" {
		t.Errorf("BreadthFirstLevel: expected top-level file before subdirectory entries, got %v", order)
	}
}

func TestWalkSingleFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "solo.bin")
	writeFile(t, path, 42)

	name, entries, err := walk.Walk(path, walk.Default)
	if err != nil {
		t.Fatal(err)
	}
	if name != "solo.bin" {
		t.Errorf("Walk: name = %q, want solo.bin", name)
	}
	if len(entries) != 1 || len(entries[0].Path) != 0 || entries[0].Length != 42 {
		t.Errorf("Walk: unexpected single-file entries %+v", entries)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
