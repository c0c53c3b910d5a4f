package torrent_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raklaptudirm/tormake/pkg/torrent"
	"github.com/raklaptudirm/tormake/pkg/walk"
)

func createTestTorrent(t *testing.T, root string, private bool) *torrent.Torrent {
	t.Helper()
	tr, err := torrent.Create(root, torrent.CreateOptions{
		PieceLength: 1024,
		WalkMode:    walk.Alphabetical,
		Private:     private,
		Logger:      torrent.NopLogger,
		Progress:    torrent.NopProgress,
	})
	require.NoError(t, err)
	return tr
}

func TestCreateDecodeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), make([]byte, 3000), 0o644))

	tr := createTestTorrent(t, dir, false)
	data := tr.Encode()

	decoded, err := torrent.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, tr.InfoHash, decoded.InfoHash)
	assert.Equal(t, tr.Info.Pieces, decoded.Info.Pieces)
}

func TestInfoHashStability(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), []byte("hello world"), 0o644))

	tr := createTestTorrent(t, dir, false)
	data := tr.Encode()

	decoded, err := torrent.Decode(data)
	require.NoError(t, err)

	reEncoded := decoded.Encode()
	redecoded, err := torrent.Decode(reEncoded)
	require.NoError(t, err)

	assert.Equal(t, decoded.InfoHash, redecoded.InfoHash)
}

func TestPrivateFlagChangesInfoHash(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), []byte("content"), 0o644))

	public := createTestTorrent(t, dir, false)
	private := createTestTorrent(t, dir, true)

	assert.NotEqual(t, public.InfoHash, private.InfoHash)
}

func TestSingleVsMultiFileSymmetry(t *testing.T) {
	base := t.TempDir()
	singleFile := filepath.Join(base, "f")
	require.NoError(t, os.WriteFile(singleFile, []byte("same bytes"), 0o644))

	dirTarget := filepath.Join(base, "d")
	require.NoError(t, os.MkdirAll(dirTarget, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dirTarget, "f"), []byte("same bytes"), 0o644))

	fromFile := createTestTorrent(t, singleFile, false)
	fromDir := createTestTorrent(t, dirTarget, false)

	assert.Equal(t, "f", fromFile.Info.Name)
	assert.Equal(t, "d", fromDir.Info.Name)
	assert.Equal(t, fromFile.Info.Pieces, fromDir.Info.Pieces)
}

func TestEmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	tr := createTestTorrent(t, path, false)
	assert.Equal(t, int64(0), tr.Info.Length)
	assert.Empty(t, tr.Info.Pieces)

	data := tr.Encode()
	decoded, err := torrent.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, data, decoded.Encode())
}

func TestVerifyIdempotentOnUnmodifiedTarget(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), make([]byte, 2500), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b"), make([]byte, 100), 0o644))

	tr := createTestTorrent(t, dir, false)

	report, err := torrent.Verify(dir, tr.Info, 0, torrent.NopProgress)
	require.NoError(t, err)
	assert.True(t, report.OK())

	// run again: verification is idempotent
	report2, err := torrent.Verify(dir, tr.Info, 0, torrent.NopProgress)
	require.NoError(t, err)
	assert.True(t, report2.OK())
}

func TestVerifyMissingFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), make([]byte, 1000), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b"), make([]byte, 1000), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c"), make([]byte, 1000), 0o644))

	tr, err := torrent.Create(dir, torrent.CreateOptions{
		PieceLength: 1024,
		WalkMode:    walk.Alphabetical,
		Logger:      torrent.NopLogger,
		Progress:    torrent.NopProgress,
	})
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "b")))

	report, err := torrent.Verify(dir, tr.Info, 0, torrent.NopProgress)
	require.NoError(t, err)
	assert.False(t, report.OK())

	var bIndex = -1
	for i, f := range tr.Info.Files {
		if len(f.Path) == 1 && f.Path[0] == "b" {
			bIndex = i
		}
	}
	require.NotEqual(t, -1, bIndex)
	assert.Contains(t, report.KnownBadFiles, bIndex)
	assert.Contains(t, report.FailedFiles, bIndex)
}

func TestVerifySingleByteFlip(t *testing.T) {
	dir := t.TempDir()
	content := make([]byte, 3000)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), content, 0o644))

	tr := createTestTorrent(t, dir, false)

	path := filepath.Join(dir, "f")
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data[1500] ^= 0xFF
	require.NoError(t, os.WriteFile(path, data, 0o644))

	report, err := torrent.Verify(dir, tr.Info, 0, torrent.NopProgress)
	require.NoError(t, err)
	assert.False(t, report.OK())
	assert.Empty(t, report.KnownBadFiles, "a byte flip doesn't change size, so no file should be known-bad")
	assert.Len(t, report.FailedPieces, 1)
}

func TestWriteFileRefusesExistingWithoutForce(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "f"), []byte("x"), 0o644))
	tr := createTestTorrent(t, filepath.Join(dir, "f"), false)

	out := filepath.Join(dir, "out.torrent")
	require.NoError(t, torrent.WriteFile(tr, out, false))

	err := torrent.WriteFile(tr, out, false)
	require.Error(t, err)

	require.NoError(t, torrent.WriteFile(tr, out, true))
}
