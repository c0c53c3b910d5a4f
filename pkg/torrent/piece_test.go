package torrent_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/raklaptudirm/tormake/pkg/torrent"
)

func TestPlanCrossFilePiece(t *testing.T) {
	files := []torrent.FileEntry{
		{Length: 1000, Path: []string{"a"}},
		{Length: 2000, Path: []string{"b"}},
	}
	plan := torrent.Plan(files, 1024)
	require.Len(t, plan, 3)

	assert.Equal(t, []torrent.FileSpan{
		{FileIndex: 0, FileOffset: 0, Length: 1000},
		{FileIndex: 1, FileOffset: 0, Length: 24},
	}, plan[0])

	assert.Equal(t, []torrent.FileSpan{
		{FileIndex: 1, FileOffset: 24, Length: 1024},
	}, plan[1])

	assert.Equal(t, []torrent.FileSpan{
		{FileIndex: 1, FileOffset: 1048, Length: 952},
	}, plan[2])
}

func TestPlanInvariants(t *testing.T) {
	files := []torrent.FileEntry{
		{Length: 65536, Path: []string{"a"}},
	}
	plan := torrent.Plan(files, 65536)
	require.Len(t, plan, 1)
	assert.Equal(t, int64(65536), plan[0][0].Length)
}

func TestPlanSumsMatchTotal(t *testing.T) {
	files := []torrent.FileEntry{
		{Length: 37, Path: []string{"a"}},
		{Length: 5000, Path: []string{"b"}},
		{Length: 1, Path: []string{"c"}},
	}
	const pieceLength = 512
	plan := torrent.Plan(files, pieceLength)

	var sum int64
	for i, spans := range plan {
		var pieceSum int64
		for _, s := range spans {
			pieceSum += s.Length
		}
		sum += pieceSum
		if i < len(plan)-1 {
			assert.Equal(t, int64(pieceLength), pieceSum, "piece %d should be full", i)
		}
	}
	assert.EqualValues(t, 37+5000+1, sum)
}

func TestPlanEmptyFiles(t *testing.T) {
	plan := torrent.Plan(nil, 1024)
	assert.Empty(t, plan)
}
