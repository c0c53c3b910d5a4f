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

import (
	"crypto/sha1" //nolint:gosec // SHA-1 is the BitTorrent v1 wire format, not a security boundary
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/raklaptudirm/tormake/internal/bufpool"
)

// pieceJob is one unit of work handed to a hasher worker: the piece index
// and the file spans it is composed of.
type pieceJob struct {
	index int
	spans []FileSpan
}

// pieceResult is a completed job's digest, tagged with its index so
// results can be written back in piece order regardless of completion
// order.
type pieceResult struct {
	index  int
	digest [sha1.Size]byte
	err    error
}

// HashPieces computes the concatenated pieces byte string for files under
// root according to plan, using up to jobs worker goroutines (0 meaning
// sink.Jobs(), and GOMAXPROCS if that is 0 too). Results are assembled in piece-index order, independent of
// completion order, matching the parallelism contract: the output is
// deterministic regardless of scheduling.
func HashPieces(root string, files []FileEntry, plan PieceMap, pieceLength int64, jobs int, sink ProgressSink) ([]byte, error) {
	if jobs <= 0 {
		jobs = sink.Jobs()
	}
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	if jobs > len(plan) && len(plan) > 0 {
		jobs = len(plan)
	}

	sink.SetTotal(len(plan))
	defer sink.Finish()

	pool := bufpool.New()
	if err := pool.Init(int(pieceLength)); err != nil {
		return nil, newErr(KindIO, "initializing buffer pool", err)
	}
	defer pool.Close()

	jobsCh := make(chan pieceJob, len(plan))
	for i, spans := range plan {
		jobsCh <- pieceJob{index: i, spans: spans}
	}
	close(jobsCh)

	results := make(chan pieceResult, len(plan))
	var wg sync.WaitGroup
	for w := 0; w < jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			hashWorker(root, files, pool, jobsCh, results, sink)
		}()
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	pieces := make([]byte, 20*len(plan))
	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		copy(pieces[20*res.index:20*res.index+20], res.digest[:])
	}

	return pieces, nil
}

func hashWorker(root string, files []FileEntry, pool *bufpool.Pool, jobs <-chan pieceJob, results chan<- pieceResult, sink ProgressSink) {
	for job := range jobs {
		digest, err := hashPiece(root, files, pool, job.index, job.spans)
		if err != nil {
			results <- pieceResult{index: job.index, err: err}
			continue
		}
		sink.Inc(1)
		results <- pieceResult{index: job.index, digest: digest}
	}
}

func hashPiece(root string, files []FileEntry, pool *bufpool.Pool, index int, spans []FileSpan) ([sha1.Size]byte, error) {
	var digest [sha1.Size]byte

	h := sha1.New() //nolint:gosec // see HashPieces
	for _, span := range spans {
		f := files[span.FileIndex]
		path := filePath(root, f)

		fh, err := os.Open(path)
		if err != nil {
			return digest, newErr(KindIO, fmt.Sprintf("opening %s for piece %d", path, index), err)
		}

		buf, err := pool.Get()
		if err != nil {
			fh.Close()
			return digest, newErr(KindIO, "acquiring hash buffer", err)
		}
		buf = buf[:span.Length]

		_, err = fh.Seek(span.FileOffset, io.SeekStart)
		if err == nil {
			_, err = io.ReadFull(fh, buf)
		}
		fh.Close()
		if err != nil {
			pool.Put(buf)
			return digest, newErr(KindIO, fmt.Sprintf("reading %s", path), err)
		}

		h.Write(buf)
		pool.Put(buf)
	}

	copy(digest[:], h.Sum(nil))
	return digest, nil
}
