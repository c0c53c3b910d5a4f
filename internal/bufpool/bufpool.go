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

// Package bufpool manages the reusable per-worker buffers the hashing and
// verification pipelines read file bytes into. It used to back each piece
// with its own file on disk (see git history); pieces are no longer
// persisted individually, so the manager now hands out in-memory buffers
// from a sync.Pool instead of files from a temp directory, keeping the
// same Init/Get/Put/Close lifecycle shape.
package bufpool

import (
	"errors"
	"sync"
)

// ErrClosed is returned when a Pool is used after Close or before Init.
var ErrClosed = errors.New("bufpool: pool is closed")

// Pool hands out and reclaims []byte buffers of a fixed size, sized to at
// least one piece, for reuse across worker goroutines.
type Pool struct {
	size int
	pool *sync.Pool
}

// New returns an uninitialized Pool. Call Init before use.
func New() *Pool {
	return &Pool{}
}

// Init sizes the pool's buffers to bufSize bytes, typically the piece
// length of the torrent being hashed or verified.
func (p *Pool) Init(bufSize int) error {
	size := bufSize
	p.pool = &sync.Pool{
		New: func() any {
			return make([]byte, size)
		},
	}
	p.size = bufSize
	return nil
}

// Get returns a buffer of at least the pool's configured size, either
// reused from a prior Put or freshly allocated.
func (p *Pool) Get() ([]byte, error) {
	if p.isClosed() {
		return nil, ErrClosed
	}
	buf := p.pool.Get().([]byte)
	if cap(buf) < p.size {
		buf = make([]byte, p.size)
	}
	return buf[:p.size], nil
}

// Put returns a buffer to the pool for reuse.
func (p *Pool) Put(buf []byte) error {
	if p.isClosed() {
		return ErrClosed
	}
	p.pool.Put(buf) //nolint:staticcheck // intentionally reusing slice capacity
	return nil
}

// Close releases the pool. A Pool cannot be reused after Close.
func (p *Pool) Close() error {
	if p.isClosed() {
		return ErrClosed
	}
	p.pool = nil
	return nil
}

func (p *Pool) isClosed() bool {
	return p.pool == nil
}
