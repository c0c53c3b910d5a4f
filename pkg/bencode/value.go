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

// Package bencode implements encoding and decoding of the bencode format
// used by the BitTorrent metainfo wire format.
//
// Values are represented as a tagged sum (Value) rather than only through
// reflection: callers that need the exact byte span a nested value occupied
// in the source (to compute an info-hash, for example) can ask ParseValue
// for it directly, something a pure struct-tag unmarshaler cannot offer.
package bencode

import (
	"fmt"
	"sort"
)

// Kind identifies which of the four bencode token types a Value holds.
type Kind int

const (
	KindInt Kind = iota
	KindBytes
	KindList
	KindDict
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindBytes:
		return "bytes"
	case KindList:
		return "list"
	case KindDict:
		return "dict"
	default:
		return "invalid"
	}
}

// Value is a decoded bencode value of any of the four token kinds. Only the
// field matching Kind is meaningful.
type Value struct {
	Kind  Kind
	Int   int64
	Bytes []byte
	List  []Value
	Dict  map[string]Value

	// Start and End are the byte offsets, in the buffer ParseValue was
	// called with, spanned by this value. They let callers recover the
	// exact source bytes a value was decoded from without re-encoding it.
	Start, End int
}

// DictKeys returns the keys of a KindDict value's map in a deterministic,
// ascending order. Decode accepts dictionaries with keys in any order, but
// callers that want to inspect one consistently should iterate via this.
func (v Value) DictKeys() []string {
	if v.Kind != KindDict {
		return nil
	}
	keys := make([]string, 0, len(v.Dict))
	for k := range v.Dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value stored under key in a KindDict value.
func (v Value) Get(key string) (Value, bool) {
	if v.Kind != KindDict {
		return Value{}, false
	}
	val, ok := v.Dict[key]
	return val, ok
}

// String returns the string form of a KindBytes value.
func (v Value) String() string {
	if v.Kind != KindBytes {
		return fmt.Sprintf("<%s value>", v.Kind)
	}
	return string(v.Bytes)
}
