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

package bencode

import (
	"reflect"
	"strings"
)

// field stores the data needed about a single struct field to marshal or
// unmarshal it: its index path within the struct and its "bencode" tag
// name/options.
type field struct {
	index []int // index in struct, for reflect.Value.FieldByIndex

	name    string // bencode dictionary key
	options string // remaining tag options, e.g. "omitempty"
}

// contains checks whether the field's tag carries the given option.
func (f *field) contains(target string) bool {
	rest := f.options
	for {
		option, remainder, _ := strings.Cut(rest, ",")
		if option == target {
			return true
		}
		if remainder == "" {
			return false
		}
		rest = remainder
	}
}

// parseField parses a reflect.StructField's "bencode" tag into a field.
// The second return value is false if the field should be skipped
// entirely (tag is exactly "-").
func parseField(f reflect.StructField) (field, bool) {
	tag := f.Tag.Get("bencode")
	if tag == "-" {
		return field{}, false
	}

	// `bencode:"name,option1,option2"`; an empty name falls back to the
	// Go field name.
	name, options, _ := strings.Cut(tag, ",")
	if name == "" {
		name = f.Name
	}

	return field{index: f.Index, name: name, options: options}, true
}

// structFields is the flattened set of a struct type's encodable fields,
// in declaration order. Marshal sorts by name itself when emitting (see
// encode.go); this type does not pre-sort, since Unmarshal has no use for
// a sorted view and only needs a name to match against decoded dict keys.
type structFields struct {
	fields []field
}

// fields collects the encodable fields of a struct-kind reflect.Value.
func fields(v reflect.Value) *structFields {
	if v.Kind() != reflect.Struct {
		panic("bencode: fields() called on non-struct value")
	}

	s := &structFields{}
	n := v.NumField()
	for i := 0; i < n; i++ {
		f, ok := parseField(v.Type().Field(i))
		if !ok {
			continue
		}
		s.fields = append(s.fields, f)
	}
	return s
}
