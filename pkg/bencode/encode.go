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
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// UnsupportedTypeError is returned by Marshal when asked to encode a value
// of a type with no bencode representation (float, chan, func, complex).
type UnsupportedTypeError struct {
	Type reflect.Type
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("bencode: unsupported type: %s", e.Type)
}

// Marshal returns the canonical bencode encoding of v: dictionary keys are
// always written in ascending byte order, regardless of map iteration order
// or struct field declaration order, since that ordering is part of what
// makes a bencode encoding canonical.
func Marshal(v any) ([]byte, error) {
	val, err := toValue(reflect.ValueOf(v))
	if err != nil {
		return nil, err
	}
	var b strings.Builder
	encodeValue(&b, val)
	return []byte(b.String()), nil
}

// EncodeValue writes the canonical bencode encoding of an already-decoded
// Value tree.
func EncodeValue(v Value) []byte {
	var b strings.Builder
	encodeValue(&b, v)
	return []byte(b.String())
}

func encodeValue(b *strings.Builder, v Value) {
	switch v.Kind {
	case KindInt:
		b.WriteByte('i')
		b.WriteString(strconv.FormatInt(v.Int, 10))
		b.WriteByte('e')
	case KindBytes:
		b.WriteString(strconv.Itoa(len(v.Bytes)))
		b.WriteByte(':')
		b.Write(v.Bytes)
	case KindList:
		b.WriteByte('l')
		for _, item := range v.List {
			encodeValue(b, item)
		}
		b.WriteByte('e')
	case KindDict:
		b.WriteByte('d')
		keys := make([]string, 0, len(v.Dict))
		for k := range v.Dict {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			encodeValue(b, Value{Kind: KindBytes, Bytes: []byte(k)})
			encodeValue(b, v.Dict[k])
		}
		b.WriteByte('e')
	}
}

// toValue converts an arbitrary Go value into a Value tree using the same
// "bencode" struct tag convention Unmarshal reads, honoring an "omitempty"
// tag option by skipping zero-valued fields entirely.
func toValue(rv reflect.Value) (Value, error) {
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return Value{}, fmt.Errorf("bencode: cannot marshal nil %s", rv.Type())
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.String:
		return Value{Kind: KindBytes, Bytes: []byte(rv.String())}, nil

	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return Value{Kind: KindBytes, Bytes: append([]byte(nil), rv.Bytes()...)}, nil
		}
		list := make([]Value, 0, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			item, err := toValue(rv.Index(i))
			if err != nil {
				return Value{}, err
			}
			list = append(list, item)
		}
		return Value{Kind: KindList, List: list}, nil

	case reflect.Map:
		dict := make(map[string]Value, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			item, err := toValue(iter.Value())
			if err != nil {
				return Value{}, err
			}
			dict[fmt.Sprint(iter.Key().Interface())] = item
		}
		return Value{Kind: KindDict, Dict: dict}, nil

	case reflect.Struct:
		sf := fields(rv)
		dict := make(map[string]Value, len(sf.fields))
		for _, f := range sf.fields {
			fv := rv.FieldByIndex(f.index)
			if f.contains("omitempty") && isEmpty(fv) {
				continue
			}
			item, err := toValue(fv)
			if err != nil {
				return Value{}, err
			}
			dict[f.name] = item
		}
		return Value{Kind: KindDict, Dict: dict}, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Value{Kind: KindInt, Int: rv.Int()}, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Value{Kind: KindInt, Int: int64(rv.Uint())}, nil

	case reflect.Bool:
		if rv.Bool() {
			return Value{Kind: KindInt, Int: 1}, nil
		}
		return Value{Kind: KindInt, Int: 0}, nil

	default:
		return Value{}, &UnsupportedTypeError{rv.Type()}
	}
}

// isEmpty reports whether v holds its type's zero value, mirroring
// encoding/json's omitempty semantics closely enough for metainfo structs.
func isEmpty(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Map, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint() == 0
	case reflect.Ptr, reflect.Interface:
		return v.IsNil()
	default:
		return false
	}
}
