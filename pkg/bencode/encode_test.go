package bencode_test

import (
	"testing"

	"github.com/raklaptudirm/tormake/pkg/bencode"
)

type info struct {
	Files   []string `bencode:"files,omitempty"`
	Length  int64    `bencode:"length,omitempty"`
	Name    string   `bencode:"name"`
	Private bool     `bencode:"private,omitempty"`
}

func TestMarshalCanonicalOrder(t *testing.T) {
	out, err := bencode.Marshal(info{Name: "x", Length: 5})
	if err != nil {
		t.Fatal(err)
	}
	want := "d6:lengthi5e4:name1:xe"
	if string(out) != want {
		t.Errorf("Marshal: got %q, want %q", out, want)
	}
}

func TestMarshalPrivateOmittedWhenFalse(t *testing.T) {
	out, err := bencode.Marshal(info{Name: "x", Private: false})
	if err != nil {
		t.Fatal(err)
	}
	if want := "d4:name1:xe"; string(out) != want {
		t.Errorf("Marshal: got %q, want %q (private must be omitted when false)", out, want)
	}

	out, err = bencode.Marshal(info{Name: "x", Private: true})
	if err != nil {
		t.Fatal(err)
	}
	if want := "d4:name1:x7:privatei1ee"; string(out) != want {
		t.Errorf("Marshal: got %q, want %q", out, want)
	}
}

func TestRoundTrip(t *testing.T) {
	in := "d3:bar4:spam3:fooi42ee"
	v, _, err := bencode.ParseValue([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	out := bencode.EncodeValue(v)
	if string(out) != in {
		t.Errorf("round trip: got %q, want %q (encode must sort keys ascending)", out, in)
	}
}

func TestDecodeAcceptsUnorderedKeys(t *testing.T) {
	// "foo" < "bar" in encounter order here, which is not canonical, but
	// decode must still accept it: only Marshal enforces ordering.
	in := "d3:fooi1e3:bari2ee"
	v, _, err := bencode.ParseValue([]byte(in))
	if err != nil {
		t.Fatalf("ParseValue rejected non-canonical key order: %v", err)
	}
	if v.Dict["foo"].Int != 1 || v.Dict["bar"].Int != 2 {
		t.Errorf("ParseValue: unexpected values %#v", v.Dict)
	}
}

func TestParseValueSpan(t *testing.T) {
	in := "d4:infod4:name3:cate3:fooi1ee"
	v, _, err := bencode.ParseValue([]byte(in))
	if err != nil {
		t.Fatal(err)
	}
	info, ok := v.Get("info")
	if !ok {
		t.Fatal("missing info key")
	}
	span := in[info.Start:info.End]
	if want := "d4:name3:cate"; span != want {
		t.Errorf("info span: got %q, want %q", span, want)
	}
}
