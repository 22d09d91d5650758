package proc

import (
	"testing"

	"github.com/TaihuLight/mercury/checksum"
)

func TestStringRoundTrip(t *testing.T) {
	buf := make([]byte, 128)
	p, err := CreateSet(testClass(), buf, Encode, checksum.None, nil)
	if err != nil {
		t.Fatal(err)
	}
	s := "hello mercury"
	if err := String(p, &s); err != nil {
		t.Fatal(err)
	}
	used := p.GetSizeUsed()

	if err := p.Reset(buf, Decode); err != nil {
		t.Fatal(err)
	}
	var got string
	if err := String(p, &got); err != nil {
		t.Fatal(err)
	}
	if got != s {
		t.Fatalf("decoded %q, want %q", got, s)
	}
	if p.GetSizeUsed() != used {
		t.Fatalf("decode consumed %d bytes, encode wrote %d", p.GetSizeUsed(), used)
	}
}

func TestStringEmptyRoundTrip(t *testing.T) {
	buf := make([]byte, 32)
	p, err := CreateSet(testClass(), buf, Encode, checksum.None, nil)
	if err != nil {
		t.Fatal(err)
	}
	s := ""
	if err := String(p, &s); err != nil {
		t.Fatal(err)
	}

	if err := p.Reset(buf, Decode); err != nil {
		t.Fatal(err)
	}
	var got string
	if err := String(p, &got); err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Fatalf("decoded %q, want empty string", got)
	}
}

// TestConstStringAndStringEncodeIdentically exercises the wire-format
// equivalence: neither wrapper has a way to mark a Go string const, so
// both must produce identical bytes on Encode.
func TestConstStringAndStringEncodeIdentically(t *testing.T) {
	s := "identical wire bytes"

	bufA := make([]byte, 64)
	pa, err := CreateSet(testClass(), bufA, Encode, checksum.None, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := ConstString(pa, &s); err != nil {
		t.Fatal(err)
	}

	bufB := make([]byte, 64)
	pb, err := CreateSet(testClass(), bufB, Encode, checksum.None, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := String(pb, &s); err != nil {
		t.Fatal(err)
	}

	usedA := pa.GetSizeUsed()
	usedB := pb.GetSizeUsed()
	if usedA != usedB {
		t.Fatalf("ConstString wrote %d bytes, String wrote %d", usedA, usedB)
	}
	for i := 0; i < usedA; i++ {
		if bufA[i] != bufB[i] {
			t.Fatalf("byte %d differs: ConstString=%x String=%x", i, bufA[i], bufB[i])
		}
	}
}

func TestDecodedStringObjectIsAlwaysOwned(t *testing.T) {
	buf := make([]byte, 64)
	p, err := CreateSet(testClass(), buf, Encode, checksum.None, nil)
	if err != nil {
		t.Fatal(err)
	}
	obj := &StringObject{Data: []byte("owned on decode"), IsOwned: false}
	if err := StringObjectCodec(p, obj); err != nil {
		t.Fatal(err)
	}

	if err := p.Reset(buf, Decode); err != nil {
		t.Fatal(err)
	}
	decoded := &StringObject{}
	if err := StringObjectCodec(p, decoded); err != nil {
		t.Fatal(err)
	}
	if !decoded.IsOwned {
		t.Fatal("decoded StringObject must always be owned")
	}
}

// TestStringObjectDoubleFreeIsRejected exercises the double-free guard: a
// second Free of an owned StringObject whose Data was already cleared
// must fail, rather than silently succeeding.
func TestStringObjectDoubleFreeIsRejected(t *testing.T) {
	p, err := CreateSet(testClass(), nil, Free, checksum.None, nil)
	if err != nil {
		t.Fatal(err)
	}
	obj := &StringObject{Data: []byte("owned"), IsOwned: true}

	if err := StringObjectCodec(p, obj); err != nil {
		t.Fatalf("first free should succeed: %v", err)
	}
	if obj.Data != nil {
		t.Fatal("first free should have cleared Data")
	}

	err = StringObjectCodec(p, obj)
	if !IsKind(err, Fail) {
		t.Fatalf("second free = %v, want Fail", err)
	}
}

func TestStringObjectFreeNoOpWhenNotOwned(t *testing.T) {
	p, err := CreateSet(testClass(), nil, Free, checksum.None, nil)
	if err != nil {
		t.Fatal(err)
	}
	obj := &StringObject{Data: []byte("borrowed"), IsOwned: false}
	if err := StringObjectCodec(p, obj); err != nil {
		t.Fatal(err)
	}
	if obj.Data == nil {
		t.Fatal("Free of a non-owned StringObject must not clear Data")
	}
}

// TestConstStringAndStringDoubleFreeIsRejected is scenario S6 driven
// through the ConstString/String wrappers rather than StringObjectCodec
// directly: both wrappers must set is_owned=true on Free so the
// double-free guard is actually reachable, not bypassed.
func TestConstStringAndStringDoubleFreeIsRejected(t *testing.T) {
	for _, tt := range []struct {
		name string
		free func(p *Processor, v *string) error
	}{
		{"ConstString", ConstString},
		{"String", String},
	} {
		t.Run(tt.name, func(t *testing.T) {
			p, err := CreateSet(testClass(), nil, Free, checksum.None, nil)
			if err != nil {
				t.Fatal(err)
			}
			s := "owned by the wrapper"

			if err := tt.free(p, &s); err != nil {
				t.Fatalf("first free should succeed: %v", err)
			}

			err = tt.free(p, &s)
			if !IsKind(err, Fail) {
				t.Fatalf("second free = %v, want Fail", err)
			}
		})
	}
}

// TestStringObjectEncodeWireLayout is scenario S4: Encode hg_const_string_t
// = "world" and check the exact wire bytes, including the length-includes-
// terminator convention, the NUL, and the always-false is_const/is_owned
// bytes on encode.
func TestStringObjectEncodeWireLayout(t *testing.T) {
	buf := make([]byte, 32)
	p, err := CreateSet(testClass(), buf, Encode, checksum.None, nil)
	if err != nil {
		t.Fatal(err)
	}
	s := "world"
	if err := ConstString(p, &s); err != nil {
		t.Fatal(err)
	}

	want := []byte{
		0x06, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // length = 5 + 1
		'w', 'o', 'r', 'l', 'd', 0x00, // bytes + NUL terminator
		0x00, // is_const
		0x00, // is_owned
	}
	got := buf[:p.GetSizeUsed()]
	if len(got) != len(want) {
		t.Fatalf("wire length = %d, want %d (%x)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = 0x%02X, want 0x%02X (full: %x)", i, got[i], want[i], got)
		}
	}

	if err := p.Reset(buf, Decode); err != nil {
		t.Fatal(err)
	}
	var decoded string
	if err := ConstString(p, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded != "world" {
		t.Fatalf("decoded %q, want %q", decoded, "world")
	}
}

func TestBytesRoundTrip(t *testing.T) {
	buf := make([]byte, 64)
	p, err := CreateSet(testClass(), buf, Encode, checksum.None, nil)
	if err != nil {
		t.Fatal(err)
	}
	payload := []byte{0x00, 0x01, 0xFF, 0x10, 0x00}
	if err := Bytes(p, &payload); err != nil {
		t.Fatal(err)
	}

	if err := p.Reset(buf, Decode); err != nil {
		t.Fatal(err)
	}
	var got []byte
	if err := Bytes(p, &got); err != nil {
		t.Fatal(err)
	}
	if len(got) != len(payload) {
		t.Fatalf("decoded %d bytes, want %d", len(got), len(payload))
	}
	for i := range payload {
		if got[i] != payload[i] {
			t.Fatalf("byte %d: got %x, want %x", i, got[i], payload[i])
		}
	}
}
