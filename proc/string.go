package proc

// StringObject is the Go port of hg_string_object_t: a decoded string
// together with the ownership bits the wire format carries alongside it,
// per mercury_proc_string.h.
type StringObject struct {
	// Data holds the string bytes, NOT including the trailing NUL that is
	// present only on the wire.
	Data []byte
	// IsConst marks a string that must not be mutated in place (decode-side
	// informational only; this port never mutates Data in place either
	// way).
	IsConst bool
	// IsOwned marks a string whose Data this StringObject is responsible
	// for releasing. Go's GC means there is nothing to explicitly release,
	// but the flag still gates the double-free guard in
	// StringObjectCodec's Free mode, matching the original's behavior.
	IsOwned bool
}

// StringObjectCodec implements the three-mode traversal for a
// StringObject, exactly as hg_proc_hg_string_object_t does: the wire
// representation is a u64 length (the string's byte length plus one for
// the trailing NUL), the raw bytes plus a NUL terminator, an is_const u8,
// and an is_owned u8 — in that order.
func StringObjectCodec(p *Processor, obj *StringObject) error {
	switch p.op {
	case Free:
		if !obj.IsOwned {
			return nil
		}
		if obj.Data == nil {
			// Second Free of the same object: the first Free already
			// cleared Data below, so this is a double-free attempt.
			return newError(Fail, "string_object_codec", nil, "double free of owned string object")
		}
		obj.Data = nil
		return nil

	case Encode:
		wireLen := uint64(len(obj.Data) + 1)
		if err := Uint64(p, &wireLen); err != nil {
			return err
		}
		if err := p.Raw(obj.Data); err != nil {
			return err
		}
		if err := p.Raw([]byte{0}); err != nil {
			return err
		}
		isConst := boolToU8(obj.IsConst)
		if err := Uint8(p, &isConst); err != nil {
			return err
		}
		isOwned := boolToU8(obj.IsOwned)
		return Uint8(p, &isOwned)

	case Decode:
		var wireLen uint64
		if err := Uint64(p, &wireLen); err != nil {
			return err
		}
		if wireLen == 0 {
			return newError(SizeError, "string_object_codec", nil, "zero-length wire string has no NUL terminator")
		}
		buf := make([]byte, wireLen)
		if err := p.Raw(buf); err != nil {
			return err
		}
		obj.Data = buf[:wireLen-1]

		var isConst, isOwned uint8
		if err := Uint8(p, &isConst); err != nil {
			return err
		}
		if err := Uint8(p, &isOwned); err != nil {
			return err
		}
		obj.IsConst = isConst != 0
		// A decoded string is always owned by its StringObject regardless
		// of the wire byte: the bytes just came from a fresh buf this
		// Decode call allocated, and something must be responsible for
		// them. See SPEC_FULL.md §9 (Open Question: decoded ownership).
		obj.IsOwned = true
		return nil

	default:
		return nil
	}
}

func boolToU8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}

// ConstString encodes, decodes, or frees a *string through a transient
// StringObject. On Encode it writes is_const=false and is_owned=false,
// matching the wire bytes spec.md's scenario S4 shows for a const string
// (mercury_string_object's const-char initializer never actually flips
// the wire is_const bit on encode). On Free it wraps the caller pointer
// with is_owned=true and is_const=true, and runs the inner Free, exactly
// like the mutable-string wrapper except for is_const — Free always
// owns, per mercury_proc_string.h's HG_FREE cases for both
// hg_proc_hg_const_string_t and hg_proc_hg_string_t, which differ only in
// is_const. A successful Free sets *v to the empty string; a Free of an
// empty *v (including a second Free of the same variable) returns Fail.
func ConstString(p *Processor, v *string) error {
	return stringCodec(p, v, true)
}

// String encodes, decodes, or frees a *string through a transient
// StringObject. See ConstString for the shared Encode/Free behavior; the
// two wrappers differ only in is_const on Free.
func String(p *Processor, v *string) error {
	return stringCodec(p, v, false)
}

func stringCodec(p *Processor, v *string, isConst bool) error {
	obj := &StringObject{}
	switch p.op {
	case Encode:
		obj.Data = []byte(*v)
	case Free:
		obj.IsConst = isConst
		obj.IsOwned = true
		// An empty *v is what a previous Free leaves behind, so it is
		// passed on as absent data and reaches the double-free guard.
		if *v != "" {
			obj.Data = []byte(*v)
		}
	}

	if err := StringObjectCodec(p, obj); err != nil {
		return err
	}

	if p.op == Decode {
		*v = string(obj.Data)
	}
	if p.op == Free {
		*v = ""
	}
	return nil
}

// Bytes encodes, decodes, or frees (no-op) a length-prefixed raw byte
// slice at *v: a u64 length followed by the raw bytes, with no NUL
// terminator and no ownership bits. This is a supplemental codec beyond
// the string-object wire format above, for payloads that are not
// NUL-terminated text — see SPEC_FULL.md §6.
func Bytes(p *Processor, v *[]byte) error {
	if p.op == Free {
		return nil
	}

	n := uint64(len(*v))
	if err := Uint64(p, &n); err != nil {
		return err
	}

	if p.op == Decode {
		*v = make([]byte, n)
	}
	return p.Raw(*v)
}
