package proc

import (
	"encoding/binary"
	"math"
)

// The fixed-width codecs below are the Go equivalent of mercury_proc.c's
// HG_PROC_TYPE macro instantiations (hg_proc_hg_uint8_t, hg_proc_hg_int64_t,
// ...): one function per scalar type, each reserving its width through
// Memcpy so that growth, checksumming, and the Free no-op are handled in
// exactly one place. Wire order is little-endian, matching block.go's own
// binary.LittleEndian usage for fixed-width fields.

// Uint8 encodes, decodes, or frees (no-op) a uint8 at *v.
func Uint8(p *Processor, v *uint8) error {
	buf := [1]byte{}
	if p.op == Encode {
		buf[0] = *v
	}
	if err := p.Memcpy(buf[:]); err != nil {
		return err
	}
	if p.op == Decode {
		*v = buf[0]
	}
	return nil
}

// Int8 encodes, decodes, or frees (no-op) an int8 at *v.
func Int8(p *Processor, v *int8) error {
	var u uint8
	if p.op == Encode {
		u = uint8(*v)
	}
	if err := Uint8(p, &u); err != nil {
		return err
	}
	if p.op == Decode {
		*v = int8(u)
	}
	return nil
}

// Bool encodes, decodes, or frees (no-op) a bool at *v, as a single byte
// (0 or 1).
func Bool(p *Processor, v *bool) error {
	var u uint8
	if p.op == Encode && *v {
		u = 1
	}
	if err := Uint8(p, &u); err != nil {
		return err
	}
	if p.op == Decode {
		*v = u != 0
	}
	return nil
}

// Uint16 encodes, decodes, or frees (no-op) a uint16 at *v.
func Uint16(p *Processor, v *uint16) error {
	buf := make([]byte, 2)
	if p.op == Encode {
		binary.LittleEndian.PutUint16(buf, *v)
	}
	if err := p.Memcpy(buf); err != nil {
		return err
	}
	if p.op == Decode {
		*v = binary.LittleEndian.Uint16(buf)
	}
	return nil
}

// Int16 encodes, decodes, or frees (no-op) an int16 at *v.
func Int16(p *Processor, v *int16) error {
	var u uint16
	if p.op == Encode {
		u = uint16(*v)
	}
	if err := Uint16(p, &u); err != nil {
		return err
	}
	if p.op == Decode {
		*v = int16(u)
	}
	return nil
}

// Uint32 encodes, decodes, or frees (no-op) a uint32 at *v.
func Uint32(p *Processor, v *uint32) error {
	buf := make([]byte, 4)
	if p.op == Encode {
		binary.LittleEndian.PutUint32(buf, *v)
	}
	if err := p.Memcpy(buf); err != nil {
		return err
	}
	if p.op == Decode {
		*v = binary.LittleEndian.Uint32(buf)
	}
	return nil
}

// Int32 encodes, decodes, or frees (no-op) an int32 at *v.
func Int32(p *Processor, v *int32) error {
	var u uint32
	if p.op == Encode {
		u = uint32(*v)
	}
	if err := Uint32(p, &u); err != nil {
		return err
	}
	if p.op == Decode {
		*v = int32(u)
	}
	return nil
}

// Uint64 encodes, decodes, or frees (no-op) a uint64 at *v.
func Uint64(p *Processor, v *uint64) error {
	buf := make([]byte, 8)
	if p.op == Encode {
		binary.LittleEndian.PutUint64(buf, *v)
	}
	if err := p.Memcpy(buf); err != nil {
		return err
	}
	if p.op == Decode {
		*v = binary.LittleEndian.Uint64(buf)
	}
	return nil
}

// Int64 encodes, decodes, or frees (no-op) an int64 at *v.
func Int64(p *Processor, v *int64) error {
	var u uint64
	if p.op == Encode {
		u = uint64(*v)
	}
	if err := Uint64(p, &u); err != nil {
		return err
	}
	if p.op == Decode {
		*v = int64(u)
	}
	return nil
}

// Float32 encodes, decodes, or frees (no-op) a float32 at *v, via its
// IEEE-754 bit pattern.
func Float32(p *Processor, v *float32) error {
	var u uint32
	if p.op == Encode {
		u = math.Float32bits(*v)
	}
	if err := Uint32(p, &u); err != nil {
		return err
	}
	if p.op == Decode {
		*v = math.Float32frombits(u)
	}
	return nil
}

// Float64 encodes, decodes, or frees (no-op) a float64 at *v, via its
// IEEE-754 bit pattern.
func Float64(p *Processor, v *float64) error {
	var u uint64
	if p.op == Encode {
		u = math.Float64bits(*v)
	}
	if err := Uint64(p, &u); err != nil {
		return err
	}
	if p.op == Decode {
		*v = math.Float64frombits(u)
	}
	return nil
}
