// Package proc implements the Processor: a buffer-backed traversal engine
// that encodes, decodes, or frees application values over a contiguous
// byte region, with optional end-to-end checksumming and transparent
// overflow into a secondary, engine-allocated buffer.
//
// It is the Go port of the Mercury RPC library's hg_proc engine
// (mercury_proc.c), built in the idiom of pebble's record/sstable-block
// packages: explicit cursor/remaining bookkeeping over a byte slice, a
// closed set of tagged operation modes instead of virtual dispatch, and a
// single shared checksum state rather than one per segment (see
// DESIGN.md).
package proc

import (
	"os"

	"github.com/TaihuLight/mercury/checksum"
	"github.com/TaihuLight/mercury/class"
	"github.com/TaihuLight/mercury/logging"
)

// Op is the Processor's operation mode for one traversal.
type Op int

const (
	// opUnset is the zero value before the first Reset.
	opUnset Op = iota
	// Encode serializes values from the caller into the buffer.
	Encode
	// Decode deserializes values from the buffer into the caller.
	Decode
	// Free walks the same traversal as Encode/Decode but only to release
	// any heap-allocated sub-objects; it never touches buffer bytes.
	Free
)

func (op Op) String() string {
	switch op {
	case Encode:
		return "encode"
	case Decode:
		return "decode"
	case Free:
		return "free"
	default:
		return "unset"
	}
}

func (op Op) valid() bool {
	return op == Encode || op == Decode || op == Free
}

// Options configures a Processor beyond its class and checksum algorithm.
type Options struct {
	// Logger receives diagnostic traces of buffer growth and checksum
	// failures. If nil, logging.Default() is used.
	Logger *logging.Logger
}

// Processor coordinates one traversal of a value in Encode, Decode, or Free
// mode over a backing byte region. It is not safe for concurrent use —
// callers provide their own exclusion, per spec.md §5.
type Processor struct {
	class class.Class
	op    Op

	primary *segment
	spill   *segment
	active  *segment

	state *checksum.State

	logger   *logging.Logger
	pageSize int
}

// Create returns a new Processor bound to cls, with checksumming
// configured per algo (checksum.None disables it). The operation mode is
// unset until Reset is called.
func Create(cls class.Class, algo checksum.Algorithm, opts *Options) (*Processor, error) {
	if cls == nil {
		return nil, newError(InvalidParam, "create", nil, "nil class handle")
	}

	state, err := checksum.NewState(algo)
	if err != nil {
		return nil, newError(ChecksumError, "create", err, "checksum init failed")
	}

	logger := logging.Default()
	if opts != nil && opts.Logger != nil {
		logger = opts.Logger
	}

	return &Processor{
		class:    cls,
		op:       opUnset,
		state:    state,
		logger:   logger,
		pageSize: os.Getpagesize(),
	}, nil
}

// CreateSet is Create followed immediately by Reset, for the common case
// of a Processor used for exactly one message.
func CreateSet(cls class.Class, buf []byte, op Op, algo checksum.Algorithm, opts *Options) (*Processor, error) {
	p, err := Create(cls, algo, opts)
	if err != nil {
		return nil, err
	}
	if err := p.Reset(buf, op); err != nil {
		return nil, err
	}
	return p, nil
}

// Reset prepares the Processor for one traversal over buf in mode op. buf
// may be nil only when op is Free. Reset may be called repeatedly to
// reuse a Processor across messages; calling it twice with identical
// arguments produces identical observable state.
func (p *Processor) Reset(buf []byte, op Op) error {
	if buf == nil && op != Free {
		return newError(InvalidParam, "reset", nil, "nil buffer for non-Free operation")
	}
	if !op.valid() {
		return newError(InvalidParam, "reset", nil, "unknown operation mode")
	}

	p.op = op
	p.primary = newSegment(buf, false)
	// The prior spill, if any, is simply dropped: Go's GC reclaims it
	// unless the caller took ownership via SetExtraBufIsMine and is still
	// holding the slice it extracted with GetExtraBuf.
	p.spill = nil
	p.active = p.primary
	p.state.Reset()

	return nil
}

// Destroy releases Processor-owned resources. Safe to call on a nil
// Processor (no-op). The caller-supplied primary buffer is never touched.
func (p *Processor) Destroy() {
	if p == nil {
		return
	}
	p.state.Destroy()
	p.primary = nil
	p.spill = nil
	p.active = nil
}

// GetClass returns the RPC class this Processor was created with.
func (p *Processor) GetClass() class.Class { return p.class }

// GetOp returns the current operation mode.
func (p *Processor) GetOp() Op { return p.op }

// HasChecksum reports whether a checksum algorithm is configured.
func (p *Processor) HasChecksum() bool { return p.state.Active() }

// totalCapacity returns primary.cap + spill.cap (0 for an absent spill).
func (p *Processor) totalCapacity() int {
	total := p.primary.cap()
	if p.spill != nil {
		total += p.spill.cap()
	}
	return total
}

// GetSize returns the total capacity across both segments.
func (p *Processor) GetSize() int { return p.totalCapacity() }

// GetSizeUsed returns the number of bytes written/read so far:
// primary.capacity + spill.capacity - spill.remaining once a spill
// exists, matching hg_proc_get_size_used exactly (proc_buf.size +
// extra_buf.size - extra_buf.size_left).
func (p *Processor) GetSizeUsed() int {
	if p.spill != nil {
		return p.primary.cap() + p.spill.cap() - p.spill.remaining
	}
	return p.primary.cursor
}

// GetSizeLeft returns the remaining capacity of the currently active
// segment.
func (p *Processor) GetSizeLeft() int { return p.active.remaining }

// SetSize is the growth primitive. It rounds requested up to the next
// multiple of the OS page size and either allocates the spill segment (on
// first overflow) or reallocates it (on subsequent overflow), copying the
// already-written prefix across. It never mutates the primary segment.
func (p *Processor) SetSize(requested int) error {
	newSize := (requested/p.pageSize + 1) * p.pageSize
	total := p.totalCapacity()
	if newSize <= total {
		return newError(SizeError, "set_size", nil, "requested size does not exceed current total capacity")
	}

	if p.spill == nil {
		pos := p.primary.cursor
		newBuf := make([]byte, newSize)
		copy(newBuf, p.primary.buf[:pos])
		p.spill = &segment{buf: newBuf, cursor: pos, remaining: newSize - pos, owned: true}
		p.active = p.spill
		p.logger.Debug("proc: overflow into spill segment", "from", total, "to", newSize)
		return nil
	}

	pos := p.spill.cursor
	newBuf := make([]byte, newSize)
	copy(newBuf, p.spill.buf[:pos])
	p.spill.buf = newBuf
	p.spill.remaining = newSize - pos
	p.logger.Debug("proc: grew spill segment", "from", total, "to", newSize)
	return nil
}

// SavePointer reserves n contiguous bytes at the active segment's cursor,
// growing the buffer first if necessary, and returns them for in-place
// write (Encode) or read (Decode). The returned slice is invalidated by
// the next growth event on this segment — see spec.md §5 "Aliasing".
//
// Codecs that write through the returned slice rather than through
// Memcpy/Raw must call RestorePointer on the same bytes afterward so the
// running checksum observes them.
func (p *Processor) SavePointer(n int) ([]byte, error) {
	if n > 0 && p.active.remaining < n {
		if err := p.SetSize(p.totalCapacity() + n); err != nil {
			return nil, err
		}
	}
	ptr := p.active.slice(n)
	p.active.advance(n)
	return ptr, nil
}

// RestorePointer feeds data — bytes previously obtained and written
// through SavePointer — into the running checksum. It is a no-op when no
// checksum is configured or updates are currently disabled (post-Flush).
func (p *Processor) RestorePointer(data []byte) error {
	p.state.Update(data)
	return nil
}

// GetExtraBuf returns the spill segment's backing buffer, or nil if no
// overflow has occurred yet.
func (p *Processor) GetExtraBuf() []byte {
	if p.spill == nil {
		return nil
	}
	return p.spill.buf
}

// GetExtraSize returns the spill segment's total capacity, or 0 if no
// overflow has occurred yet.
func (p *Processor) GetExtraSize() int {
	if p.spill == nil {
		return 0
	}
	return p.spill.cap()
}

// SetExtraBufIsMine inverts the spill segment's ownership: pass
// theirs=true after the caller has extracted the spill buffer via
// GetExtraBuf/GetExtraSize and intends to manage its lifetime itself, so
// that a subsequent Reset/Destroy does not also consider it
// engine-owned. Returns InvalidParam if there is no spill.
func (p *Processor) SetExtraBufIsMine(theirs bool) error {
	if p.spill == nil {
		return newError(InvalidParam, "set_extra_buf_is_mine", nil, "no spill segment allocated")
	}
	p.spill.owned = !theirs
	return nil
}

// Memcpy moves n=len(data) bytes between the active segment and data,
// direction implied by the current Op: Encode copies data into the
// buffer, Decode copies the buffer into data. In Free mode it returns
// immediately without touching any buffer — Free-mode traversal only
// exists to let per-type codecs release owned sub-objects. After the
// move, the running checksum is updated over the same bytes, iff
// checksumming is configured and currently enabled.
func (p *Processor) Memcpy(data []byte) error {
	if p.op == Free {
		return nil
	}

	n := len(data)
	if p.active.remaining < n {
		if err := p.SetSize(p.totalCapacity() + n); err != nil {
			return err
		}
	}

	dst := p.active.slice(n)
	switch p.op {
	case Encode:
		copy(dst, data)
	case Decode:
		copy(data, dst)
	}
	p.active.advance(n)

	p.state.Update(data)
	return nil
}

// Raw is Memcpy specialized for byte sequences. In this port the two are
// the same operation — a Go []byte already is "a sequence of bytes" with
// no separate typed-scalar overload to distinguish it from — so Raw is
// kept only as a named alias for call-site fidelity with the per-type
// codec contract in spec.md §4.3.
func (p *Processor) Raw(data []byte) error { return p.Memcpy(data) }

// Flush is the terminal step of a traversal: on Encode it finalizes and
// appends the running checksum; on Decode it reads the trailing digest
// and compares it against the recomputed value, returning ChecksumError
// on mismatch; on Free, and whenever no checksum is configured, it is a
// no-op.
//
// Flush may only be called once per Reset cycle. A second call observes
// that updates are already disabled and succeeds silently — this is
// documented idempotent behavior carried over from the original source
// (spec.md §9), not an oversight; callers should still not rely on it.
func (p *Processor) Flush() error {
	if p.op == Free || !p.state.Active() || !p.state.UpdateEnabled() {
		return nil
	}

	p.state.DisableUpdates()

	switch p.op {
	case Encode:
		digest := p.state.Finalize()
		return p.Memcpy(digest)
	case Decode:
		digest := make([]byte, p.state.Size())
		if err := p.Memcpy(digest); err != nil {
			return err
		}
		verify := p.state.FinalizeVerify()
		if !bytesEqual(digest, verify) {
			p.logger.Warn("proc: checksum mismatch on flush")
			return newError(ChecksumError, "flush", nil, "checksum mismatch")
		}
	}
	return nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
