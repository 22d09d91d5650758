// Package checksum models the external checksum primitive that a Processor
// delegates to: something with init/update/finalize/reset semantics,
// exposed through the standard library's hash.Hash interface so that every
// backend — stdlib CRC, or the pack's own xxhash — plugs in without an
// adapter layer of its own.
//
// This mirrors sstable/block.go's ChecksumType/Checksummer pair: an enum
// naming the algorithm, and a small piece of state that knows how to
// produce a digest for whichever algorithm was selected.
package checksum

import (
	"hash"
	"hash/crc32"
	"hash/crc64"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
)

// Algorithm identifies a checksum backend. The zero value, None, disables
// checksumming entirely.
type Algorithm int

const (
	None Algorithm = iota
	CRC16
	CRC32C
	CRC64
	// XXHash64 is a supplemental backend beyond the spec's CRC16/32C/64
	// trio, grounded directly on sstable/block.go's ChecksumTypeXXHash64.
	XXHash64
)

// String implements fmt.Stringer.
func (a Algorithm) String() string {
	switch a {
	case None:
		return "none"
	case CRC16:
		return "crc16"
	case CRC32C:
		return "crc32c"
	case CRC64:
		return "crc64"
	case XXHash64:
		return "xxhash64"
	default:
		return "unknown"
	}
}

var castagnoliTable = crc32.MakeTable(crc32.Castagnoli)
var crc64ISOTable = crc64.MakeTable(crc64.ISO)

// NewHash constructs the hash.Hash backend for algorithm a. A is None
// returns (nil, nil): no state is allocated and the caller must treat the
// absence of a hash as "checksumming disabled" rather than an error.
func NewHash(a Algorithm) (hash.Hash, error) {
	switch a {
	case None:
		return nil, nil
	case CRC16:
		return newCRC16(), nil
	case CRC32C:
		return crc32.New(castagnoliTable), nil
	case CRC64:
		return crc64.New(crc64ISOTable), nil
	case XXHash64:
		return xxhash.New(), nil
	default:
		return nil, errors.Newf("checksum: unknown algorithm %d", int(a))
	}
}

// State is the processor-level checksum state: a handle to the running
// hash (nil iff the algorithm is None), fixed-size base/verify scratch
// regions, and the update-enabled flag that Flush clears.
//
// There is exactly one State per Processor, shared by reference between
// the primary and spill segments — see spec.md §4.2 / §9 "Shared checksum
// state across two segments" for why this single-state design was chosen
// over per-segment duplication.
type State struct {
	hash          hash.Hash
	size          int
	base          []byte
	verify        []byte
	updateEnabled bool
}

// NewState allocates checksum state for algorithm a. If a == None, the
// returned State is inert: Active() is false and every method is a no-op.
func NewState(a Algorithm) (*State, error) {
	h, err := NewHash(a)
	if err != nil {
		return nil, errors.Wrapf(err, "checksum: create state")
	}
	s := &State{hash: h}
	if h != nil {
		s.size = h.Size()
		s.base = make([]byte, 0, s.size)
		s.verify = make([]byte, 0, s.size)
	}
	s.updateEnabled = true
	return s, nil
}

// Active reports whether a hash is configured.
func (s *State) Active() bool { return s != nil && s.hash != nil }

// Size returns the digest size in bytes, or 0 if no hash is configured.
func (s *State) Size() int {
	if s == nil {
		return 0
	}
	return s.size
}

// Reset clears the running hash and re-enables updates, for reuse across
// Processor.Reset calls. It does not reallocate the scratch regions.
func (s *State) Reset() {
	if s == nil {
		return
	}
	if s.hash != nil {
		s.hash.Reset()
	}
	s.updateEnabled = true
}

// UpdateEnabled reports whether bytes passed to Update are currently being
// absorbed into the running hash.
func (s *State) UpdateEnabled() bool { return s != nil && s.updateEnabled }

// DisableUpdates stops the running hash from absorbing further bytes. Used
// by Flush so that the digest's own wire bytes are never hashed.
func (s *State) DisableUpdates() {
	if s != nil {
		s.updateEnabled = false
	}
}

// Update absorbs p into the running hash, iff a hash is configured and
// updates are currently enabled. It is always safe to call on an inert
// State.
func (s *State) Update(p []byte) {
	if s.Active() && s.updateEnabled {
		s.hash.Write(p)
	}
}

// Finalize computes the digest of everything absorbed so far into the
// base scratch region and returns it. It does not reset the running hash.
func (s *State) Finalize() []byte {
	if !s.Active() {
		return nil
	}
	s.base = s.hash.Sum(s.base[:0])
	return s.base
}

// FinalizeVerify computes the digest into the verify scratch region,
// for comparison against a digest read off the wire on decode.
func (s *State) FinalizeVerify() []byte {
	if !s.Active() {
		return nil
	}
	s.verify = s.hash.Sum(s.verify[:0])
	return s.verify
}

// Destroy releases the checksum state. The stdlib hash.Hash backends (and
// xxhash's) hold no external resources, so this is a no-op kept for
// symmetry with the spec's explicit init/update/finalize/reset/destroy
// primitive contract (§1 Out of scope).
func (s *State) Destroy() {}
