// Package fragment splits payloads into fixed-capacity fragments and
// reassembles them per session on the receiving side.
package fragment

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// Size is the data capacity of a single fragment in bytes
const Size = 128

// Fragment is one slice of a payload. Only the first Length bytes of Data
// are meaningful; the rest is zero padding.
type Fragment struct {
	Index  uint64
	Total  uint64
	Length uint8
	Data   [Size]byte
}

// Bytes returns the meaningful part of Data
func (f Fragment) Bytes() []byte {
	n := min(int(f.Length), Size)
	return f.Data[:n]
}

func (f Fragment) String() string {
	return fmt.Sprintf("fragment %d/%d (%d bytes)", f.Index+1, f.Total, f.Length)
}

// validate checks the fields a fragment carries about itself
func (f Fragment) validate() error {
	switch {
	case f.Total == 0:
		return fmt.Errorf("%w: total is zero", ErrInvalidFragment)
	case f.Index >= f.Total:
		return fmt.Errorf("%w: index %d out of %d", ErrInvalidFragment, f.Index, f.Total)
	case int(f.Length) > Size:
		return fmt.Errorf("%w: length %d exceeds %d", ErrInvalidFragment, f.Length, Size)
	}
	return nil
}

// NewSessionID returns a random 64-bit session identifier
func NewSessionID() uint64 {
	id := uuid.New()
	return binary.BigEndian.Uint64(id[:8])
}
