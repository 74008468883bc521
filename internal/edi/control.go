package edi

import (
	"encoding/binary"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// maxControlNumber keeps generated numbers within nine digits, the width of
// ISA13.
const maxControlNumber = 999999999

// ControlNumbers hands out envelope control numbers for generated documents.
// Implementations must be safe for concurrent use.
type ControlNumbers interface {
	Next() uint64
}

// Sequence is a ControlNumbers source starting at a random offset and
// counting up atomically.
type Sequence struct {
	seed    uint64
	counter atomic.Uint64
}

// NewSequence creates a sequence seeded from a random UUID.
func NewSequence() *Sequence {
	id := uuid.New()
	return &Sequence{seed: uint64(binary.BigEndian.Uint32(id[:4]))}
}

// NewSequenceAt creates a sequence whose first number is start.
func NewSequenceAt(start uint64) *Sequence {
	if start == 0 {
		start = 1
	}
	return &Sequence{seed: start - 1}
}

// Next returns the next number in [1, 999999999].
func (s *Sequence) Next() uint64 {
	n := s.counter.Add(1)
	return (s.seed+n-1)%maxControlNumber + 1
}

// NextDistinct draws numbers until one differs from every value in avoid.
// Leading zeros are ignored in the comparison.
func NextDistinct(src ControlNumbers, format string, avoid ...string) string {
	for {
		v := fmt.Sprintf(format, src.Next())
		clash := false
		for _, a := range avoid {
			if strings.TrimLeft(a, "0") == strings.TrimLeft(v, "0") {
				clash = true
				break
			}
		}
		if !clash {
			return v
		}
	}
}
