package block

import (
	"strconv"

	"github.com/google/uuid"
)

// IDGenerator hands out block ids. Implementations never return the same id
// twice.
type IDGenerator interface {
	NewID() string
}

// uuidGenerator issues time-ordered UUIDv7 ids.
type uuidGenerator struct {
	prefix string
}

// NewUUIDGenerator returns a generator of "blk-<uuidv7>" ids. UUIDv7 ids are
// unique across generators, so engines and parsers sharing a document never
// collide.
func NewUUIDGenerator() IDGenerator {
	return uuidGenerator{prefix: "blk-"}
}

func (g uuidGenerator) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return g.prefix + uuid.NewString()
	}
	return g.prefix + id.String()
}

// Sequence issues "<prefix>-1", "<prefix>-2", ... in order.
type Sequence struct {
	prefix string
	n      int
}

// NewSequence returns a monotonic generator with the given prefix.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// NewID returns the next id in the sequence.
func (s *Sequence) NewID() string {
	s.n++
	return s.prefix + "-" + strconv.Itoa(s.n)
}
