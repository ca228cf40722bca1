package todo

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// IDGenerator produces task ids. Ids are unique with overwhelming probability;
// nothing checks them against the existing collection.
type IDGenerator interface {
	NewID() string
}

// IDFormat names a built-in id generator.
type IDFormat string

const (
	IDFormatBase36 IDFormat = "base36"
	IDFormatUUID   IDFormat = "uuid"
)

const base36Digits = "0123456789abcdefghijklmnopqrstuvwxyz"

// randomSuffixLen is the number of random base36 characters after the time prefix.
const randomSuffixLen = 6

// Base36IDs generates ids of the form <base36 millis><6 random base36 chars>, upper-cased.
type Base36IDs struct {
	Now func() time.Time
}

// NewID implements IDGenerator.
func (g Base36IDs) NewID() string {
	now := time.Now
	if g.Now != nil {
		now = g.Now
	}
	var b strings.Builder
	b.WriteString(strconv.FormatInt(now().UnixMilli(), 36))
	for i := 0; i < randomSuffixLen; i++ {
		b.WriteByte(base36Digits[rand.IntN(len(base36Digits))])
	}
	return strings.ToUpper(b.String())
}

// UUIDs generates time-ordered UUIDv7 strings.
type UUIDs struct{}

// NewID implements IDGenerator. It falls back to a random v4 UUID if the
// v7 clock sequence cannot be read.
func (UUIDs) NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NewIDGenerator returns the generator for a format name.
func NewIDGenerator(format IDFormat) (IDGenerator, error) {
	switch format {
	case "", IDFormatBase36:
		return Base36IDs{}, nil
	case IDFormatUUID:
		return UUIDs{}, nil
	default:
		return nil, fmt.Errorf("unknown id format %q", format)
	}
}
