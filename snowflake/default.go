package snowflake

import (
	"fmt"
	"strconv"
	"sync"
)

// defaultGenerator is built once on first use. A construction error is kept
// and handed back on every call instead of retrying.
var defaultGenerator = sync.OnceValues(func() (*Generator, error) {
	return New(DefaultConfig())
})

// Default returns the process-wide generator (worker 1, DefaultEpoch).
func Default() (*Generator, error) {
	g, err := defaultGenerator()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDefaultInit, err)
	}
	return g, nil
}

// GenerateID generates an ID with the default generator.
func GenerateID() (uint64, error) {
	g, err := Default()
	if err != nil {
		return 0, err
	}
	return g.Generate()
}

// GenerateIDs generates count IDs with the default generator.
func GenerateIDs(count int) ([]uint64, error) {
	g, err := Default()
	if err != nil {
		return nil, err
	}
	return g.GenerateBatch(count)
}

// ParseID decodes id. It fails only when the default generator is unusable.
func ParseID(id uint64) (DecodedID, error) {
	g, err := Default()
	if err != nil {
		return DecodedID{}, err
	}
	return g.Decode(id), nil
}

// GenerateStringID generates an ID with the default generator and returns
// its decimal form.
func GenerateStringID() (string, error) {
	id, err := GenerateID()
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(id, 10), nil
}

// ParseStringID parses a decimal ID and decodes it.
func ParseStringID(s string) (DecodedID, error) {
	id, err := ParseString(s)
	if err != nil {
		return DecodedID{}, err
	}
	return ParseID(id)
}
