package snowflake

import (
	"fmt"
	"strconv"
	"sync"
	"time"
)

const (
	// Bit allocations
	timestampBits = 41
	workerIDBits  = 10
	sequenceBits  = 12

	// Max values
	maxTimestamp = (1 << timestampBits) - 1 // ~69 years of milliseconds
	maxWorkerID  = (1 << workerIDBits) - 1  // 1023
	maxSequence  = (1 << sequenceBits) - 1  // 4095

	// Shifts
	timestampShift = workerIDBits + sequenceBits
	workerIDShift  = sequenceBits

	// overflowBackoff is the pause between clock samples while waiting out
	// an exhausted sequence.
	overflowBackoff = time.Millisecond / 8
)

// Option configures a Generator.
type Option func(*Generator)

// WithClock replaces the system clock.
func WithClock(c Clock) Option {
	return func(g *Generator) {
		g.clock = c
	}
}

// Generator generates Snowflake IDs for a single worker.
// Thread-safe; independent generators share no state.
type Generator struct {
	cfg      Config
	epoch    int64
	workerID int64
	clock    Clock

	mu         sync.Mutex
	lastMillis int64
	sequence   int64
	poisoned   bool
}

// New creates a generator for cfg. The worker ID is checked here and
// never again.
func New(cfg Config, opts ...Option) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{
		cfg:      cfg,
		epoch:    cfg.Epoch(),
		workerID: cfg.WorkerID,
		clock:    SystemClock{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Generate creates a new unique 64-bit ID.
//
// It fails with ErrClockRollback when the clock reads earlier than the last
// issued ID, with ErrBeforeEpoch or ErrTimestampOverflow when the elapsed time
// does not fit the timestamp field, and with ErrLockPoisoned once a panic has
// escaped a previous call. Failed calls leave the generator state untouched.
func (g *Generator) Generate() (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.poisoned {
		return 0, ErrLockPoisoned
	}

	completed := false
	defer func() {
		if !completed {
			g.poisoned = true
		}
	}()

	id, err := g.next()
	completed = true
	return id, err
}

// next runs one state transition. Callers hold g.mu.
func (g *Generator) next() (uint64, error) {
	now := g.clock.NowMillis()
	if now < g.lastMillis {
		return 0, fmt.Errorf("now %d, last issued %d: %w", now, g.lastMillis, ErrClockRollback)
	}

	// State starts at (0, 0): a first reading of exactly 0 counts as the same
	// millisecond and gets sequence 1.
	var seq int64
	if now == g.lastMillis {
		seq = g.sequence + 1
		if seq > maxSequence {
			// Sequence exhausted, wait for next millisecond
			now = g.waitNextMillis(g.lastMillis)
			seq = 0
		}
	}

	elapsed, err := g.elapsed(now)
	if err != nil {
		return 0, err
	}

	g.lastMillis = now
	g.sequence = seq

	return Compose(uint64(elapsed), g.workerID, uint16(seq)), nil
}

func (g *Generator) waitNextMillis(last int64) int64 {
	for {
		now := g.clock.NowMillis()
		if now > last {
			return now
		}
		time.Sleep(overflowBackoff)
	}
}

func (g *Generator) elapsed(now int64) (int64, error) {
	if now < g.epoch {
		return 0, fmt.Errorf("now %d, epoch %d: %w", now, g.epoch, ErrBeforeEpoch)
	}
	elapsed := now - g.epoch
	if elapsed > maxTimestamp {
		return 0, fmt.Errorf("%d ms since epoch %d: %w", elapsed, g.epoch, ErrTimestampOverflow)
	}
	return elapsed, nil
}

// GenerateBatch calls Generate n times. The first error aborts the batch and
// no IDs are returned.
func (g *Generator) GenerateBatch(n int) ([]uint64, error) {
	if n <= 0 {
		return []uint64{}, nil
	}
	ids := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		id, err := g.Generate()
		if err != nil {
			return nil, fmt.Errorf("batch aborted after %d of %d: %w", i, n, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// GenerateString returns a new ID in its decimal wire form.
func (g *Generator) GenerateString() (string, error) {
	id, err := g.Generate()
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(id, 10), nil
}

// Decode splits id into its fields. It is equivalent to the package level
// Decode; the generator's epoch is only needed to turn the result into a time.
func (g *Generator) Decode(id uint64) DecodedID {
	return Decode(id)
}

// WorkerID returns the worker identifier stamped into every ID.
func (g *Generator) WorkerID() int64 {
	return g.workerID
}

// Epoch returns the reference instant in milliseconds.
func (g *Generator) Epoch() int64 {
	return g.epoch
}

// Config returns the configuration the generator was built with.
func (g *Generator) Config() Config {
	return g.cfg
}
