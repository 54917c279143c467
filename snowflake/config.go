package snowflake

import "fmt"

const (
	// DefaultEpoch is the Twitter epoch, 2010-11-04T01:42:54.657Z, in milliseconds.
	DefaultEpoch int64 = 1288834974657

	// DefaultWorkerID is used by DefaultConfig and the process-wide generator.
	DefaultWorkerID int64 = 1
)

// Config describes a generator. It is safe to build one by decoding
// configuration, but it must pass Validate before use; New does that.
type Config struct {
	WorkerID    int64  `json:"worker_id"`
	EpochMillis *int64 `json:"epoch_millis,omitempty"`
}

// DefaultConfig returns worker 1 on the default epoch.
func DefaultConfig() Config {
	return Config{WorkerID: DefaultWorkerID}
}

// NewConfig returns a config for workerID on the default epoch.
func NewConfig(workerID int64) (Config, error) {
	if err := validateWorkerID(workerID); err != nil {
		return Config{}, err
	}
	return Config{WorkerID: workerID}, nil
}

// NewConfigWithEpoch returns a config for workerID counting from epochMillis.
// The epoch is not range checked.
func NewConfigWithEpoch(workerID, epochMillis int64) (Config, error) {
	if err := validateWorkerID(workerID); err != nil {
		return Config{}, err
	}
	return Config{WorkerID: workerID, EpochMillis: &epochMillis}, nil
}

// WithWorkerID returns a copy of c using workerID.
func (c Config) WithWorkerID(workerID int64) (Config, error) {
	if err := validateWorkerID(workerID); err != nil {
		return Config{}, err
	}
	c.WorkerID = workerID
	return c, nil
}

// WithEpoch returns a copy of c counting from epochMillis.
func (c Config) WithEpoch(epochMillis int64) Config {
	c.EpochMillis = &epochMillis
	return c
}

// Epoch returns the configured epoch, or DefaultEpoch when unset.
func (c Config) Epoch() int64 {
	if c.EpochMillis == nil {
		return DefaultEpoch
	}
	return *c.EpochMillis
}

func (c Config) Validate() error {
	return validateWorkerID(c.WorkerID)
}

func validateWorkerID(workerID int64) error {
	if workerID < 0 || workerID > maxWorkerID {
		return fmt.Errorf("worker ID %d: %w", workerID, ErrInvalidWorkerID)
	}
	return nil
}
