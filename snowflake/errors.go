package snowflake

import "errors"

var (
	ErrInvalidWorkerID   = errors.New("worker ID must be between 0 and 1023")
	ErrClockRollback     = errors.New("clock moved backwards")
	ErrTimestampOverflow = errors.New("timestamp exceeds 41 bits since epoch")
	ErrBeforeEpoch       = errors.New("current time is before the configured epoch")
	ErrLockPoisoned      = errors.New("generator unusable after a panic inside the critical section")
	ErrDefaultInit       = errors.New("default generator initialization failed")
	ErrInvalidIDString   = errors.New("invalid ID string")
)
