package snowflake

import (
	"fmt"
	"strconv"
	"time"
)

// GenerationTimeLayout formats DecodedID.GenerationTimeString.
const GenerationTimeLayout = "2006-01-02 15:04:05.000"

// DecodedID is the field-wise view of an ID. Decoding never validates the
// fields against any generator.
type DecodedID struct {
	ID        uint64 `json:"id,string"`
	Timestamp uint64 `json:"timestamp"`
	WorkerID  int64  `json:"worker_id"`
	Sequence  uint16 `json:"sequence"`
}

// Decode splits a Snowflake ID into timestamp, worker and sequence fields.
func Decode(id uint64) DecodedID {
	return DecodedID{
		ID:        id,
		Timestamp: (id >> timestampShift) & maxTimestamp,
		WorkerID:  int64((id >> workerIDShift) & maxWorkerID),
		Sequence:  uint16(id & maxSequence),
	}
}

// Compose packs the fields into an ID. Out of range values are masked to
// their field width, so Compose(Decode(id)) == id for every id with bit 63
// clear.
func Compose(timestamp uint64, workerID int64, sequence uint16) uint64 {
	return (timestamp&maxTimestamp)<<timestampShift |
		(uint64(workerID)&maxWorkerID)<<workerIDShift |
		uint64(sequence)&maxSequence
}

// Compose packs d back into an ID.
func (d DecodedID) Compose() uint64 {
	return Compose(d.Timestamp, d.WorkerID, d.Sequence)
}

// GenerationTime returns when the ID was issued, given the epoch it was
// generated against.
func (d DecodedID) GenerationTime(epochMillis int64) time.Time {
	return time.UnixMilli(epochMillis + int64(d.Timestamp)).UTC()
}

// GenerationTimeString formats GenerationTime with GenerationTimeLayout.
func (d DecodedID) GenerationTimeString(epochMillis int64) string {
	return d.GenerationTime(epochMillis).Format(GenerationTimeLayout)
}

// String returns the decimal wire form of the ID.
func (d DecodedID) String() string {
	return strconv.FormatUint(d.ID, 10)
}

// ParseString parses the decimal wire form of an ID.
func ParseString(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, ErrInvalidIDString)
	}
	return id, nil
}
