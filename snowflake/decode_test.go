package snowflake

import (
	"math/rand"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		timestamp uint64
		workerID  int64
		sequence  uint16
	}{
		{name: "zero", timestamp: 0, workerID: 0, sequence: 0},
		{name: "all max", timestamp: maxTimestamp, workerID: maxWorkerID, sequence: maxSequence},
		{name: "example", timestamp: 123, workerID: 5, sequence: 1},
		{name: "only worker", timestamp: 0, workerID: 1023, sequence: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := Compose(tt.timestamp, tt.workerID, tt.sequence)
			d := Decode(id)
			assert.Equal(t, tt.timestamp, d.Timestamp)
			assert.Equal(t, tt.workerID, d.WorkerID)
			assert.Equal(t, tt.sequence, d.Sequence)
			assert.Equal(t, id, d.Compose())
			assert.Zero(t, id>>63)
		})
	}
}

func TestComposeDecodeRandomIDs(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 10000; i++ {
		id := r.Uint64() >> 1 // bit 63 is never set on issued IDs
		assert.Equal(t, id, Decode(id).Compose())
	}
}

func TestComposeMasksFields(t *testing.T) {
	id := Compose(maxTimestamp+1, maxWorkerID+1, maxSequence+1)
	assert.Equal(t, uint64(0), id)
}

func TestDecodeLayout(t *testing.T) {
	id := uint64(123)<<22 | uint64(5)<<12 | 7
	d := Decode(id)
	assert.Equal(t, uint64(123), d.Timestamp)
	assert.Equal(t, int64(5), d.WorkerID)
	assert.Equal(t, uint16(7), d.Sequence)
	assert.Equal(t, strconv.FormatUint(id, 10), d.String())
}

func TestGenerationTime(t *testing.T) {
	d := Decode(Compose(1500, 1, 0))
	want := time.Date(2021, 1, 1, 0, 0, 1, 500*int(time.Millisecond), time.UTC)
	assert.True(t, want.Equal(d.GenerationTime(testEpoch)))
	assert.Equal(t, "2021-01-01 00:00:01.500", d.GenerationTimeString(testEpoch))
}

func TestParseString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    uint64
		wantErr bool
	}{
		{name: "valid", input: "1234567890", want: 1234567890},
		{name: "max uint64", input: "18446744073709551615", want: 1<<64 - 1},
		{name: "empty", input: "", wantErr: true},
		{name: "negative", input: "-1", wantErr: true},
		{name: "not a number", input: "abc", wantErr: true},
		{name: "overflow", input: "18446744073709551616", wantErr: true},
		{name: "hex", input: "0x10", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseString(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidIDString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
