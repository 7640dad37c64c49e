package ratelimit

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"
)

// BucketState is the mutable runtime state of one token bucket. Remaining is
// bounded in [0, capacity]; LastRefill is the unix-nanosecond timestamp of
// the last refill computation.
type BucketState struct {
	Remaining  float64
	LastRefill int64
}

func newBucketState(capacity int, now time.Time) BucketState {
	return BucketState{
		Remaining:  float64(capacity),
		LastRefill: now.UnixNano(),
	}
}

// refill credits elapsed/window*capacity tokens, capped at capacity, and
// advances LastRefill to now.
func (b *BucketState) refill(capacity int, window time.Duration, now time.Time) {
	elapsed := now.UnixNano() - b.LastRefill
	if elapsed > 0 {
		credit := float64(elapsed) / float64(window.Nanoseconds()) * float64(capacity)
		b.Remaining = math.Min(float64(capacity), b.Remaining+credit)
	}
	b.LastRefill = now.UnixNano()
}

// take consumes one token if at least one is available.
func (b *BucketState) take() bool {
	if b.Remaining >= 1 {
		b.Remaining--
		return true
	}
	return false
}

const bucketFormatVersionV1 = 1

func encodeBucket(b BucketState) []byte {
	var buf bytes.Buffer
	buf.WriteByte(bucketFormatVersionV1)
	_ = binary.Write(&buf, binary.BigEndian, math.Float64bits(b.Remaining))
	_ = binary.Write(&buf, binary.BigEndian, b.LastRefill)
	return buf.Bytes()
}

func decodeBucket(data []byte) (BucketState, bool) {
	var b BucketState
	if len(data) != 1+8+8 || data[0] != bucketFormatVersionV1 {
		return b, false
	}
	b.Remaining = math.Float64frombits(binary.BigEndian.Uint64(data[1:9]))
	b.LastRefill = int64(binary.BigEndian.Uint64(data[9:17]))
	if math.IsNaN(b.Remaining) || math.IsInf(b.Remaining, 0) || b.Remaining < 0 {
		return b, false
	}
	return b, true
}
