package model

import (
	"fmt"
	"time"
)

// MaxPayload is the largest CAN FD data field.
const MaxPayload = 64

// Frame is one message read from the bus.
type Frame struct {
	ID        uint32
	Data      []byte
	Timestamp time.Time
}

func (f Frame) String() string {
	return fmt.Sprintf("0x%03X [% X]", f.ID, f.Data)
}

// Packet is the snapshot of complete fields handed to the broker in one publish.
type Packet struct {
	Timestamp time.Time
	PacketID  uint64
	Fields    map[string]Value
}

func ToMillis(t time.Time) int64 { return t.UTC().UnixNano() / 1e6 }

// UnixSeconds returns t as fractional Unix seconds.
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// FromUnixSeconds is the inverse of UnixSeconds at millisecond precision or better.
func FromUnixSeconds(s float64) time.Time {
	sec := int64(s)
	nsec := int64((s - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
