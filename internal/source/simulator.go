package source

import (
	"context"
	"encoding/binary"
	"math"
	"time"

	"github.com/lucaslui/telemd/internal/model"
)

const (
	SimFrameID  = 0x400
	SimInterval = 3 * time.Millisecond
	simScale    = 0.001
)

// Simulator emits the front-left steering angle frame at 333 Hz. Frames are
// produced on demand from the clock, so a slow reader catches up with a
// batch instead of losing frames.
type Simulator struct {
	start   time.Time
	emitted int64
	max     int
	now     func() time.Time
	closed  chan struct{}
}

func NewSimulator(max int) *Simulator {
	return &Simulator{start: time.Now(), max: max, now: time.Now, closed: make(chan struct{})}
}

func (s *Simulator) Name() string { return "sim" }

func (s *Simulator) Recv(ctx context.Context, timeout time.Duration) ([]model.Frame, error) {
	if out := s.due(); len(out) > 0 {
		return out, nil
	}
	wait := s.start.Add(time.Duration(s.emitted+1) * SimInterval).Sub(s.now())
	if wait > timeout {
		wait = timeout
	}
	if wait > 0 {
		t := time.NewTimer(wait)
		defer t.Stop()
		select {
		case <-t.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-s.closed:
			return nil, ErrClosed
		}
	}
	out := s.due()
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}

func (s *Simulator) due() []model.Frame {
	select {
	case <-s.closed:
		return nil
	default:
	}
	n := int64(s.now().Sub(s.start) / SimInterval)
	var out []model.Frame
	for s.emitted < n && len(out) < s.max {
		s.emitted++
		at := s.start.Add(time.Duration(s.emitted) * SimInterval)
		out = append(out, SteeringFrame(at.Sub(s.start).Seconds(), at))
	}
	return out
}

func (s *Simulator) Emitted() int64 { return s.emitted }

func (s *Simulator) Close() error {
	select {
	case <-s.closed:
	default:
		close(s.closed)
	}
	return nil
}

// SteeringFrame encodes 8*sin(0.5t+0.1) degrees as a signed 16-bit raw value
// at 0.001 deg/bit, padded to 8 bytes.
func SteeringFrame(elapsed float64, ts time.Time) model.Frame {
	angle := 8 * math.Sin(elapsed*0.5+0.1)
	raw := int16(int64(angle / simScale))
	data := make([]byte, 8)
	binary.LittleEndian.PutUint16(data, uint16(raw))
	return model.Frame{ID: SimFrameID, Data: data, Timestamp: ts}
}
