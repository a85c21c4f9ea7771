package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultInterval = 100 * time.Millisecond

var ErrEncode = errors.New("encode error")

// Source yields the current video frame as an encoded JPEG.
type Source interface {
	Grab() ([]byte, error)
}

type Sender interface {
	// Ready reports whether the channel is open right now.
	Ready() bool
	// SendFrame transmits one JPEG frame. It returns false when the frame was
	// dropped because the channel is not open.
	SendFrame(jpeg []byte) (bool, error)
}

type Observer interface {
	FrameSent()
	FrameSkipped()
	EncodeFailed()
}

type nopObserver struct{}

func (nopObserver) FrameSent()    {}
func (nopObserver) FrameSkipped() {}
func (nopObserver) EncodeFailed() {}

// Loop samples Source at a fixed rate and forwards frames to Sender. The next tick
// is scheduled only after the current one finishes, so at most one is pending.
type Loop struct {
	source   Source
	sender   Sender
	interval time.Duration
	observer Observer
	logger   *logrus.Entry
}

func NewLoop(source Source, sender Sender, interval time.Duration, observer Observer, logger *logrus.Entry) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if observer == nil {
		observer = nopObserver{}
	}
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Loop{
		source:   source,
		sender:   sender,
		interval: interval,
		observer: observer,
		logger:   logger,
	}
}

// Run ticks immediately and then every interval until ctx is done.
func (l *Loop) Run(ctx context.Context) {
	timer := time.NewTimer(0)
	defer timer.Stop()

	l.logger.Debugf("capture loop started, interval: %v", l.interval)
	defer l.logger.Debug("capture loop stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		if ctx.Err() != nil {
			return
		}
		l.Tick()

		if ctx.Err() != nil {
			return
		}
		timer.Reset(l.interval)
	}
}

// Tick handles a single sample. A closed channel drops the frame; a grab failure is
// logged and the loop carries on.
func (l *Loop) Tick() {
	if !l.sender.Ready() {
		l.observer.FrameSkipped()
		return
	}

	frame, err := l.source.Grab()
	if err != nil {
		l.observer.EncodeFailed()
		l.logger.WithError(fmt.Errorf("%w: %v", ErrEncode, err)).Warn("frame skipped")
		return
	}

	sent, err := l.sender.SendFrame(frame)
	if err != nil {
		l.logger.WithError(err).Debug("send frame failed")
		return
	}
	if !sent {
		l.observer.FrameSkipped()
		return
	}
	l.observer.FrameSent()
}
