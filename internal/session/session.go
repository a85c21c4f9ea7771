package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"stationeye/internal/capture"
	"stationeye/internal/model"
)

type State int

const (
	StateIdle State = iota
	StateAcquiring
	StateOpen
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Camera is an acquired video source. Close must be idempotent and safe to call
// while a Grab is in progress.
type Camera interface {
	capture.Source
	Close() error
}

type CameraOpener interface {
	Open(ctx context.Context) (Camera, error)
}

type CameraOpenerFunc func(ctx context.Context) (Camera, error)

func (f CameraOpenerFunc) Open(ctx context.Context) (Camera, error) {
	return f(ctx)
}

// Handler receives every decoded batch, in arrival order, from the session's read
// loop. It must not block on Stop.
type Handler interface {
	HandleBatch(batch Batch)
}

// Batch is one decoded inbound message.
type Batch struct {
	Records []model.DetectionRecord

	s   *Session
	gen uint64
}

// Apply runs fn only while the session that received the batch is still open on the
// same generation. Stop cannot complete while fn runs, so once Stop has returned no
// later Apply takes effect. fn must not call back into the session. A batch that no
// session received always applies.
func (b Batch) Apply(fn func()) bool {
	if b.s == nil {
		fn()
		return true
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.s.gen != b.gen || b.s.state != StateOpen {
		return false
	}
	fn()
	return true
}

type Observer interface {
	capture.Observer
	MessageReceived()
	DecodeFailed()
	ChannelFailed()
	SessionActive(active bool)
}

type nopObserver struct{}

func (nopObserver) FrameSent()         {}
func (nopObserver) FrameSkipped()      {}
func (nopObserver) EncodeFailed()      {}
func (nopObserver) MessageReceived()   {}
func (nopObserver) DecodeFailed()      {}
func (nopObserver) ChannelFailed()     {}
func (nopObserver) SessionActive(bool) {}

type Options struct {
	// Addr is the detection channel address, see DetectURL.
	Addr     string
	Opener   CameraOpener
	Dialer   Dialer
	Handler  Handler
	Interval time.Duration
	Observer Observer
	Logger   *logrus.Entry
}

// Session pairs one camera with one backend channel. Both are acquired by Start and
// released together by Stop or by the first channel failure. Every Start and Stop
// bumps a generation counter; completions that arrive for an older generation
// release what they acquired and change nothing else.
type Session struct {
	opts     Options
	observer Observer
	logger   *logrus.Entry

	mu      sync.Mutex
	state   State
	gen     uint64
	camera  Camera
	channel Channel
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func New(opts Options) *Session {
	if opts.Interval <= 0 {
		opts.Interval = capture.DefaultInterval
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Session{
		opts:     opts,
		observer: observer,
		logger:   logger,
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Active is true only while both the camera and the channel are held open.
func (s *Session) Active() bool {
	return s.State() == StateOpen
}

// Start acquires the camera and begins opening the channel. It returns once the
// camera is held; the session becomes active when the channel confirms open.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateAcquiring || s.state == StateOpen || s.state == StateClosing {
		s.mu.Unlock()
		return ErrSessionActive
	}
	prev := s.state
	s.gen++
	gen := s.gen
	s.state = StateAcquiring
	s.mu.Unlock()

	cam, err := s.opts.Opener.Open(ctx)
	if err != nil {
		if !errors.Is(err, ErrCaptureDenied) {
			err = fmt.Errorf("%w: %v", ErrCaptureDenied, err)
		}
		s.mu.Lock()
		if s.gen == gen {
			s.state = prev
		}
		s.mu.Unlock()
		s.logger.WithError(err).Error("start session")
		return err
	}

	s.mu.Lock()
	if s.gen != gen {
		s.mu.Unlock()
		cam.Close()
		s.logger.Info("session stopped while acquiring camera")
		return ErrSessionStopped
	}
	runCtx, cancel := context.WithCancel(context.Background())
	s.camera = cam
	s.cancel = cancel
	s.wg.Add(1)
	s.mu.Unlock()

	go s.run(runCtx, gen, cam)
	return nil
}

// Stop releases the channel and the camera. It is idempotent, never blocks on the
// session's goroutines and is safe to call from any goroutine.
func (s *Session) Stop() {
	s.release(0, true)
}

// Wait blocks until the goroutines of every past generation have returned.
func (s *Session) Wait() {
	s.wg.Wait()
}

func (s *Session) run(ctx context.Context, gen uint64, cam Camera) {
	defer s.wg.Done()

	logger := s.logger.WithField("generation", gen)
	ch, err := s.opts.Dialer.Dial(ctx, s.opts.Addr)
	if err != nil {
		if ctx.Err() == nil {
			s.fail(gen, fmt.Errorf("%w: dial %s: %v", ErrChannel, s.opts.Addr, err))
		}
		return
	}

	s.mu.Lock()
	if s.gen != gen || s.state != StateAcquiring {
		s.mu.Unlock()
		ch.Close()
		logger.Debug("channel opened after stop, closed")
		return
	}
	s.channel = ch
	s.state = StateOpen
	s.mu.Unlock()

	s.observer.SessionActive(true)
	logger.Infof("channel open: %s", s.opts.Addr)

	loop := capture.NewLoop(cam, &generationSender{s: s, gen: gen}, s.opts.Interval, s.observer,
		logger.WithField("component", "capture"))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		loop.Run(ctx)
	}()

	s.readLoop(ctx, gen, ch, logger)
}

func (s *Session) readLoop(ctx context.Context, gen uint64, ch Channel, logger *logrus.Entry) {
	for {
		data, err := ch.Receive()
		if err != nil {
			if ctx.Err() == nil {
				s.fail(gen, fmt.Errorf("%w: %v", ErrChannel, err))
			}
			return
		}
		s.observer.MessageReceived()

		records, err := DecodeDetections(data)
		if err != nil {
			s.observer.DecodeFailed()
			logger.WithError(err).Warn("inbound message discarded")
			continue
		}
		if !s.current(gen) {
			return
		}
		s.opts.Handler.HandleBatch(Batch{Records: records, s: s, gen: gen})
	}
}

func (s *Session) sendFrame(gen uint64, jpeg []byte) (bool, error) {
	s.mu.Lock()
	if s.gen != gen || s.state != StateOpen {
		s.mu.Unlock()
		return false, nil
	}
	ch := s.channel
	s.mu.Unlock()

	if err := ch.Send(EncodeFrame(jpeg)); err != nil {
		if !s.current(gen) {
			return false, nil
		}
		err = fmt.Errorf("%w: send frame: %v", ErrChannel, err)
		s.fail(gen, err)
		return false, err
	}
	return true, nil
}

func (s *Session) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen && s.state == StateOpen
}

func (s *Session) fail(gen uint64, err error) {
	s.mu.Lock()
	stale := s.gen != gen
	s.mu.Unlock()
	if stale {
		return
	}
	s.observer.ChannelFailed()
	s.logger.WithError(err).Error("session failed, stopping")
	s.release(gen, false)
}

// release tears down generation gen, or whatever is current when anyGen is set.
func (s *Session) release(gen uint64, anyGen bool) {
	s.mu.Lock()
	if (!anyGen && s.gen != gen) ||
		s.state == StateIdle || s.state == StateClosed || s.state == StateClosing {
		s.mu.Unlock()
		return
	}
	wasOpen := s.state == StateOpen
	s.gen++
	stopGen := s.gen
	s.state = StateClosing
	cancel, ch, cam := s.cancel, s.channel, s.camera
	s.cancel, s.channel, s.camera = nil, nil, nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if ch != nil {
		if err := ch.Close(); err != nil {
			s.logger.WithError(err).Debug("close channel")
		}
	}
	if cam != nil {
		if err := cam.Close(); err != nil {
			s.logger.WithError(err).Warn("close camera")
		}
	}

	s.mu.Lock()
	if s.gen == stopGen {
		s.state = StateClosed
	}
	s.mu.Unlock()

	if wasOpen {
		s.observer.SessionActive(false)
	}
	s.logger.Info("session stopped")
}

type generationSender struct {
	s   *Session
	gen uint64
}

func (g *generationSender) Ready() bool {
	return g.s.current(g.gen)
}

func (g *generationSender) SendFrame(jpeg []byte) (bool, error) {
	return g.s.sendFrame(g.gen, jpeg)
}
