package console

import (
	"context"
	"errors"
	"image"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stationeye/internal/config"
	"stationeye/internal/model"
	"stationeye/internal/session"
)

var testJPEG = []byte{0xff, 0xd8, 0xff, 0xd9}

type fakeCamera struct {
	mu     sync.Mutex
	closed bool
}

func (c *fakeCamera) Grab() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, errors.New("camera closed")
	}
	return testJPEG, nil
}

func (c *fakeCamera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeCamera) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []model.DiagnosticEvent
	closed bool

	// when hold is set, the first Publish signals entered and waits on hold
	hold    chan struct{}
	entered chan struct{}
	once    sync.Once
}

func (p *recordingPublisher) Publish(_ model.Detection, e model.DiagnosticEvent) {
	if p.hold != nil {
		p.once.Do(func() {
			close(p.entered)
			<-p.hold
		})
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func newTestConsole(t *testing.T, backendURL string, cam *fakeCamera) (*Console, *recordingPublisher) {
	t.Helper()
	conf := config.DefaultConfig()
	conf.BackendURL = backendURL
	conf.Capture.IntervalMs = 5
	pub := &recordingPublisher{}
	c, err := New(Options{
		Config: conf,
		Camera: func(ctx context.Context, request image.Point) (session.Camera, error) {
			if cam == nil {
				return nil, errors.New("permission denied")
			}
			return cam, nil
		},
		Publisher: pub,
	})
	require.NoError(t, err)
	return c, pub
}

func TestConsole_HandleDetections(t *testing.T) {
	t.Parallel()

	c, pub := newTestConsole(t, "http://localhost:8000", &fakeCamera{})
	c.HandleDetections([]model.DetectionRecord{
		{ClassId: 0, Confidence: 0.9, BoundingBox: model.BoundingBox{X1: 10, Y1: 20, X2: 110, Y2: 220}},
		{ClassId: 5, Confidence: 0.9, BoundingBox: model.BoundingBox{X1: 200, Y1: 200, X2: 300, Y2: 300}},
		{ClassId: 1, Confidence: 0.3, BoundingBox: model.BoundingBox{X1: 0, Y1: 0, X2: 50, Y2: 50}},
	})

	detections := c.Detections(0)
	require.Len(t, detections, 2)
	// newest first
	assert.Equal(t, model.UnknownClassName, detections[0].Name)
	assert.Equal(t, "FireExtinguisher", detections[1].Name)

	diagnostics := c.Diagnostics()
	require.Len(t, diagnostics, 2)
	assert.Equal(t, "Detected Unknown", diagnostics[0].Event)
	assert.Greater(t, diagnostics[0].Id, diagnostics[1].Id)

	layer := c.Overlay()
	assert.Len(t, layer.Boxes, 2)
	assert.Equal(t, image.Rect(0, 0, 640, 480), layer.Image.Bounds())

	assert.Len(t, pub.events, 2)
	assert.Equal(t, uint64(2), c.Metrics().DetectionsAccepted.Load())
}

func TestConsole_ThresholdFollowsSettings(t *testing.T) {
	t.Parallel()

	c, _ := newTestConsole(t, "http://localhost:8000", &fakeCamera{})
	conf := 0.95
	s := c.UpdateSettings(model.SettingsPatch{Confidence: &conf})
	assert.Equal(t, 0.95, s.Confidence)

	c.HandleDetections([]model.DetectionRecord{{ClassId: 2, Confidence: 0.9}})
	assert.Empty(t, c.Detections(0))
	assert.Empty(t, c.Overlay().Boxes)

	c.HandleDetections([]model.DetectionRecord{{ClassId: 2, Confidence: 0.96}})
	require.Len(t, c.Detections(0), 1)
	assert.Equal(t, "OxygenTank", c.Detections(0)[0].Name)

	c.ClearLog()
	assert.Empty(t, c.Detections(0))
	assert.Empty(t, c.Diagnostics())
}

func TestConsole_Equipment(t *testing.T) {
	t.Parallel()

	c, _ := newTestConsole(t, "http://localhost:8000", &fakeCamera{})
	all := c.Equipment("")
	require.NotEmpty(t, all)

	item, err := c.SetEquipmentQuantity(all[0].Id, 9)
	require.NoError(t, err)
	assert.Equal(t, 9, item.Quantity)

	before := all[0].Status
	item, err = c.ToggleEquipmentStatus(all[0].Id)
	require.NoError(t, err)
	assert.Equal(t, before.Toggle(), item.Status)

	_, err = c.ToggleEquipmentStatus(-1)
	assert.Error(t, err)
}

func TestNew_InvalidBackend(t *testing.T) {
	t.Parallel()

	conf := config.DefaultConfig()
	conf.BackendURL = "ftp://example.com"
	_, err := New(Options{
		Config: conf,
		Camera: func(context.Context, image.Point) (session.Camera, error) { return nil, nil },
	})
	assert.Error(t, err)
}

func TestConsole_StartDenied(t *testing.T) {
	t.Parallel()

	c, _ := newTestConsole(t, "http://localhost:8000", nil)
	err := c.StartSession(context.Background())
	assert.ErrorIs(t, err, session.ErrCaptureDenied)
	assert.False(t, c.Status().Active)
}

// detectBackend answers every frame with one message and counts frames.
func detectBackend(t *testing.T, reply string) (*httptest.Server, func() int) {
	t.Helper()
	var mu sync.Mutex
	frames := 0
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != session.DetectPath {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
			mu.Lock()
			frames++
			mu.Unlock()
			if err := conn.WriteMessage(websocket.TextMessage, []byte(reply)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, func() int {
		mu.Lock()
		defer mu.Unlock()
		return frames
	}
}

func TestConsole_SessionRoundTrip(t *testing.T) {
	t.Parallel()

	srv, frames := detectBackend(t,
		`[{"cls":0,"conf":0.9,"x1":1,"y1":2,"x2":3,"y2":4},{"cls":5,"conf":0.9,"x1":5,"y1":6,"x2":7,"y2":8}]`)
	cam := &fakeCamera{}
	c, _ := newTestConsole(t, srv.URL, cam)

	require.NoError(t, c.StartSession(context.Background()))
	require.Eventually(t, func() bool { return c.Status().Active }, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return len(c.Detections(0)) >= 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Positive(t, frames())

	c.Close()
	assert.True(t, cam.Closed())
	assert.False(t, c.Status().Active)
	assert.Equal(t, "closed", c.Status().State)
	assert.Empty(t, c.Overlay().Boxes)
}

func TestConsole_MalformedMessageIgnored(t *testing.T) {
	t.Parallel()

	srv, frames := detectBackend(t, `{"cls":0}`)
	c, _ := newTestConsole(t, srv.URL, &fakeCamera{})

	require.NoError(t, c.StartSession(context.Background()))
	require.Eventually(t, func() bool { return frames() >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, c.Status().Active)
	assert.Empty(t, c.Detections(0))
	assert.Empty(t, c.Diagnostics())
	assert.Positive(t, c.Metrics().DecodeErrors.Load())

	c.Close()
}

func TestConsole_StopDuringBatchDiscardsRest(t *testing.T) {
	t.Parallel()

	srv, _ := detectBackend(t,
		`[{"cls":0,"conf":0.9,"x1":1,"y1":2,"x2":3,"y2":4},{"cls":1,"conf":0.9,"x1":5,"y1":6,"x2":7,"y2":8}]`)
	conf := config.DefaultConfig()
	conf.BackendURL = srv.URL
	conf.Capture.IntervalMs = 5
	pub := &recordingPublisher{hold: make(chan struct{}), entered: make(chan struct{})}
	c, err := New(Options{
		Config: conf,
		Camera: func(context.Context, image.Point) (session.Camera, error) {
			return &fakeCamera{}, nil
		},
		Publisher: pub,
	})
	require.NoError(t, err)

	require.NoError(t, c.StartSession(context.Background()))
	select {
	case <-pub.entered:
	case <-time.After(2 * time.Second):
		t.Fatal("no detection published")
	}

	// first record logged, second still pending
	c.StopSession()
	assert.Equal(t, "closed", c.Status().State)
	require.Len(t, c.Detections(0), 1)

	close(pub.hold)
	c.Close()

	detections := c.Detections(0)
	require.Len(t, detections, 1)
	assert.Equal(t, "FireExtinguisher", detections[0].Name)
	assert.Len(t, c.Diagnostics(), 1)
	assert.Empty(t, c.Overlay().Boxes)
	assert.Equal(t, uint64(1), c.Metrics().DetectionsAccepted.Load())
}
