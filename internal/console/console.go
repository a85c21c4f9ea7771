package console

import (
	"context"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"stationeye/internal/config"
	"stationeye/internal/events"
	"stationeye/internal/metrics"
	"stationeye/internal/model"
	"stationeye/internal/overlay"
	"stationeye/internal/session"
	"stationeye/internal/store"
	"stationeye/pkg/log"
)

// CameraFactory acquires the camera, asking for the given capture size.
type CameraFactory func(ctx context.Context, request image.Point) (session.Camera, error)

type Options struct {
	Config    *config.Config
	Camera    CameraFactory
	Dialer    session.Dialer
	Publisher events.Publisher
	Metrics   *metrics.Metrics
}

type Status struct {
	Active bool   `json:"active"`
	State  string `json:"state"`
	Addr   string `json:"addr"`
}

// Console owns the detection session and the in-memory state the views read. Views
// change that state only through Console's methods.
type Console struct {
	conf      *config.Config
	addr      string
	logger    *logrus.Entry
	classes   *model.ClassTable
	log       *store.DetectionLog
	settings  *store.SettingsStore
	inventory *store.Inventory
	renderer  *overlay.Renderer
	metrics   *metrics.Metrics
	publisher events.Publisher
	session   *session.Session

	overlayMu sync.RWMutex
	overlay   *overlay.Layer
}

func New(opts Options) (*Console, error) {
	conf := opts.Config
	addr, err := session.DetectURL(conf.BackendURL)
	if err != nil {
		return nil, err
	}
	classes, err := model.NewClassTable(conf.Classes)
	if err != nil {
		return nil, fmt.Errorf("class table: %w", err)
	}
	if opts.Camera == nil {
		return nil, fmt.Errorf("camera factory is required")
	}
	dialer := opts.Dialer
	if dialer == nil {
		dialer = session.NewWebsocketDialer(0, 0)
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	c := &Console{
		conf:      conf,
		addr:      addr,
		logger:    log.ComponentLogger("console"),
		classes:   classes,
		log:       store.NewDetectionLog(conf.Log.DetectionCap, conf.Log.DiagnosticCap),
		settings:  store.NewSettingsStore(conf.Settings),
		inventory: store.NewInventory(conf.Equipment),
		renderer:  overlay.NewRenderer(classes, conf.Capture.FrameWidth, conf.Capture.FrameHeight),
		metrics:   m,
		publisher: publisher,
	}
	c.overlay = c.renderer.Render(nil, 0)

	factory := opts.Camera
	c.session = session.New(session.Options{
		Addr: addr,
		Opener: session.CameraOpenerFunc(func(ctx context.Context) (session.Camera, error) {
			request, err := c.settings.Get().Resolution.Size()
			if err != nil {
				request = image.Pt(conf.Capture.FrameWidth, conf.Capture.FrameHeight)
			}
			return factory(ctx, request)
		}),
		Dialer:   dialer,
		Handler:  c,
		Interval: time.Duration(conf.Capture.IntervalMs) * time.Millisecond,
		Observer: m,
		Logger:   log.ComponentLogger("session"),
	})
	return c, nil
}

func (c *Console) Metrics() *metrics.Metrics {
	return c.metrics
}

func (c *Console) StartSession(ctx context.Context) error {
	return c.session.Start(ctx)
}

func (c *Console) StopSession() {
	c.session.Stop()
	c.setOverlay(c.renderer.Render(nil, 0))
}

func (c *Console) Status() Status {
	state := c.session.State()
	return Status{
		Active: state == session.StateOpen,
		State:  state.String(),
		Addr:   c.addr,
	}
}

// HandleDetections renders the records and logs every one above the current
// threshold.
func (c *Console) HandleDetections(records []model.DetectionRecord) {
	c.HandleBatch(session.Batch{Records: records})
}

// HandleBatch is called by the session for each inbound message, in order. Each
// state change goes through batch.Apply, so nothing lands once the session that
// received the batch has stopped.
func (c *Console) HandleBatch(batch session.Batch) {
	threshold := c.settings.Confidence()
	layer := c.renderer.Render(batch.Records, threshold)
	if !batch.Apply(func() { c.setOverlay(layer) }) {
		return
	}

	now := time.Now()
	for _, rec := range batch.Records {
		if !rec.Above(threshold) {
			continue
		}
		d := model.Detection{
			DetectionRecord: rec,
			Name:            c.classes.Name(rec.ClassId),
			Timestamp:       now,
		}
		var event model.DiagnosticEvent
		if !batch.Apply(func() { event = c.log.Append(d) }) {
			c.logger.Debug("session stopped, rest of batch discarded")
			return
		}
		c.metrics.DetectionAccepted()
		c.publisher.Publish(d, event)
		c.logger.Debugf("detected %s, confidence: %.3f", d.Name, d.Confidence)
	}
}

func (c *Console) setOverlay(layer *overlay.Layer) {
	c.overlayMu.Lock()
	c.overlay = layer
	c.overlayMu.Unlock()
}

// Overlay returns the most recently rendered layer. Callers must not modify it.
func (c *Console) Overlay() *overlay.Layer {
	c.overlayMu.RLock()
	defer c.overlayMu.RUnlock()
	return c.overlay
}

func (c *Console) Settings() model.Settings {
	return c.settings.Get()
}

func (c *Console) UpdateSettings(patch model.SettingsPatch) model.Settings {
	s := c.settings.Update(patch)
	c.logger.Infof("settings updated: %+v", s)
	return s
}

func (c *Console) Detections(limit int) []model.Detection {
	return c.log.Detections(limit)
}

func (c *Console) Diagnostics() []model.DiagnosticEvent {
	return c.log.Diagnostics()
}

func (c *Console) ClearLog() {
	c.log.Clear()
}

func (c *Console) Equipment(query string) []model.Equipment {
	return c.inventory.List(query)
}

func (c *Console) SetEquipmentQuantity(id, quantity int) (model.Equipment, error) {
	return c.inventory.SetQuantity(id, quantity)
}

func (c *Console) ToggleEquipmentStatus(id int) (model.Equipment, error) {
	return c.inventory.ToggleStatus(id)
}

// Close stops the session, waits for its goroutines and flushes the publisher.
func (c *Console) Close() {
	c.StopSession()
	c.session.Wait()
	c.publisher.Close()
}
