package events

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/nsqio/go-nsq"
	"github.com/sirupsen/logrus"

	"stationeye/internal/model"
	"stationeye/pkg/log"
)

const defaultQueueSize = 64

// Message is the body published for every accepted detection.
type Message struct {
	Detection model.Detection       `json:"detection"`
	Event     model.DiagnosticEvent `json:"event"`
}

type Publisher interface {
	Publish(detection model.Detection, event model.DiagnosticEvent)
	Close()
}

type Observer interface {
	EventPublished()
	EventDropped()
}

type nopObserver struct{}

func (nopObserver) EventPublished() {}
func (nopObserver) EventDropped()   {}

// NopPublisher is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(model.Detection, model.DiagnosticEvent) {}
func (NopPublisher) Close()                                         {}

// NSQPublisher hands messages to a background goroutine so the detection path never
// waits on the broker. When the queue is full the message is dropped. Close
// publishes whatever is still queued before stopping the producer.
type NSQPublisher struct {
	topic    string
	publish  func(topic string, body []byte) error
	stop     func()
	queue    chan Message
	wg       sync.WaitGroup
	logger   *logrus.Entry
	observer Observer

	mu        sync.Mutex
	closed    bool
	closeOnce sync.Once
}

func NewNSQPublisher(addr, topic string, observer Observer) (*NSQPublisher, error) {
	producer, err := nsq.NewProducer(addr, nsq.NewConfig())
	if err != nil {
		return nil, fmt.Errorf("create NSQ producer failed: %w", err)
	}
	logger := log.ComponentLogger("events")
	producer.SetLogger(&nsqLogger{logger: logger}, nsq.LogLevelWarning)
	return newPublisher(topic, producer.Publish, producer.Stop, observer, logger, defaultQueueSize), nil
}

func newPublisher(topic string, publish func(string, []byte) error, stop func(),
	observer Observer, logger *logrus.Entry, queueSize int) *NSQPublisher {
	if observer == nil {
		observer = nopObserver{}
	}
	p := &NSQPublisher{
		topic:    topic,
		publish:  publish,
		stop:     stop,
		queue:    make(chan Message, queueSize),
		logger:   logger,
		observer: observer,
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.run()
	}()
	return p
}

func (p *NSQPublisher) Publish(detection model.Detection, event model.DiagnosticEvent) {
	msg := Message{Detection: detection, Event: event}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		p.observer.EventDropped()
		return
	}
	select {
	case p.queue <- msg:
	default:
		p.observer.EventDropped()
		p.logger.Warnf("event dropped, queue is full")
	}
}

// run exits once Close has closed the queue and every queued message is handled.
func (p *NSQPublisher) run() {
	for msg := range p.queue {
		body, err := json.Marshal(&msg)
		if err != nil {
			p.observer.EventDropped()
			p.logger.WithError(err).Error("marshal event")
			continue
		}
		if err := p.publish(p.topic, body); err != nil {
			p.observer.EventDropped()
			p.logger.WithError(err).Errorf("publish to NSQ failed, event id: %d", msg.Event.Id)
			continue
		}
		p.observer.EventPublished()
	}
}

func (p *NSQPublisher) Close() {
	p.closeOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.queue)
		p.mu.Unlock()

		p.wg.Wait()
		if p.stop != nil {
			p.stop()
		}
	})
}

type nsqLogger struct {
	logger *logrus.Entry
}

func (l *nsqLogger) Output(calldepth int, s string) error {
	l.logger.Debug(strings.TrimSpace(s))
	return nil
}

// LogPublisher writes every accepted detection to the log.
type LogPublisher struct {
	Logger *logrus.Entry
}

func (p LogPublisher) Publish(detection model.Detection, event model.DiagnosticEvent) {
	p.Logger.WithFields(logrus.Fields{
		"id":   event.Id,
		"cls":  detection.ClassId,
		"conf": fmt.Sprintf("%.3f", detection.Confidence),
		"box":  fmt.Sprintf("%.0f,%.0f,%.0f,%.0f", detection.X1, detection.Y1, detection.X2, detection.Y2),
	}).Info(event.Event)
}

func (LogPublisher) Close() {}

type multiPublisher []Publisher

// Fanout publishes to every publisher in order.
func Fanout(publishers ...Publisher) Publisher {
	if len(publishers) == 1 {
		return publishers[0]
	}
	return multiPublisher(publishers)
}

func (m multiPublisher) Publish(detection model.Detection, event model.DiagnosticEvent) {
	for _, p := range m {
		p.Publish(detection, event)
	}
}

func (m multiPublisher) Close() {
	for _, p := range m {
		p.Close()
	}
}
