package store

import (
	"fmt"
	"sync"
	"time"

	"stationeye/internal/model"
)

const (
	DefaultDetectionCap  = 50
	DefaultDiagnosticCap = 20
)

// DetectionLog keeps the most recent accepted detections and the diagnostic events
// derived from them, both newest first. The two lists are only changed together.
type DetectionLog struct {
	mu            sync.RWMutex
	detectionCap  int
	diagnosticCap int
	detections    []model.Detection
	diagnostics   []model.DiagnosticEvent
	lastId        int64
	now           func() time.Time
}

func NewDetectionLog(detectionCap, diagnosticCap int) *DetectionLog {
	if detectionCap <= 0 {
		detectionCap = DefaultDetectionCap
	}
	if diagnosticCap <= 0 {
		diagnosticCap = DefaultDiagnosticCap
	}
	return &DetectionLog{
		detectionCap:  detectionCap,
		diagnosticCap: diagnosticCap,
		now:           time.Now,
	}
}

// Append records d and synthesizes its diagnostic event. A zero Timestamp is
// replaced by the current time.
func (l *DetectionLog) Append(d model.Detection) model.DiagnosticEvent {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if d.Timestamp.IsZero() {
		d.Timestamp = now
	}

	// millisecond clock, bumped so ids stay unique within the same millisecond
	id := now.UnixMilli()
	if id <= l.lastId {
		id = l.lastId + 1
	}
	l.lastId = id

	event := model.DiagnosticEvent{
		Id:         id,
		Timestamp:  now,
		Event:      fmt.Sprintf("Detected %s", d.Name),
		Confidence: d.Confidence,
		Status:     model.DiagnosticStatusDetected,
	}

	l.detections = prepend(l.detections, d, l.detectionCap)
	l.diagnostics = prepend(l.diagnostics, event, l.diagnosticCap)
	return event
}

func (l *DetectionLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.detections = nil
	l.diagnostics = nil
}

// Detections returns up to limit entries, newest first. limit <= 0 returns all.
func (l *DetectionLog) Detections(limit int) []model.Detection {
	l.mu.RLock()
	defer l.mu.RUnlock()
	n := len(l.detections)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]model.Detection, n)
	copy(out, l.detections[:n])
	return out
}

func (l *DetectionLog) Diagnostics() []model.DiagnosticEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]model.DiagnosticEvent, len(l.diagnostics))
	copy(out, l.diagnostics)
	return out
}

func prepend[T any](list []T, v T, limit int) []T {
	n := len(list) + 1
	if n > limit {
		n = limit
	}
	out := make([]T, n)
	out[0] = v
	copy(out[1:], list)
	return out
}
