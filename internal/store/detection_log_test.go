package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stationeye/internal/model"
)

func detection(i int) model.Detection {
	return model.Detection{
		DetectionRecord: model.DetectionRecord{
			ClassId:     i % 3,
			Confidence:  0.6,
			BoundingBox: model.BoundingBox{X1: float64(i), Y1: 0, X2: float64(i + 10), Y2: 10},
		},
		Name: fmt.Sprintf("obj-%d", i),
	}
}

func TestDetectionLog_AppendKeepsNewestFirst(t *testing.T) {
	t.Parallel()

	l := NewDetectionLog(0, 0)
	for i := 0; i < 51; i++ {
		l.Append(detection(i))
	}

	detections := l.Detections(0)
	require.Len(t, detections, 50)
	for i, d := range detections {
		assert.Equal(t, fmt.Sprintf("obj-%d", 50-i), d.Name)
	}

	diagnostics := l.Diagnostics()
	require.Len(t, diagnostics, 20)
	for i, e := range diagnostics {
		assert.Equal(t, fmt.Sprintf("Detected obj-%d", 50-i), e.Event)
		assert.Equal(t, model.DiagnosticStatusDetected, e.Status)
		assert.Equal(t, 0.6, e.Confidence)
	}
}

func TestDetectionLog_DiagnosticsCapAfter21(t *testing.T) {
	t.Parallel()

	l := NewDetectionLog(0, 0)
	for i := 0; i < 21; i++ {
		l.Append(detection(i))
	}

	diagnostics := l.Diagnostics()
	require.Len(t, diagnostics, 20)
	assert.Equal(t, "Detected obj-20", diagnostics[0].Event)
	assert.Equal(t, "Detected obj-1", diagnostics[19].Event)
	assert.Len(t, l.Detections(0), 21)
}

func TestDetectionLog_IdsAreMonotonic(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	l := NewDetectionLog(0, 0)
	l.now = func() time.Time { return fixed }

	first := l.Append(detection(1))
	second := l.Append(detection(2))
	third := l.Append(detection(3))

	assert.Equal(t, fixed.UnixMilli(), first.Id)
	assert.Equal(t, first.Id+1, second.Id)
	assert.Equal(t, second.Id+1, third.Id)
	assert.Equal(t, fixed, l.Detections(1)[0].Timestamp)
}

func TestDetectionLog_KeepsGivenTimestamp(t *testing.T) {
	t.Parallel()

	l := NewDetectionLog(0, 0)
	d := detection(1)
	d.Timestamp = time.Date(2020, 5, 5, 0, 0, 0, 0, time.UTC)
	l.Append(d)

	assert.Equal(t, d.Timestamp, l.Detections(0)[0].Timestamp)
}

func TestDetectionLog_Clear(t *testing.T) {
	t.Parallel()

	l := NewDetectionLog(0, 0)
	for i := 0; i < 5; i++ {
		l.Append(detection(i))
	}
	l.Clear()

	detections, diagnostics := l.snapshot()
	assert.Empty(t, detections)
	assert.Empty(t, diagnostics)
	assert.Empty(t, l.Detections(10))
}

func TestDetectionLog_Limit(t *testing.T) {
	t.Parallel()

	l := NewDetectionLog(0, 0)
	for i := 0; i < 15; i++ {
		l.Append(detection(i))
	}

	recent := l.Detections(10)
	require.Len(t, recent, 10)
	assert.Equal(t, "obj-14", recent[0].Name)
	assert.Equal(t, "obj-5", recent[9].Name)
}

func TestDetectionLog_ReadsAreCopies(t *testing.T) {
	t.Parallel()

	l := NewDetectionLog(0, 0)
	l.Append(detection(1))

	got := l.Detections(0)
	got[0].Name = "mutated"

	assert.Equal(t, "obj-1", l.Detections(0)[0].Name)
}

func TestDetectionLog_ConcurrentAppendKeepsListsInStep(t *testing.T) {
	t.Parallel()

	l := NewDetectionLog(5, 5)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				l.Append(detection(i*100 + j))
				detections, diagnostics := l.snapshot()
				if assert.NotEmpty(t, detections) && assert.NotEmpty(t, diagnostics) {
					assert.Equal(t, "Detected "+detections[0].Name, diagnostics[0].Event)
				}
			}
		}(i)
	}
	wg.Wait()

	detections, diagnostics := l.snapshot()
	assert.Len(t, detections, 5)
	assert.Len(t, diagnostics, 5)
}

// snapshot reads both lists under one lock.
func (l *DetectionLog) snapshot() ([]model.Detection, []model.DiagnosticEvent) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	detections := make([]model.Detection, len(l.detections))
	copy(detections, l.detections)
	diagnostics := make([]model.DiagnosticEvent, len(l.diagnostics))
	copy(diagnostics, l.diagnostics)
	return detections, diagnostics
}
