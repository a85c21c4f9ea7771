package model

import (
	"time"
)

// BoundingBox is expressed in the coordinate space of the processed frame.
type BoundingBox struct {
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

func (b BoundingBox) Width() float64 {
	return b.X2 - b.X1
}

func (b BoundingBox) Height() float64 {
	return b.Y2 - b.Y1
}

// DetectionRecord is one object instance reported by the backend for a single frame.
type DetectionRecord struct {
	ClassId    int     `json:"cls"`
	Confidence float64 `json:"conf"`
	BoundingBox
}

// Above reports whether the record passes the confidence threshold. Records at the
// threshold are rejected.
func (r DetectionRecord) Above(threshold float64) bool {
	return r.Confidence > threshold
}

// Detection is an accepted DetectionRecord as kept in the detection log.
type Detection struct {
	DetectionRecord
	Name      string    `json:"name"`
	Timestamp time.Time `json:"timestamp"`
}

const DiagnosticStatusDetected = "detected"

type DiagnosticEvent struct {
	Id         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Event      string    `json:"event"`
	Confidence float64   `json:"confidence"`
	Status     string    `json:"status"`
}
