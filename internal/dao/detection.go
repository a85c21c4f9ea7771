package dao

import (
	"time"

	"stationeye/internal/model"
)

type DetectionSpec struct {
	ClassId    int               `json:"cls"`
	Name       string            `json:"name"`
	Confidence float64           `json:"conf"`
	Box        model.BoundingBox `json:"box"`
	Timestamp  string            `json:"timestamp"`
}

func FromDetectionModel(m *model.Detection) DetectionSpec {
	return DetectionSpec{
		ClassId:    m.ClassId,
		Name:       m.Name,
		Confidence: m.Confidence,
		Box:        m.BoundingBox,
		Timestamp:  m.Timestamp.Format(time.RFC3339Nano),
	}
}

type ListDetectionsRequest struct {
	Limit int `form:"limit" binding:"omitempty,gte=0"`
}

type ListDetectionsResponse struct {
	Items []DetectionSpec `json:"items"`
	Total int             `json:"total"`
}

type DiagnosticSpec struct {
	Id         int64   `json:"id"`
	Timestamp  string  `json:"timestamp"`
	Event      string  `json:"event"`
	Confidence float64 `json:"confidence"`
	Status     string  `json:"status"`
}

func FromDiagnosticModel(m *model.DiagnosticEvent) DiagnosticSpec {
	return DiagnosticSpec{
		Id:         m.Id,
		Timestamp:  m.Timestamp.Format(time.RFC3339Nano),
		Event:      m.Event,
		Confidence: m.Confidence,
		Status:     m.Status,
	}
}

type ListDiagnosticsResponse struct {
	Items []DiagnosticSpec `json:"items"`
	Total int              `json:"total"`
}
