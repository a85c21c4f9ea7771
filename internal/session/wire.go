package session

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math"

	"stationeye/internal/model"
)

type wireDetection struct {
	Cls  *float64 `json:"cls"`
	Conf *float64 `json:"conf"`
	X1   *float64 `json:"x1"`
	Y1   *float64 `json:"y1"`
	X2   *float64 `json:"x2"`
	Y2   *float64 `json:"y2"`
}

// DecodeDetections parses one inbound message: a JSON array of
// {cls, conf, x1, y1, x2, y2} objects. Any other shape is ErrDecode.
func DecodeDetections(payload []byte) ([]model.DetectionRecord, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: payload is not a list", ErrDecode)
	}

	var wire []wireDetection
	if err := json.Unmarshal(trimmed, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	records := make([]model.DetectionRecord, 0, len(wire))
	for i, w := range wire {
		if w.Cls == nil || w.Conf == nil || w.X1 == nil || w.Y1 == nil || w.X2 == nil || w.Y2 == nil {
			return nil, fmt.Errorf("%w: detection %d is missing fields", ErrDecode, i)
		}
		cls := *w.Cls
		if cls < 0 || cls > math.MaxInt32 || cls != math.Trunc(cls) {
			return nil, fmt.Errorf("%w: detection %d has invalid class %v", ErrDecode, i, cls)
		}
		records = append(records, model.DetectionRecord{
			ClassId:    int(cls),
			Confidence: *w.Conf,
			BoundingBox: model.BoundingBox{
				X1: *w.X1,
				Y1: *w.Y1,
				X2: *w.X2,
				Y2: *w.Y2,
			},
		})
	}
	return records, nil
}

// EncodeFrame produces the outbound message for one JPEG frame: bare base64, no
// data URL prefix and no envelope.
func EncodeFrame(jpeg []byte) []byte {
	out := make([]byte, base64.StdEncoding.EncodedLen(len(jpeg)))
	base64.StdEncoding.Encode(out, jpeg)
	return out
}
