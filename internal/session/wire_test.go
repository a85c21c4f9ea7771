package session

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stationeye/internal/model"
)

func TestDetectURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		base    string
		want    string
		wantErr bool
	}{
		{name: "https", base: "https://api.example.com", want: "wss://api.example.com/detect"},
		{name: "http with port", base: "http://localhost:8000", want: "ws://localhost:8000/detect"},
		{name: "trailing slash", base: "https://api.example.com/", want: "wss://api.example.com/detect"},
		{name: "base path", base: "https://api.example.com/v1", want: "wss://api.example.com/v1/detect"},
		{name: "already ws", base: "ws://10.0.0.2:9000", want: "ws://10.0.0.2:9000/detect"},
		{name: "upper case scheme", base: "HTTPS://api.example.com", want: "wss://api.example.com/detect"},
		{name: "unsupported scheme", base: "ftp://api.example.com", wantErr: true},
		{name: "no scheme", base: "api.example.com", wantErr: true},
		{name: "no host", base: "https://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectURL(tt.base)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeDetections(t *testing.T) {
	t.Parallel()

	records, err := DecodeDetections([]byte(`[
		{"cls": 0, "conf": 0.9, "x1": 10, "y1": 10, "x2": 50, "y2": 50},
		{"cls": 5.0, "conf": 0.9, "x1": 0, "y1": 0, "x2": 1, "y2": 1, "extra": "ignored"}
	]`))
	require.NoError(t, err)
	assert.Equal(t, []model.DetectionRecord{
		{ClassId: 0, Confidence: 0.9, BoundingBox: model.BoundingBox{X1: 10, Y1: 10, X2: 50, Y2: 50}},
		{ClassId: 5, Confidence: 0.9, BoundingBox: model.BoundingBox{X1: 0, Y1: 0, X2: 1, Y2: 1}},
	}, records)

	empty, err := DecodeDetections([]byte(" [] "))
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDecodeDetections_Malformed(t *testing.T) {
	t.Parallel()

	for _, payload := range []string{
		``,
		`null`,
		`{"cls": 0}`,
		`"hello"`,
		`[1, 2, 3]`,
		`[{"cls": 0, "conf": 0.9}]`,
		`[{"cls": "0", "conf": 0.9, "x1": 1, "y1": 1, "x2": 2, "y2": 2}]`,
		`[{"cls": 1.5, "conf": 0.9, "x1": 1, "y1": 1, "x2": 2, "y2": 2}]`,
		`[{"cls": -1, "conf": 0.9, "x1": 1, "y1": 1, "x2": 2, "y2": 2}]`,
		`[{"cls": 1e20, "conf": 0.9, "x1": 1, "y1": 1, "x2": 2, "y2": 2}]`,
		`[{"cls": 2147483648, "conf": 0.9, "x1": 1, "y1": 1, "x2": 2, "y2": 2}]`,
		`[{"cls": 0, "conf": 0.9, "x1": 1, "y1": 1, "x2": 2, "y2": 2}`,
	} {
		_, err := DecodeDetections([]byte(payload))
		assert.ErrorIs(t, err, ErrDecode, "payload %q", payload)
	}
}

func TestEncodeFrame(t *testing.T) {
	t.Parallel()

	jpeg := []byte{0xff, 0xd8, 0x00, 0x01, 0xff, 0xd9}
	out := EncodeFrame(jpeg)

	assert.Equal(t, base64.StdEncoding.EncodeToString(jpeg), string(out))
	assert.NotContains(t, string(out), "data:image")
}
