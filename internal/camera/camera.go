package camera

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

var ErrClosed = errors.New("camera closed")

type Options struct {
	Device int
	// Request is the capture size asked of the device. The device may ignore it.
	Request image.Point
	// FrameSize is the size of every encoded frame, independent of Request.
	FrameSize   image.Point
	JPEGQuality int
}

// Camera reads frames from a local video device and encodes them as JPEG. Grab and
// Close are serialized, so closing while a grab is in flight is safe.
type Camera struct {
	mu      sync.Mutex
	opts    Options
	video   *gocv.VideoCapture
	frame   gocv.Mat
	resized gocv.Mat
	closed  bool
}

func Open(opts Options) (*Camera, error) {
	video, err := gocv.OpenVideoCapture(opts.Device)
	if err != nil {
		return nil, fmt.Errorf("open camera %d: %w", opts.Device, err)
	}
	if !video.IsOpened() {
		video.Close()
		return nil, fmt.Errorf("camera %d is not available", opts.Device)
	}
	if opts.Request.X > 0 && opts.Request.Y > 0 {
		video.Set(gocv.VideoCaptureFrameWidth, float64(opts.Request.X))
		video.Set(gocv.VideoCaptureFrameHeight, float64(opts.Request.Y))
	}

	return &Camera{
		opts:    opts,
		video:   video,
		frame:   gocv.NewMat(),
		resized: gocv.NewMat(),
	}, nil
}

// Size reports the capture size the device actually delivers.
func (c *Camera) Size() image.Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return image.Point{}
	}
	return image.Pt(int(c.video.Get(gocv.VideoCaptureFrameWidth)), int(c.video.Get(gocv.VideoCaptureFrameHeight)))
}

func (c *Camera) Grab() ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrClosed
	}

	if ok := c.video.Read(&c.frame); !ok {
		return nil, errors.New("read frame failed")
	}
	if c.frame.Empty() {
		return nil, errors.New("empty frame")
	}

	gocv.Resize(c.frame, &c.resized, c.opts.FrameSize, 0, 0, gocv.InterpolationLinear)
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, c.resized, []int{gocv.IMWriteJpegQuality, c.opts.JPEGQuality})
	if err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}
	defer buf.Close()
	return bytes.Clone(buf.GetBytes()), nil
}

func (c *Camera) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.frame.Close()
	c.resized.Close()
	return c.video.Close()
}
