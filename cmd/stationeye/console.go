package main

import (
	"context"
	"fmt"
	"image"

	"github.com/sirupsen/logrus"

	"stationeye/internal/camera"
	"stationeye/internal/config"
	"stationeye/internal/console"
	"stationeye/internal/events"
	"stationeye/internal/metrics"
	"stationeye/internal/session"
	"stationeye/pkg/log"
)

func cameraFactory(conf *config.Config) console.CameraFactory {
	return func(ctx context.Context, request image.Point) (session.Camera, error) {
		cam, err := camera.Open(camera.Options{
			Device:      conf.Camera.Device,
			Request:     request,
			FrameSize:   image.Pt(conf.Capture.FrameWidth, conf.Capture.FrameHeight),
			JPEGQuality: conf.Capture.JPEGQuality,
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", session.ErrCaptureDenied, err)
		}
		logrus.Infof("camera %d opened, requested %v, delivering %v", conf.Camera.Device, request, cam.Size())
		return cam, nil
	}
}

// newConsole wires the camera, the metrics and the configured publishers. extra
// publishers receive every accepted detection alongside NSQ.
func newConsole(conf *config.Config, extra ...events.Publisher) (*console.Console, error) {
	m := metrics.New()
	publishers := extra
	if conf.NSQ.NSQDAddr != "" {
		p, err := events.NewNSQPublisher(conf.NSQ.NSQDAddr, conf.NSQ.Topic, m)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, p)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if len(publishers) > 0 {
		publisher = events.Fanout(publishers...)
	}
	c, err := console.New(console.Options{
		Config:    conf,
		Camera:    cameraFactory(conf),
		Publisher: publisher,
		Metrics:   m,
	})
	if err != nil {
		publisher.Close()
		return nil, err
	}
	log.ComponentLogger("console").Infof("detection backend: %s", c.Status().Addr)
	return c, nil
}
