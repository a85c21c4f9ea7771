package model

import (
	"fmt"
	"image"
)

type Resolution string

const (
	Resolution640x480   Resolution = "640x480"
	Resolution1280x720  Resolution = "1280x720"
	Resolution1920x1080 Resolution = "1920x1080"
)

var resolutionSizes = map[Resolution]image.Point{
	Resolution640x480:   {X: 640, Y: 480},
	Resolution1280x720:  {X: 1280, Y: 720},
	Resolution1920x1080: {X: 1920, Y: 1080},
}

func (r Resolution) Valid() bool {
	_, ok := resolutionSizes[r]
	return ok
}

// Size returns the capture size requested from the camera for this resolution.
func (r Resolution) Size() (image.Point, error) {
	p, ok := resolutionSizes[r]
	if !ok {
		return image.Point{}, fmt.Errorf("unknown resolution %q", r)
	}
	return p, nil
}

const (
	DefaultConfidence = 0.5
	DefaultTheme      = "space"
)

type Settings struct {
	Confidence float64    `yaml:"confidence" json:"confidence"`
	Resolution Resolution `yaml:"resolution" json:"resolution"`
	Theme      string     `yaml:"theme" json:"theme"`
}

func DefaultSettings() Settings {
	return Settings{
		Confidence: DefaultConfidence,
		Resolution: Resolution640x480,
		Theme:      DefaultTheme,
	}
}

// SettingsPatch is a partial update; nil fields are left unchanged.
type SettingsPatch struct {
	Confidence *float64    `json:"confidence,omitempty" binding:"omitempty,gte=0,lte=1"`
	Resolution *Resolution `json:"resolution,omitempty" binding:"omitempty,resolution"`
	Theme      *string     `json:"theme,omitempty" binding:"omitempty,max=32"`
}

func (s Settings) Apply(p SettingsPatch) Settings {
	if p.Confidence != nil {
		s.Confidence = *p.Confidence
	}
	if p.Resolution != nil {
		s.Resolution = *p.Resolution
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	return s
}
