package config

import (
	"fmt"
	"os"
	"strings"

	"stationeye/internal/model"
)

const (
	EnvBackendURL = "STATIONEYE_BACKEND_URL"
	EnvJwtSecret  = "STATIONEYE_JWT_SECRET"
)

type CameraConfig struct {
	Device int `yaml:"device"`
}

type CaptureConfig struct {
	IntervalMs  int `yaml:"intervalMs"`
	FrameWidth  int `yaml:"frameWidth"`
	FrameHeight int `yaml:"frameHeight"`
	JPEGQuality int `yaml:"jpegQuality"`
}

type LogConfig struct {
	DetectionCap  int `yaml:"detectionCap"`
	DiagnosticCap int `yaml:"diagnosticCap"`
}

type NSQConfig struct {
	NSQDAddr string `yaml:"nsqdAddr"`
	Topic    string `yaml:"topic"`
}

// AuthConfig protects the mutating API routes. An empty JwtSecret leaves them open.
type AuthConfig struct {
	JwtSecret string `yaml:"jwtSecret"`
}

type Config struct {
	BackendURL string            `yaml:"backendURL"`
	Addr       string            `yaml:"addr"`
	Camera     CameraConfig      `yaml:"camera"`
	Capture    CaptureConfig     `yaml:"capture"`
	Log        LogConfig         `yaml:"log"`
	Classes    []model.Class     `yaml:"classes"`
	Settings   model.Settings    `yaml:"settings"`
	Equipment  []model.Equipment `yaml:"equipment"`
	NSQ        NSQConfig         `yaml:"nsq"`
	Auth       AuthConfig        `yaml:"auth"`
}

func DefaultConfig() *Config {
	return &Config{
		BackendURL: "http://localhost:8000",
		Addr:       "127.0.0.1:8090",
		Capture: CaptureConfig{
			IntervalMs:  100,
			FrameWidth:  640,
			FrameHeight: 480,
			JPEGQuality: 80,
		},
		Log: LogConfig{
			DetectionCap:  50,
			DiagnosticCap: 20,
		},
		Classes:   model.DefaultClasses(),
		Settings:  model.DefaultSettings(),
		Equipment: model.DefaultEquipment(),
		NSQ: NSQConfig{
			Topic: "station_detections",
		},
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.BackendURL) == "" {
		return fmt.Errorf("backendURL is required")
	}
	if c.Capture.IntervalMs <= 0 {
		return fmt.Errorf("capture.intervalMs must be positive, got %d", c.Capture.IntervalMs)
	}
	if c.Capture.FrameWidth <= 0 || c.Capture.FrameHeight <= 0 {
		return fmt.Errorf("capture frame size must be positive, got %dx%d", c.Capture.FrameWidth, c.Capture.FrameHeight)
	}
	if c.Capture.JPEGQuality < 1 || c.Capture.JPEGQuality > 100 {
		return fmt.Errorf("capture.jpegQuality must be within [1, 100], got %d", c.Capture.JPEGQuality)
	}
	if c.Settings.Confidence < 0 || c.Settings.Confidence > 1 {
		return fmt.Errorf("settings.confidence must be within [0, 1], got %v", c.Settings.Confidence)
	}
	if !c.Settings.Resolution.Valid() {
		return fmt.Errorf("settings.resolution %q is not supported", c.Settings.Resolution)
	}
	if len(c.Classes) == 0 {
		return fmt.Errorf("at least one class is required")
	}
	return nil
}

// InitConfig loads configPath over the defaults. The backend URL and the JWT secret
// from the environment, when set, win over the file.
func InitConfig(configPath string) (*Config, error) {
	conf := DefaultConfig()

	if configPath != "" {
		if err := LoadYAMLConfig(configPath, conf); err != nil {
			return nil, err
		}
	}
	if v := os.Getenv(EnvBackendURL); v != "" {
		conf.BackendURL = v
	}
	if v := os.Getenv(EnvJwtSecret); v != "" {
		conf.Auth.JwtSecret = v
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return conf, nil
}
