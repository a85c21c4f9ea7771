package session

import (
	"fmt"
	"net/url"
	"strings"
)

const DetectPath = "/detect"

// DetectURL turns the configured backend base URL into the detection channel
// address: http becomes ws, https becomes wss, and DetectPath is appended.
func DetectURL(base string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(base))
	if err != nil {
		return "", fmt.Errorf("parse backend url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported backend url scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("backend url %q has no host", base)
	}

	u.Path = strings.TrimSuffix(u.Path, "/") + DetectPath
	u.RawPath = ""
	return u.String(), nil
}
