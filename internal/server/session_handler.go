package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stationeye/internal/session"
)

// handleGetSession reports whether detection is running.
func (s *Server) handleGetSession(c *gin.Context) {
	c.JSON(http.StatusOK, s.console.Status())
}

// handleStartSession acquires the camera and starts opening the detection channel.
// The session becomes active asynchronously; poll GET /session.
func (s *Server) handleStartSession(c *gin.Context) {
	err := s.console.StartSession(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, s.console.Status())
	case errors.Is(err, session.ErrSessionActive), errors.Is(err, session.ErrSessionStopped):
		s.writeError(c, http.StatusConflict, err)
	case errors.Is(err, session.ErrCaptureDenied):
		s.writeError(c, http.StatusForbidden, err)
	default:
		s.writeError(c, http.StatusInternalServerError, err)
	}
}

// handleStopSession releases the camera and the channel. Stopping an idle session
// is not an error.
func (s *Server) handleStopSession(c *gin.Context) {
	s.console.StopSession()
	c.JSON(http.StatusOK, s.console.Status())
}
