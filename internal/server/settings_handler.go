package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stationeye/internal/model"
)

func (s *Server) handleGetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.console.Settings())
}

// handleUpdateSettings applies a partial update. A new confidence threshold takes
// effect from the next inbound message.
func (s *Server) handleUpdateSettings(c *gin.Context) {
	var patch model.SettingsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}
	c.JSON(http.StatusOK, s.console.UpdateSettings(patch))
}
