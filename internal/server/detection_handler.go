package server

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"stationeye/internal/dao"
	"stationeye/internal/overlay"
)

// handleListDetections returns the detection log, newest first. limit=0 returns
// everything retained.
func (s *Server) handleListDetections(c *gin.Context) {
	var req dao.ListDetectionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}

	detections := s.console.Detections(req.Limit)
	resp := dao.ListDetectionsResponse{
		Items: make([]dao.DetectionSpec, 0, len(detections)),
		Total: len(detections),
	}
	for i := range detections {
		resp.Items = append(resp.Items, dao.FromDetectionModel(&detections[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleClearDetections(c *gin.Context) {
	s.console.ClearLog()
	c.Status(http.StatusNoContent)
}

func (s *Server) handleListDiagnostics(c *gin.Context) {
	events := s.console.Diagnostics()
	resp := dao.ListDiagnosticsResponse{
		Items: make([]dao.DiagnosticSpec, 0, len(events)),
		Total: len(events),
	}
	for i := range events {
		resp.Items = append(resp.Items, dao.FromDiagnosticModel(&events[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// handleGetOverlay renders the latest overlay layer as a transparent PNG.
func (s *Server) handleGetOverlay(c *gin.Context) {
	var buf bytes.Buffer
	if err := overlay.EncodePNG(&buf, s.console.Overlay()); err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}
