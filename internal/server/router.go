package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

func (s *Server) SetUpRouter() *gin.Engine {
	router := gin.New()
	router.Use(RequestId())
	router.Use(Logger())
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "ok",
		})
	})
	router.GET("/metrics", gin.WrapH(s.console.Metrics().Handler()))
	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
			return
		}
		c.Status(http.StatusNotFound)
	})

	apiV1 := router.Group("/api/v1")
	s.SetUpApiV1Router(apiV1)

	return router
}

func (s *Server) SetUpApiV1Router(apiV1 *gin.RouterGroup) {
	apiV1.GET("/session", s.handleGetSession)
	apiV1.GET("/settings", s.handleGetSettings)
	apiV1.GET("/detections", s.handleListDetections)
	apiV1.GET("/diagnostics", s.handleListDiagnostics)
	apiV1.GET("/overlay.png", s.handleGetOverlay)
	apiV1.GET("/equipment", s.handleListEquipment)

	v1Authed := apiV1.Group("")
	v1Authed.Use(NeedAuth(s.conf.Auth.JwtSecret))

	v1Authed.POST("/session/start", s.handleStartSession)
	v1Authed.POST("/session/stop", s.handleStopSession)
	v1Authed.PATCH("/settings", s.handleUpdateSettings)
	v1Authed.DELETE("/detections", s.handleClearDetections)
	{
		item := v1Authed.Group("/equipment/:equipment_id")
		item.Use(EquipmentIdFromPath())
		item.PUT("/quantity", s.handleSetEquipmentQuantity)
		item.POST("/toggle", s.handleToggleEquipment)
	}
}
