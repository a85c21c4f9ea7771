package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stationeye/internal/dao"
	"stationeye/internal/store"
)

const equipmentIdKey = "equipment_id"

func EquipmentIdFromPath() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.Atoi(c.Param("equipment_id"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, ErrorResponse{
				Error: "invalid equipment_id",
			})
			return
		}
		c.Set(equipmentIdKey, id)
		c.Next()
	}
}

func (s *Server) handleListEquipment(c *gin.Context) {
	var req dao.ListEquipmentRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}
	items := s.console.Equipment(req.Query)
	c.JSON(http.StatusOK, dao.ListEquipmentResponse{Items: items, Total: len(items)})
}

// handleSetEquipmentQuantity sets the on-hand count. Negative values are stored as 0.
func (s *Server) handleSetEquipmentQuantity(c *gin.Context) {
	var req dao.SetQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}
	item, err := s.console.SetEquipmentQuantity(c.GetInt(equipmentIdKey), *req.Quantity)
	if err != nil {
		s.writeEquipmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) handleToggleEquipment(c *gin.Context) {
	item, err := s.console.ToggleEquipmentStatus(c.GetInt(equipmentIdKey))
	if err != nil {
		s.writeEquipmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) writeEquipmentError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrEquipmentNotFound) {
		s.writeError(c, http.StatusNotFound, err)
		return
	}
	s.writeError(c, http.StatusInternalServerError, err)
}
