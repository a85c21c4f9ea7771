package dao

import "stationeye/internal/model"

type ListEquipmentRequest struct {
	Query string `form:"q" binding:"omitempty,max=64"`
}

type ListEquipmentResponse struct {
	Items []model.Equipment `json:"items"`
	Total int               `json:"total"`
}

type SetQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}
