package model

type EquipmentStatus string

const (
	EquipmentOperational EquipmentStatus = "operational"
	EquipmentMaintenance EquipmentStatus = "maintenance"
)

func (s EquipmentStatus) Toggle() EquipmentStatus {
	if s == EquipmentOperational {
		return EquipmentMaintenance
	}
	return EquipmentOperational
}

type Equipment struct {
	Id          int             `yaml:"id" json:"id"`
	Name        string          `yaml:"name" json:"name"`
	ClassId     int             `yaml:"classId" json:"classId"`
	Description string          `yaml:"description" json:"description"`
	Status      EquipmentStatus `yaml:"status" json:"status"`
	Quantity    int             `yaml:"quantity" json:"quantity"`
	Image       string          `yaml:"image,omitempty" json:"image,omitempty"`
}

func DefaultEquipment() []Equipment {
	return []Equipment{
		{
			Id:          1,
			Name:        "Fire Extinguisher",
			ClassId:     0,
			Description: "Emergency fire suppression system",
			Status:      EquipmentOperational,
			Quantity:    5,
			Image:       "https://images.unsplash.com/photo-1496745109441-36ea45fed379?w=300&h=200&fit=crop",
		},
		{
			Id:          2,
			Name:        "Tool Box",
			ClassId:     1,
			Description: "Maintenance and repair equipment",
			Status:      EquipmentOperational,
			Quantity:    12,
			Image:       "https://images.unsplash.com/photo-1558906050-d6d6aa390fd3?w=300&h=200&fit=crop",
		},
		{
			Id:          3,
			Name:        "Oxygen Tank",
			ClassId:     2,
			Description: "Life support oxygen supply",
			Status:      EquipmentMaintenance,
			Quantity:    8,
			Image:       "https://images.unsplash.com/photo-1585960410426-86a4b41a34f3?w=300&h=200&fit=crop",
		},
	}
}
