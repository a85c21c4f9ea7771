package model

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

const (
	UnknownClassName  = "Unknown"
	DefaultClassColor = "#2EFFFF"
)

type Class struct {
	Name  string `yaml:"name" json:"name"`
	Color string `yaml:"color" json:"color"`
}

// ClassTable maps backend class ids to display names and colors. The id is the
// index into the ordered list.
type ClassTable struct {
	classes  []Class
	colors   []color.RGBA
	fallback color.RGBA
}

func DefaultClasses() []Class {
	return []Class{
		{Name: "FireExtinguisher", Color: "#2EFFFF"},
		{Name: "ToolBox", Color: "#FF9F2E"},
		{Name: "OxygenTank", Color: "#FF4747"},
	}
}

func NewClassTable(classes []Class) (*ClassTable, error) {
	fallback, err := ParseHexColor(DefaultClassColor)
	if err != nil {
		return nil, err
	}
	t := &ClassTable{
		classes:  make([]Class, len(classes)),
		colors:   make([]color.RGBA, len(classes)),
		fallback: fallback,
	}
	for i, c := range classes {
		if c.Name == "" {
			return nil, fmt.Errorf("class %d: empty name", i)
		}
		col := fallback
		if c.Color != "" {
			col, err = ParseHexColor(c.Color)
			if err != nil {
				return nil, fmt.Errorf("class %s: %w", c.Name, err)
			}
		}
		t.classes[i] = c
		t.colors[i] = col
	}
	return t, nil
}

func (t *ClassTable) Len() int {
	return len(t.classes)
}

func (t *ClassTable) known(id int) bool {
	return id >= 0 && id < len(t.classes)
}

func (t *ClassTable) Name(id int) string {
	if !t.known(id) {
		return UnknownClassName
	}
	return t.classes[id].Name
}

func (t *ClassTable) Color(id int) color.RGBA {
	if !t.known(id) {
		return t.fallback
	}
	return t.colors[id]
}

// ParseHexColor accepts "#RRGGBB" or "RRGGBB".
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
