package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"stationeye/internal/model"
)

const (
	strokeWidth = 2
	fillAlpha   = 0x20
	// baseline offset of the label above the box top edge
	labelOffset = 5
)

// Box is one record as it was drawn.
type Box struct {
	Record model.DetectionRecord `json:"record"`
	Label  string                `json:"label"`
	Color  color.RGBA            `json:"color"`
	Rect   image.Rectangle       `json:"rect"`
}

// Layer is a transparent image in the processed frame's coordinate space.
type Layer struct {
	Image *image.RGBA
	Boxes []Box
}

type Renderer struct {
	classes *model.ClassTable
	size    image.Point
	face    font.Face
}

func NewRenderer(classes *model.ClassTable, width, height int) *Renderer {
	return &Renderer{
		classes: classes,
		size:    image.Pt(width, height),
		face:    basicfont.Face7x13,
	}
}

func (r *Renderer) Size() image.Point {
	return r.size
}

// Render draws every record with confidence above threshold onto a fresh layer.
// Nothing from earlier calls carries over.
func (r *Renderer) Render(records []model.DetectionRecord, threshold float64) *Layer {
	layer := &Layer{
		Image: image.NewRGBA(image.Rectangle{Max: r.size}),
		Boxes: make([]Box, 0, len(records)),
	}
	for _, rec := range records {
		if !rec.Above(threshold) {
			continue
		}
		box := Box{
			Record: rec,
			Label:  Label(r.classes.Name(rec.ClassId), rec.Confidence),
			Color:  r.classes.Color(rec.ClassId),
			Rect:   toRect(rec.BoundingBox),
		}
		r.drawBox(layer.Image, box)
		layer.Boxes = append(layer.Boxes, box)
	}
	return layer
}

// Label formats the class name with the confidence as a percentage to one decimal.
func Label(name string, confidence float64) string {
	return fmt.Sprintf("%s %.1f%%", name, confidence*100)
}

func (r *Renderer) drawBox(dst *image.RGBA, box Box) {
	fill := image.NewUniform(color.NRGBA{R: box.Color.R, G: box.Color.G, B: box.Color.B, A: fillAlpha})
	draw.Draw(dst, box.Rect, fill, image.Point{}, draw.Over)

	stroke := image.NewUniform(box.Color)
	rc := box.Rect
	for _, edge := range []image.Rectangle{
		image.Rect(rc.Min.X, rc.Min.Y, rc.Max.X, rc.Min.Y+strokeWidth),
		image.Rect(rc.Min.X, rc.Max.Y-strokeWidth, rc.Max.X, rc.Max.Y),
		image.Rect(rc.Min.X, rc.Min.Y, rc.Min.X+strokeWidth, rc.Max.Y),
		image.Rect(rc.Max.X-strokeWidth, rc.Min.Y, rc.Max.X, rc.Max.Y),
	} {
		draw.Draw(dst, edge.Intersect(rc), stroke, image.Point{}, draw.Src)
	}

	d := &font.Drawer{
		Dst:  dst,
		Src:  stroke,
		Face: r.face,
		Dot:  fixed.P(rc.Min.X, rc.Min.Y-labelOffset),
	}
	d.DrawString(box.Label)
}

func toRect(b model.BoundingBox) image.Rectangle {
	return image.Rect(
		int(math.Round(b.X1)),
		int(math.Round(b.Y1)),
		int(math.Round(b.X2)),
		int(math.Round(b.Y2)),
	)
}

func EncodePNG(w io.Writer, layer *Layer) error {
	return png.Encode(w, layer.Image)
}
