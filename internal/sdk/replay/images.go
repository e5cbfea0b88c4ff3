package replay

import (
	"context"
	"hash/fnv"
	"image"
	"image/color"
	"math"

	"positioning-bridge/internal/model"
)

const (
	iconSize    = 32
	pixelsPerM  = 4
	maxMapPixel = 1024
)

var (
	mapBackground = color.NRGBA{R: 0xf4, G: 0xf4, B: 0xf0, A: 0xff}
	mapGrid       = color.NRGBA{R: 0xd8, G: 0xd8, B: 0xd0, A: 0xff}
	mapWall       = color.NRGBA{R: 0x40, G: 0x40, B: 0x40, A: 0xff}
)

// FetchPOICategoryIcon draws a disc in a colour derived from the category
// code. Unselected icons are drawn as a ring.
func (s *SDK) FetchPOICategoryIcon(ctx context.Context, category model.POICategory, selected bool) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	known := false
	for _, c := range s.categories {
		if c.ID == category.ID {
			known = true
			break
		}
	}
	if !known {
		return nil, notFound("category", category.ID)
	}

	fill := categoryColor(category.Code)
	img := image.NewNRGBA(image.Rect(0, 0, iconSize, iconSize))
	const r = iconSize/2 - 1
	for y := range iconSize {
		for x := range iconSize {
			d := math.Hypot(float64(x)-iconSize/2+0.5, float64(y)-iconSize/2+0.5)
			if d <= r && (selected || d > r-4) {
				img.SetNRGBA(x, y, fill)
			}
		}
	}
	return img, nil
}

func categoryColor(code string) color.NRGBA {
	h := fnv.New32a()
	h.Write([]byte(code))
	sum := h.Sum32()
	return color.NRGBA{R: uint8(sum >> 16), G: uint8(sum >> 8), B: uint8(sum), A: 0xff}
}

// FetchMapFromFloor renders the floor's building footprint with a grid
// line every five metres.
func (s *SDK) FetchMapFromFloor(ctx context.Context, floor model.Floor) (image.Image, error) {
	st, err := s.site(ctx, floor.BuildingID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, f := range st.floors {
		if f.ID == floor.ID {
			found = true
			break
		}
	}
	if !found {
		return nil, notFound("floor", floor.ID)
	}

	w := mapPixels(st.building.Dimensions.Width)
	h := mapPixels(st.building.Dimensions.Height)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			c := mapBackground
			switch {
			case x == 0 || y == 0 || x == w-1 || y == h-1:
				c = mapWall
			case x%(5*pixelsPerM) == 0 || y%(5*pixelsPerM) == 0:
				c = mapGrid
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img, nil
}

func mapPixels(metres float64) int {
	px := int(math.Ceil(metres * pixelsPerM))
	return max(1, min(px, maxMapPixel))
}
