package geom

import "fmt"

// LumaFrame is a single-channel (grayscale) image buffer, row-major,
// top-to-bottom, left-to-right — the CORE's only input type (spec §6).
type LumaFrame struct {
	Width, Height int
	Pixels        []uint8 // len == Width*Height
}

// NewLumaFrame allocates a zeroed frame of the given dimensions.
func NewLumaFrame(width, height int) *LumaFrame {
	return &LumaFrame{Width: width, Height: height, Pixels: make([]uint8, width*height)}
}

// Validate checks the frame's internal consistency.
func (f *LumaFrame) Validate() error {
	if f.Width <= 0 || f.Height <= 0 {
		return fmt.Errorf("geom: invalid frame dimensions %dx%d", f.Width, f.Height)
	}
	if len(f.Pixels) != f.Width*f.Height {
		return fmt.Errorf("geom: frame pixel buffer length %d does not match %dx%d", len(f.Pixels), f.Width, f.Height)
	}
	return nil
}

// At returns the luma value at (x,y), clamped to the frame's bounds.
func (f *LumaFrame) At(x, y int) uint8 {
	if x < 0 {
		x = 0
	} else if x >= f.Width {
		x = f.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= f.Height {
		y = f.Height - 1
	}
	return f.Pixels[y*f.Width+x]
}

// Bilinear samples the frame at a sub-pixel position using bilinear
// interpolation. Positions outside the frame clamp to the nearest edge
// pixel rather than extrapolating.
func (f *LumaFrame) Bilinear(p Vec) float64 {
	x0 := int(p.X)
	y0 := int(p.Y)
	fx := p.X - float64(x0)
	fy := p.Y - float64(y0)
	if p.X < 0 {
		x0 = -1
		fx = p.X + 1
	}
	if p.Y < 0 {
		y0 = -1
		fy = p.Y + 1
	}

	v00 := float64(f.At(x0, y0))
	v10 := float64(f.At(x0+1, y0))
	v01 := float64(f.At(x0, y0+1))
	v11 := float64(f.At(x0+1, y0+1))

	top := v00 + (v10-v00)*fx
	bot := v01 + (v11-v01)*fx
	return top + (bot-top)*fy
}
