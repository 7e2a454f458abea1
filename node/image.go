package node

import (
	"tis100/proto"
	"tis100/word"
)

// Pixel is one of the four palette values an image buffer cell can hold.
type Pixel int

const (
	Black Pixel = iota
	Dark
	Light
	White
)

type imgState int

const (
	imgAwaitCommand imgState = iota
	imgAwaitX
	imgAwaitY
	imgAwaitLength
)

// ImageOutput interprets a serial stream of command words from its
// upward neighbor as a raster-draw protocol: a negative word starts a
// three-word absolute move (-cmd, x, y); a non-negative word is the first
// half of a (color, length) horizontal-run pair. This is the literal
// reading of §4.5 — the reference game's own source only renders an
// already-built buffer, never parses one, so there is nothing to recover
// the wire format from beyond the spec's own description.
type ImageOutput struct {
	base

	Width, Height int
	Expected      [][]Pixel
	Received      [][]Pixel

	state        imgState
	cx, cy       int
	pendingX     int
	pendingColor word.Word
}

// NewImageOutput builds an ImageOutput of the given fixed dimensions,
// cursor at the origin, buffer all-black.
func NewImageOutput(x, y, width, height int) *ImageOutput {
	v := &ImageOutput{Width: width, Height: height}
	v.x, v.y = x, y
	v.Received = make([][]Pixel, height)
	for i := range v.Received {
		v.Received[i] = make([]Pixel, width)
	}
	return v
}

func (v *ImageOutput) Kind() Kind         { return KindImageOutput }
func (v *ImageOutput) Activity() Activity { return Read }
func (v *ImageOutput) Step()              {}
func (v *ImageOutput) Halted() *Halt      { return nil }

func (v *ImageOutput) Clone() Node {
	c := &ImageOutput{
		Width: v.Width, Height: v.Height,
		Expected: v.Expected,
		Received: make([][]Pixel, len(v.Received)),
		state:    v.state, cx: v.cx, cy: v.cy,
		pendingX: v.pendingX, pendingColor: v.pendingColor,
	}
	for i, row := range v.Received {
		c.Received[i] = append([]Pixel(nil), row...)
	}
	c.x, c.y = v.x, v.y
	return c
}

func (v *ImageOutput) Offer() (word.Word, proto.Direction, bool) { return 0, proto.Nil, false }
func (v *ImageOutput) Requesting() (proto.Direction, bool)       { return proto.Up, true }
func (v *ImageOutput) Drain(proto.Direction)                     {}

func (v *ImageOutput) Latch(val word.Word, dir proto.Direction) {
	switch v.state {
	case imgAwaitCommand:
		if val.Int() < 0 {
			v.state = imgAwaitX
			return
		}
		v.pendingColor = val
		v.state = imgAwaitLength
	case imgAwaitX:
		v.pendingX = val.Int()
		v.state = imgAwaitY
	case imgAwaitY:
		v.cx, v.cy = v.pendingX, val.Int()
		v.state = imgAwaitCommand
	case imgAwaitLength:
		v.drawRun(v.pendingColor, val.Int())
		v.state = imgAwaitCommand
	}
}

// drawRun paints length pixels of color starting at the cursor, clipping
// silently at the buffer edges and never resizing it, per §4.5.
func (v *ImageOutput) drawRun(color word.Word, length int) {
	defer func() { v.cx += length }()

	if v.cy < 0 || v.cy >= v.Height || length <= 0 {
		return
	}
	p := Pixel(color.Int())
	for i := 0; i < length; i++ {
		x := v.cx + i
		if x < 0 || x >= v.Width {
			continue
		}
		v.Received[v.cy][x] = p
	}
}
