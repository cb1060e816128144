// Package led holds the in-memory model of an addressable LED strip:
// colors, the frame buffer, and the flush boundary towards hardware.
package led

import "io"

// LEDs is one frame for a strip of LEDs, one RGB triple per pixel.
// Writes accumulate in the buffer; nothing reaches hardware until the
// frame is flushed through a FrameWriter in one piece.
type LEDs []RGB

// NewLEDs creates a frame of numLEDs pixels, initialized to black.
func NewLEDs(numLEDs int) LEDs {
	return make(LEDs, numLEDs)
}

// Fill sets every pixel to c.
func (l LEDs) Fill(c RGB) {
	for i := range l {
		l[i] = c
	}
}

// Set sets the color of the pixel at the given index.
func (l LEDs) Set(i int, c RGB) {
	l[i] = c
}

// At returns the color of the pixel at the given index.
func (l LEDs) At(i int) RGB {
	return l[i]
}

// AsPixels flattens the frame into 3 bytes per LED in channel order
// R, G, B. The returned slice is a copy; mutating it does not touch
// the frame.
func (l LEDs) AsPixels() []uint8 {
	pix := make([]uint8, 0, 3*len(l))
	for _, c := range l {
		pix = append(pix, c[0], c[1], c[2])
	}
	return pix
}

// WriteTo implements io.WriterTo. It writes the frame as a series of
// R, G, B byte triples.
func (l LEDs) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for _, c := range l {
		n, err := w.Write(c[:])
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

// FrameWriter commits a full frame of pixel data to a strip. The pixel
// slice is the AsPixels flattening of an LEDs buffer; a write either
// transfers the whole frame or fails.
type FrameWriter interface {
	WriteFrame(pix []uint8) error
}

// Dimmer is a FrameWriter that scales every channel by a fixed
// brightness factor in [0, 1] before passing the frame on. It stands in
// for the global brightness setting of strips that lack one in
// hardware.
type Dimmer struct {
	W     FrameWriter
	Scale float64
}

func (d Dimmer) WriteFrame(pix []uint8) error {
	for i, p := range pix {
		pix[i] = uint8(float64(p) * d.Scale)
	}
	return d.W.WriteFrame(pix)
}
