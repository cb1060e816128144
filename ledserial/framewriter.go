package ledserial

import "io"

// FrameWriter pushes whole frames to the controller as set packets.
// It implements the strip flush operation for the animation side.
type FrameWriter struct {
	W io.Writer
}

// WriteFrame sends one frame of 3-bytes-per-LED pixel data.
func (w FrameWriter) WriteFrame(pix []uint8) error {
	return WriteHostPacket(w.W, SetPacket{Pix: pix})
}
