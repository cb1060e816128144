package led

import (
	"bytes"
	"testing"
)

func TestPackedColorRGB(t *testing.T) {
	tests := []struct {
		name   string
		packed PackedColor
		want   RGB
	}{
		{"Mixed", 0xFFAABB, RGB{255, 170, 187}},
		{"Red", 0xFF0000, RGB{255, 0, 0}},
		{"Yellow", 0xFFAA00, RGB{255, 170, 0}},
		{"Green", 0x00B400, RGB{0, 180, 0}},
		{"Black", 0x000000, RGB{0, 0, 0}},
		{"White", 0xFFFFFF, RGB{255, 255, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.packed.RGB(); got != tt.want {
				t.Errorf("PackedColor(%#06X).RGB() = %v, want %v", uint32(tt.packed), got, tt.want)
			}
		})
	}
}

func TestPackedColorValid(t *testing.T) {
	if !PackedColor(0xFFFFFF).Valid() {
		t.Error("0xFFFFFF should be valid")
	}
	if PackedColor(0x1000000).Valid() {
		t.Error("0x1000000 should not be valid")
	}
}

func TestRGBUnmarshalText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    RGB
		wantErr bool
	}{
		{"WithHash", "#FFAABB", RGB{255, 170, 187}, false},
		{"WithoutHash", "00B400", RGB{0, 180, 0}, false},
		{"Lowercase", "#ffaa00", RGB{255, 170, 0}, false},
		{"TooShort", "#FFF", RGB{}, true},
		{"TooLong", "#FFAABBCC", RGB{}, true},
		{"NotHex", "#GGHHII", RGB{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c RGB
			err := c.UnmarshalText([]byte(tt.text))
			if tt.wantErr {
				if err == nil {
					t.Errorf("UnmarshalText(%q) did not fail", tt.text)
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalText(%q) failed: %v", tt.text, err)
			}
			if c != tt.want {
				t.Errorf("UnmarshalText(%q) = %v, want %v", tt.text, c, tt.want)
			}
		})
	}
}

func TestRGBMarshalText(t *testing.T) {
	text, err := RGB{255, 170, 187}.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText failed: %v", err)
	}
	if string(text) != "#FFAABB" {
		t.Errorf("MarshalText = %q, want %q", text, "#FFAABB")
	}
}

func TestLEDsFillAndPixels(t *testing.T) {
	l := NewLEDs(4)
	l.Fill(RGB{1, 2, 3})
	l.Set(2, RGB{9, 8, 7})

	want := []uint8{1, 2, 3, 1, 2, 3, 9, 8, 7, 1, 2, 3}
	if got := l.AsPixels(); !bytes.Equal(got, want) {
		t.Errorf("AsPixels = %v, want %v", got, want)
	}

	if got := l.At(2); got != (RGB{9, 8, 7}) {
		t.Errorf("At(2) = %v, want {9 8 7}", got)
	}

	// AsPixels must return a copy, not a view of the frame.
	pix := l.AsPixels()
	pix[0] = 0xFF
	if l.At(0) != (RGB{1, 2, 3}) {
		t.Error("mutating AsPixels result changed the frame")
	}
}

func TestLEDsWriteTo(t *testing.T) {
	l := NewLEDs(2)
	l.Set(0, RGB{10, 20, 30})
	l.Set(1, RGB{40, 50, 60})

	var buf bytes.Buffer
	n, err := l.WriteTo(&buf)
	if err != nil {
		t.Fatalf("WriteTo failed: %v", err)
	}
	if n != 6 {
		t.Errorf("WriteTo wrote %d bytes, want 6", n)
	}
	if want := []byte{10, 20, 30, 40, 50, 60}; !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("WriteTo wrote %v, want %v", buf.Bytes(), want)
	}
}

type recordingWriter struct {
	pix []uint8
}

func (w *recordingWriter) WriteFrame(pix []uint8) error {
	w.pix = append([]uint8(nil), pix...)
	return nil
}

func TestDimmer(t *testing.T) {
	rec := &recordingWriter{}
	d := Dimmer{W: rec, Scale: 0.1}

	if err := d.WriteFrame([]uint8{255, 100, 10}); err != nil {
		t.Fatalf("WriteFrame failed: %v", err)
	}
	if want := []uint8{25, 10, 1}; !bytes.Equal(rec.pix, want) {
		t.Errorf("dimmed frame = %v, want %v", rec.pix, want)
	}
}
