package ledanim

import (
	"bytes"
	"math/rand"
	"testing"

	"libdb.so/socialglow/internal/led"
)

// stubRand replays a fixed sequence of draws and fails the test when
// the animation draws more or out-of-range values.
type stubRand struct {
	t   *testing.T
	seq []int
	i   int
}

func (r *stubRand) Intn(n int) int {
	r.t.Helper()
	if r.i >= len(r.seq) {
		r.t.Fatalf("unexpected random draw #%d with Intn(%d)", r.i+1, n)
	}
	v := r.seq[r.i]
	r.i++
	if v < 0 || v >= n {
		r.t.Fatalf("stubbed draw #%d is %d, out of range for Intn(%d)", r.i, v, n)
	}
	return v
}

// frameRecorder captures flushed frames.
type frameRecorder struct {
	frames [][]uint8
}

func (w *frameRecorder) WriteFrame(pix []uint8) error {
	frame := make([]uint8, len(pix))
	copy(frame, pix)
	w.frames = append(w.frames, frame)
	return nil
}

func (w *frameRecorder) last(t *testing.T) []uint8 {
	t.Helper()
	if len(w.frames) == 0 {
		t.Fatal("no frame was flushed")
	}
	return w.frames[len(w.frames)-1]
}

func pixelAt(frame []uint8, i int) led.RGB {
	return led.RGB{frame[3*i], frame[3*i+1], frame[3*i+2]}
}

func TestRenderBaseColor(t *testing.T) {
	const numPixels = 24

	// 25% of 24 pixels sparkle: pixels 0-5, all with multiplier 0.
	rng := &stubRand{t: t, seq: []int{
		0,                // percent draw, 25+0
		0, 1, 2, 3, 4, 5, // positions
		0, 0, 0, 0, 0, 0, // multipliers
	}}

	out := &frameRecorder{}
	s := NewSparkle(led.NewLEDs(numPixels), out, rng)
	s.SetColor(led.RGB{255, 170, 187})

	if err := s.Render(); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	frame := out.last(t)
	base := led.RGB{85, 56, 62} // each channel divided by 3, floored

	for i := 6; i < numPixels; i++ {
		if got := pixelAt(frame, i); got != base {
			t.Errorf("pixel %d = %v, want base color %v", i, got, base)
		}
	}
	for i := 0; i < 6; i++ {
		if got := pixelAt(frame, i); got != led.Black {
			t.Errorf("pixel %d = %v, want black (multiplier 0)", i, got)
		}
	}
}

func TestRenderNormalizesPackedColor(t *testing.T) {
	rng := &stubRand{t: t, seq: []int{
		0,
		0, 1, 2, 3, 4, 5,
		0, 0, 0, 0, 0, 0,
	}}

	out := &frameRecorder{}
	s := NewSparkle(led.NewLEDs(24), out, rng)
	s.SetColor(led.PackedColor(0xFFAABB)) // (255, 170, 187)

	if err := s.Render(); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	want := led.RGB{85, 56, 62}
	if got := pixelAt(out.last(t), 23); got != want {
		t.Errorf("base pixel = %v, want %v", got, want)
	}
}

func TestRenderBlackSkipsSparkles(t *testing.T) {
	// An empty sequence proves that no random draw happens at all.
	rng := &stubRand{t: t}

	out := &frameRecorder{}
	s := NewSparkle(led.NewLEDs(24), out, rng)

	if err := s.Render(); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	frame := out.last(t)
	for i := 0; i < 24; i++ {
		if got := pixelAt(frame, i); got != led.Black {
			t.Errorf("pixel %d = %v, want black", i, got)
		}
	}
}

func TestRenderSparkleCount(t *testing.T) {
	tests := []struct {
		name    string
		percent int
		want    int // floor(percent/100 * 24)
	}{
		{"LowerBound", 25, 6},
		{"Middle", 50, 12},
		{"UpperBound", 75, 18},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq := []int{tt.percent - 25}
			for i := 0; i < tt.want; i++ {
				seq = append(seq, i) // distinct positions 0..want-1
			}
			for i := 0; i < tt.want; i++ {
				seq = append(seq, 90)
			}

			out := &frameRecorder{}
			s := NewSparkle(led.NewLEDs(24), out, &stubRand{t: t, seq: seq})
			s.SetColor(led.RGB{255, 0, 0})

			if err := s.Render(); err != nil {
				t.Fatalf("Render failed: %v", err)
			}

			frame := out.last(t)
			base := led.RGB{85, 0, 0}
			sparkled := 0
			for i := 0; i < 24; i++ {
				if pixelAt(frame, i) != base {
					sparkled++
				}
			}
			if sparkled != tt.want {
				t.Errorf("%d%% of 24 pixels: got %d sparkles, want %d", tt.percent, sparkled, tt.want)
			}
		})
	}
}

func TestRenderRetriesDuplicatePositions(t *testing.T) {
	// 25% of 24 pixels means 6 distinct positions. The stub repeats
	// positions, forcing the without-replacement retry path.
	rng := &stubRand{t: t, seq: []int{
		0,
		1, 1, 2, 2, 3, 4, 5, 6, // 8 draws for 6 distinct positions
		90, 90, 90, 90, 90, 90,
	}}

	out := &frameRecorder{}
	s := NewSparkle(led.NewLEDs(24), out, rng)
	s.SetColor(led.RGB{255, 0, 0})

	if err := s.Render(); err != nil {
		t.Fatalf("Render failed: %v", err)
	}

	frame := out.last(t)
	sparkle := led.RGB{229, 0, 0} // 255 * 0.90, floored
	for i := 1; i <= 6; i++ {
		if got := pixelAt(frame, i); got != sparkle {
			t.Errorf("pixel %d = %v, want %v", i, got, sparkle)
		}
	}
	base := led.RGB{85, 0, 0}
	if got := pixelAt(frame, 0); got != base {
		t.Errorf("pixel 0 = %v, want base %v", got, base)
	}
	if got := pixelAt(frame, 7); got != base {
		t.Errorf("pixel 7 = %v, want base %v", got, base)
	}
}

func TestRenderNeverExceedsOriginalColor(t *testing.T) {
	out := &frameRecorder{}
	color := led.RGB{200, 100, 50}

	s := NewSparkle(led.NewLEDs(24), out, rand.New(rand.NewSource(42)))
	s.SetColor(color)

	for frame := 0; frame < 50; frame++ {
		if err := s.Render(); err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		pix := out.last(t)
		for i := 0; i < 24; i++ {
			got := pixelAt(pix, i)
			for ch := 0; ch < 3; ch++ {
				if got[ch] > color[ch] {
					t.Fatalf("frame %d pixel %d channel %d = %d, exceeds %d",
						frame, i, ch, got[ch], color[ch])
				}
			}
		}
	}
}

func TestRenderDeterministicForFixedSeed(t *testing.T) {
	render := func() []uint8 {
		out := &frameRecorder{}
		s := NewSparkle(led.NewLEDs(24), out, rand.New(rand.NewSource(7)))
		s.SetColor(led.RGB{255, 0, 0})
		if err := s.Render(); err != nil {
			t.Fatalf("Render failed: %v", err)
		}
		return out.last(t)
	}

	if !bytes.Equal(render(), render()) {
		t.Error("two renders with identical random sequences produced different frames")
	}
}

func TestConsecutiveRendersDiffer(t *testing.T) {
	out := &frameRecorder{}
	s := NewSparkle(led.NewLEDs(24), out, rand.New(rand.NewSource(7)))
	s.SetColor(led.RGB{255, 0, 0})

	// Not guaranteed in theory, but over ten frames at least two must
	// differ for any sane random source.
	for i := 0; i < 10; i++ {
		if err := s.Render(); err != nil {
			t.Fatalf("Render failed: %v", err)
		}
	}
	for i := 1; i < len(out.frames); i++ {
		if !bytes.Equal(out.frames[0], out.frames[i]) {
			return
		}
	}
	t.Error("ten consecutive frames were all identical")
}
