// Package ledanim implements the LED strip animations.
package ledanim

import (
	"sort"

	"libdb.so/socialglow/internal/led"
)

// Rand is the random source for an animation. *math/rand.Rand
// satisfies it; tests substitute fixed sequences.
type Rand interface {
	// Intn returns a uniformly random int in [0, n).
	Intn(n int) int
}

// Sparkle renders a randomized sparkle pattern biased towards a target
// color: the whole strip is dimmed to a third of the color, then a
// random 25-75% of the pixels are overlaid with random brighter shades
// of it. Render is meant to run as the action of a sched.Task.
type Sparkle struct {
	leds  led.LEDs
	out   led.FrameWriter
	rng   Rand
	color led.Color
}

// NewSparkle creates a sparkle animation over the given frame buffer.
// The animation is the sole writer of the buffer while it is active.
// The initial color is black, which renders as a fully dark strip.
func NewSparkle(leds led.LEDs, out led.FrameWriter, rng Rand) *Sparkle {
	return &Sparkle{
		leds:  leds,
		out:   out,
		rng:   rng,
		color: led.Black,
	}
}

// SetColor changes the target color for subsequent frames. The caller
// must run on the same goroutine as Render.
func (s *Sparkle) SetColor(c led.Color) {
	s.color = c
}

// Render paints one frame into the buffer and flushes it to the strip.
func (s *Sparkle) Render() error {
	color := s.color.RGB()
	numPixels := len(s.leds)

	base := led.RGB{color[0] / 3, color[1] / 3, color[2] / 3}
	s.leds.Fill(base)

	if color != led.Black {
		// Sparkle a random 25-75% of the strip.
		percent := 25 + s.rng.Intn(51)
		numSparkles := percent * numPixels / 100

		positions := make(map[int]struct{}, numSparkles)
		for len(positions) < numSparkles {
			positions[s.rng.Intn(numPixels)] = struct{}{}
		}

		// Fix the position order so that a given random sequence always
		// produces the same frame.
		sorted := make([]int, 0, len(positions))
		for position := range positions {
			sorted = append(sorted, position)
		}
		sort.Ints(sorted)

		for _, position := range sorted {
			// Brightness multiplier between 0.00 and 0.90, applied to
			// the original color rather than the dimmed base.
			m := s.rng.Intn(91)
			s.leds.Set(position, led.RGB{
				uint8(int(color[0]) * m / 100),
				uint8(int(color[1]) * m / 100),
				uint8(int(color[2]) * m / 100),
			})
		}
	}

	return s.out.WriteFrame(s.leds.AsPixels())
}
