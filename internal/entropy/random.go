// Package entropy provides the single random source a simulation draws from.
// Every stochastic step (growth shocks, demand sentiment, opportunistic investment)
// goes through one Source so runs can be replayed from a seed.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"log/slog"
	mrand "math/rand"
	"strings"
	"time"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Source yields uniform-ish floats in [0, 1).
type Source interface {
	Float64() float64
}

// Names accepted by Parse.
const (
	KindSeeded = "seeded"
	KindCrypto = "crypto"
	KindNoise  = "noise"
)

// Seeded is a deterministic source backed by math/rand.
type Seeded struct {
	rng  *mrand.Rand
	seed int64
}

// NewSeeded creates a deterministic source. A zero seed picks one from the clock.
func NewSeeded(seed int64) *Seeded {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Seeded{rng: mrand.New(mrand.NewSource(seed)), seed: seed}
}

// Float64 returns the next value in [0, 1).
func (s *Seeded) Float64() float64 { return s.rng.Float64() }

// Seed returns the seed actually in use.
func (s *Seeded) Seed() int64 { return s.seed }

// Crypto draws from crypto/rand. Not reproducible.
type Crypto struct{}

// Float64 returns a random float in [0, 1).
func (Crypto) Float64() float64 { return cryptoRandFloat() }

// cryptoRandFloat generates a random float64 using crypto/rand.
func cryptoRandFloat() float64 {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		// This should never happen but return 0.5 as a safe default.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

// Noise samples fractal simplex noise along a line, so consecutive draws are
// correlated. Useful for modelling persistent shocks instead of white noise.
type Noise struct {
	noise       opensimplex.Noise
	seed        int64
	step        float64
	t           float64
	octaves     int
	persistence float64
}

// NewNoise creates a noise source. step controls how quickly draws decorrelate;
// values <= 0 fall back to 0.37.
func NewNoise(seed int64, step float64) *Noise {
	if step <= 0 {
		step = 0.37
	}
	return &Noise{
		noise:       opensimplex.NewNormalized(seed),
		seed:        seed,
		step:        step,
		octaves:     3,
		persistence: 0.5,
	}
}

// Float64 returns the next noise sample, clamped to [0, 1).
func (n *Noise) Float64() float64 {
	v := octaveNoise(n.noise, n.t, 0, n.octaves, 1, n.persistence)
	n.t += n.step
	if v < 0 {
		return 0
	}
	if v >= 1 {
		return 0.9999999999
	}
	return v
}

// Seed returns the seed the noise field was built from.
func (n *Noise) Seed() int64 { return n.seed }

// octaveNoise layers several frequencies; the result stays in the input range.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

// Fixed replays a fixed sequence of values, cycling when exhausted.
// An empty Fixed always returns 0.5.
type Fixed struct {
	values []float64
	next   int
}

// NewFixed creates a replaying source.
func NewFixed(values ...float64) *Fixed {
	return &Fixed{values: values}
}

// Float64 returns the next replayed value.
func (f *Fixed) Float64() float64 {
	if len(f.values) == 0 {
		return 0.5
	}
	v := f.values[f.next%len(f.values)]
	f.next++
	return v
}

// Draws reports how many values have been consumed.
func (f *Fixed) Draws() int { return f.next }

// Uniform maps a draw from src onto [lo, hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}

// Parse builds a source by kind name. An empty name means seeded.
func Parse(kind string, seed int64) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", KindSeeded:
		return NewSeeded(seed), nil
	case KindCrypto:
		if seed != 0 {
			slog.Warn("crypto entropy ignores seed", "seed", seed)
		}
		return Crypto{}, nil
	case KindNoise:
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		return NewNoise(seed, 0), nil
	default:
		return nil, fmt.Errorf("unknown entropy source %q", kind)
	}
}
