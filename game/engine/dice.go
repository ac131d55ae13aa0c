package engine

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
)

// Roller produces die rolls in [1, DieFaces]
type Roller interface {
	Roll() int
}

// Dice is a fair six-sided die backed by a seeded source
type Dice struct {
	rng *rand.Rand
}

// NewDice creates a die seeded with the given value
func NewDice(seed int64) *Dice {
	return &Dice{rng: rand.New(rand.NewSource(seed))}
}

// Roll returns a uniformly random value in [1, 6]
func (d *Dice) Roll() int {
	return d.rng.Intn(DieFaces) + 1
}

// NewSeed returns a high-entropy seed for dice and the AI's random choice
func NewSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return rand.Int63()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// FixedRoller replays a fixed sequence of rolls, cycling when exhausted
type FixedRoller struct {
	Values []int
	next   int
}

// Roll returns the next value in the sequence
func (f *FixedRoller) Roll() int {
	if len(f.Values) == 0 {
		return 1
	}
	v := f.Values[f.next%len(f.Values)]
	f.next++
	return v
}
