// Package synth generates deterministic city data for load tests. The same
// rows and seed always produce the same text.
package synth

import (
	"math"
	"strconv"
	"strings"
)

// Header is the first line of every generated text.
const Header = "city,population,area,density,country"

// Rand is a 32-bit xorshift generator.
type Rand struct{ x uint32 }

// NewRand seeds a generator. Seed 0 yields a constant zero stream.
func NewRand(seed uint32) *Rand { return &Rand{x: seed} }

// Float returns the next value in [0, 1].
func (r *Rand) Float() float64 {
	r.x ^= r.x << 13
	r.x ^= r.x >> 17
	r.x ^= r.x << 5
	return float64(r.x) / 0xffffffff
}

// Intn returns an integer in [lo, hi].
func (r *Rand) Intn(lo, hi int) int {
	return int(math.Floor(r.Float()*float64(hi-lo+1))) + lo
}

// Generate returns a header plus rows data lines:
//
//	City<i>,<population>,<area>,<density>,Country<i mod 50>
//
// population is drawn from [100000, 30000000], area from [300, 20000] and
// density is population/area rounded half up.
func Generate(rows int, seed uint32) string {
	rng := NewRand(seed)

	var b strings.Builder
	b.Grow(len(Header) + rows*48)
	b.WriteString(Header)

	var num []byte
	for i := 0; i < rows; i++ {
		population := rng.Intn(100000, 30000000)
		area := rng.Intn(300, 20000)
		density := int64(math.Floor(float64(population)/float64(area) + 0.5))

		b.WriteString("\nCity")
		b.Write(strconv.AppendInt(num[:0], int64(i+1), 10))
		b.WriteByte(',')
		b.Write(strconv.AppendInt(num[:0], int64(population), 10))
		b.WriteByte(',')
		b.Write(strconv.AppendInt(num[:0], int64(area), 10))
		b.WriteByte(',')
		b.Write(strconv.AppendInt(num[:0], density, 10))
		b.WriteString(",Country")
		b.Write(strconv.AppendInt(num[:0], int64(i%50+1), 10))
	}
	return b.String()
}
