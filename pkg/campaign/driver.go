package campaign

import (
	"math/rand"
)

// RandomDriver is the seeded stream of non-negative draws a campaign consumes.
//
//go:generate mockery --name RandomDriver --output ./ --inpackage
type RandomDriver interface {
	Next() int64
}

// DriverFactory seeds a fresh RandomDriver. Equal seeds must yield equal streams.
type DriverFactory func(seed int64) RandomDriver

type mathRandDriver struct {
	rnd *rand.Rand
}

func NewMathRandDriver(seed int64) RandomDriver {
	return &mathRandDriver{rnd: rand.New(rand.NewSource(seed))}
}

func (d *mathRandDriver) Next() int64 {
	return d.rnd.Int63()
}

// fastForward discards n draws so the next draw is the one at position n.
func fastForward(d RandomDriver, n int32) {
	for i := int32(0); i < n; i++ {
		d.Next()
	}
}
