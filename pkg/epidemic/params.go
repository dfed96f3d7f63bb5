package epidemic

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/gilchrisn/spreading-analysis/pkg/validation"
)

var (
	// ErrInvalidParams is returned for out-of-range model parameters.
	ErrInvalidParams = errors.New("invalid epidemic parameters")
	// ErrOrigin is returned when a seed node is missing or out of range.
	ErrOrigin = errors.New("invalid outbreak origin")
)

// Model selects the compartmental model
type Model string

const (
	SIR Model = "sir"
	SIS Model = "sis"
)

// ParseModel validates a model name
func ParseModel(s string) (Model, error) {
	switch m := Model(strings.ToLower(strings.TrimSpace(s))); m {
	case SIR, SIS:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown model %q", ErrInvalidParams, s)
	}
}

// Params holds the transition probabilities and the step cap
type Params struct {
	// Beta is the infection probability per infected-susceptible edge per step.
	Beta float64 `json:"beta" yaml:"beta" validate:"gte=0,lte=1"`
	// Gamma is the SIR recovery probability per step.
	Gamma float64 `json:"gamma" yaml:"gamma" validate:"gte=0,lte=1"`
	// Lambda is the SIS return-to-susceptible probability per step.
	Lambda     float64 `json:"lambda" yaml:"lambda" validate:"gte=0,lte=1"`
	Iterations int     `json:"iterations" yaml:"iterations" validate:"gte=1"`
}

// Validate checks that all probabilities lie in [0, 1] and at least one
// step is allowed
func (p Params) Validate() error {
	return validation.Struct(p, ErrInvalidParams)
}

// NewRand returns a generator for one independent stream. Trials seeded
// with the same (seed, stream) pair replay identically.
func NewRand(seed, stream uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, stream))
}

// TrialStream derives the stream number of repetition rep seeded at origin.
// It depends only on its arguments, never on scheduling order.
func TrialStream(origin, rep int) uint64 {
	return splitmix64(uint64(origin)<<32 ^ uint64(uint32(rep)))
}

func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}
