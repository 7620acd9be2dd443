package resolution

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
)

// SelectExplicit parses raw as a base-10 identifier. Surrounding whitespace is
// ignored; anything that is not an integer >= 1 is a validation error.
func SelectExplicit(raw string) (int64, error) {
	id, err := selectExplicit(raw)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func selectExplicit(raw string) (int64, *Error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, newError(KindInvalidIdentifier, "an identifier is required")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, wrapError(KindInvalidIdentifier, err, "%q is not a valid identifier", s)
	}
	if id < 1 {
		return 0, newError(KindInvalidIdentifier, "identifier must be at least 1, got %d", id)
	}
	return id, nil
}

// Selector draws uniformly random identifiers.
//
// The zero value uses the process-wide generator. NewSelector pins a source,
// which makes draws reproducible in tests.
type Selector struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewSelector(src rand.Source) *Selector {
	if src == nil {
		return &Selector{}
	}
	return &Selector{rng: rand.New(src)}
}

// SelectRandom returns a value uniform in [1, upperBound].
//
// Int64N rejects and resamples instead of reducing modulo the bound, so there
// is no bias toward low values for bounds that are not powers of two.
func (s *Selector) SelectRandom(upperBound int64) (int64, error) {
	id, err := s.selectRandom(upperBound)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (s *Selector) selectRandom(upperBound int64) (int64, *Error) {
	if upperBound < 1 {
		return 0, newError(KindInvalidBound, "upper bound must be at least 1, got %d", upperBound)
	}
	if s == nil || s.rng == nil {
		return rand.Int64N(upperBound) + 1, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Int64N(upperBound) + 1, nil
}
