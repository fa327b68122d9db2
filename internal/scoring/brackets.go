// Package scoring turns a set of answers into an IQ estimate and its derived report.
// Every function here is pure.
package scoring

// bracket pairs an inclusive lower bound with the value selected at or above it.
type bracket[T any] struct {
	min   int
	value T
}

// brackets is a threshold table ordered by descending min, with a fallback
// below the last bound.
type brackets[T any] struct {
	steps    []bracket[T]
	fallback T
}

func (b brackets[T]) resolve(iq int) T {
	for _, s := range b.steps {
		if iq >= s.min {
			return s.value
		}
	}
	return b.fallback
}
