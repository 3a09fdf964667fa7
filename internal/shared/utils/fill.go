package utils

// Fill produces an ordered sequence of value repeated |end-start|+1
// times. It is iterative on purpose; the length can be large and the
// callers (layout padding, buffer placeholders) care only about the
// count, never about recursion over the index range.
//
// start and end carry no ordering constraint: Fill(3, 0, v) yields
// the same sequence as Fill(0, 3, v).
func Fill[T any](start, end int, value T) []T {
	n := end - start
	if n < 0 {
		n = -n
	}
	n++

	seq := make([]T, n)
	for i := range seq {
		seq[i] = value
	}
	return seq
}
