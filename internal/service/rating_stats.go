package service

// ratingDelta turns a rating change into increments for the anime aggregate:
// added (prev nil), changed (both set) or removed (next nil).
func ratingDelta(prev, next *int) (sum, count int) {
	switch {
	case prev == nil && next != nil:
		return *next, 1
	case prev != nil && next != nil:
		return *next - *prev, 0
	case prev != nil && next == nil:
		return -*prev, -1
	}
	return 0, 0
}
