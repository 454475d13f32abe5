package openxr

// TwoCall drives the size-query/fill pattern shared by every runtime
// enumerator: call once with zero capacity to learn the count, allocate,
// call again to fill. fill receives a nil slice on the size query and a
// slice of exactly the reported count on the fill call; it may update
// *count again, and the returned slice is truncated to the final count.
//
// A zero count short-circuits: the fill call is never issued.
func TwoCall[T any](fill func(capacity uint32, count *uint32, items []T) Result) ([]T, Result) {
	var count uint32
	if res := fill(0, &count, nil); res != Success {
		return nil, res
	}
	if count == 0 {
		return nil, Success
	}
	items := make([]T, count)
	if res := fill(count, &count, items); res != Success {
		return nil, res
	}
	if int(count) < len(items) {
		items = items[:count]
	}
	return items, Success
}
