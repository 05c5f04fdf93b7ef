package query

// BucketWidth is the quantization interval, in seconds, of every aligned timeline
const BucketWidth int64 = 60

// floorBucket rounds t down to a multiple of BucketWidth
func floorBucket(t int64) int64 {
	q := t / BucketWidth
	if t%BucketWidth != 0 && t < 0 {
		q--
	}
	return q * BucketWidth
}

// ceilBucket returns the bucket whose window (b-BucketWidth, b] holds t
func ceilBucket(t int64) int64 {
	return floorBucket(t-1) + BucketWidth
}

// Grid lists the canonical timestamps of (start, end]: every multiple of
// BucketWidth strictly after start and not after end.
func Grid(start, end int64) []int64 {
	first := floorBucket(start) + BucketWidth
	if first > end {
		return nil
	}
	grid := make([]int64, 0, (end-first)/BucketWidth+1)
	for t := first; t <= end; t += BucketWidth {
		grid = append(grid, t)
	}
	return grid
}

// Align maps sparse raw samples onto the grid of (start, end]. A bucket t takes the mean of
// the samples in (t-BucketWidth, t] and is left out when there are none. Samples outside the
// range only count when their window lands on the grid.
func Align(raw map[int64]float64, start, end int64) (map[int64]float64, error) {
	if start > end {
		return nil, &AlignmentError{Start: start, End: end}
	}
	type acc struct {
		sum   float64
		count int
	}
	buckets := make(map[int64]*acc)
	for ts, v := range raw {
		b := ceilBucket(ts)
		if b <= start || b > end {
			continue
		}
		a, ok := buckets[b]
		if !ok {
			a = &acc{}
			buckets[b] = a
		}
		a.sum += v
		a.count++
	}
	aligned := make(map[int64]float64, len(buckets))
	for b, a := range buckets {
		aligned[b] = a.sum / float64(a.count)
	}
	return aligned, nil
}
