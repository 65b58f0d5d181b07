package analysis

// AutoSampleCount picks how many frames to inspect for a segment: one per
// two seconds of duration, at least 1, at most 5.
func AutoSampleCount(duration float64) int {
	count := int(duration / 2)
	if count < 1 {
		count = 1
	}
	if count > 5 {
		count = 5
	}
	return count
}

// SampleTimestamps returns count timestamps inside [start, end]. A single
// sample lands on the midpoint, three samples on the quartile points, any
// other count is spread evenly across the span including both endpoints.
func SampleTimestamps(start, end float64, count int) []float64 {
	if count < 1 {
		count = 1
	}
	span := end - start

	switch count {
	case 1:
		return []float64{start + span/2}
	case 3:
		return []float64{
			start + span*0.25,
			start + span*0.50,
			start + span*0.75,
		}
	default:
		timestamps := make([]float64, count)
		for i := 0; i < count; i++ {
			timestamps[i] = start + span*float64(i)/float64(count-1)
		}
		return timestamps
	}
}
