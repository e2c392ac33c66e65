package pitch

// Report is an immutable snapshot of the pitch values observed in one
// analysis run. It is constructed once, fully populated, and returned
// by value.
//
// ChunksUsed is the percentage of theoretical chunks that survived into
// the trimmed candidate set: trimmedCount / (totalSamples/chunkSize) * 100.
// The denominator counts every theoretical chunk while the numerator is
// post-trim, so the ratio structurally caps below the true yield. That
// asymmetry is deliberate: the documented credibility thresholds
// (above 1% for instrumentals, above 10% for speech, with 50-600 Hz
// bounds) are calibrated against this exact formula.
type Report struct {
	ChunksUsed float64
	Mean       float32 // Hz
	Median     float32 // Hz
	Lowest     float32 // Hz
	Highest    float32 // Hz
}

// BuildReport computes summary statistics over a sorted, non-empty
// trimmed frequency set. Callers must have already handled the empty
// case (FilterAndTrim fails with ErrNoPitchCandidates), which keeps
// every field finite here.
func BuildReport(trimmed []float32, totalSamples, chunkSize int) Report {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return Report{
		ChunksUsed: float64(len(trimmed)) / (float64(totalSamples) / float64(chunkSize)) * 100.0,
		Mean:       mean(trimmed),
		Median:     median(trimmed),
		Lowest:     trimmed[0],
		Highest:    trimmed[len(trimmed)-1],
	}
}

func mean(list []float32) float32 {
	var sum float64
	for _, v := range list {
		sum += float64(v)
	}
	return float32(sum / float64(len(list)))
}

// median assumes the input is already sorted ascending. For even
// lengths it averages the two middle elements.
func median(list []float32) float32 {
	mid := len(list) / 2
	if len(list)%2 == 0 {
		return mean(list[mid-1 : mid+1])
	}
	return list[mid]
}
