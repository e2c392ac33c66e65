package pitch

// DefaultChunkSize is the analysis window length in samples.
const DefaultChunkSize = 1024

// Sample partitions samples into consecutive non-overlapping windows of
// chunkSize and runs the estimator on each. The final window may be
// shorter than chunkSize; it is still attempted and only excluded when
// the estimator itself declines it. Windows with no estimate are
// silently dropped, so the returned candidates are a subset of the
// attempted windows, in chunk order.
func Sample(samples []float32, sampleRate, chunkSize int, est Estimator) []Candidate {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	candidates := make([]Candidate, 0, (len(samples)+chunkSize-1)/chunkSize)
	for start := 0; start < len(samples); start += chunkSize {
		end := start + chunkSize
		if end > len(samples) {
			end = len(samples)
		}
		if c, ok := est.Estimate(samples[start:end], sampleRate, 0, 0); ok {
			candidates = append(candidates, c)
		}
	}
	return candidates
}
