package casefile

// BatchSummary aggregates the outcome of a batch of imports. It is derived
// from the per-file results and never stored on its own.
type BatchSummary struct {
	Total          int     `json:"total"`
	Succeeded      int     `json:"succeeded"`
	Failed         int     `json:"failed"`
	TotalDocuments int     `json:"total_documents"`
	AverageQuality float64 `json:"average_quality"`
	OCRFiles       int     `json:"ocr_files"`

	qualitySum int
}

// Add folds one result into the summary. Failed imports count towards the
// average quality with their score of zero.
func (s *BatchSummary) Add(r ImportResult) {
	s.Total++
	if r.Success {
		s.Succeeded++
	} else {
		s.Failed++
	}
	if r.OCRUsed {
		s.OCRFiles++
	}
	s.TotalDocuments += len(r.Documents)
	s.qualitySum += r.QualityScore
	s.AverageQuality = float64(s.qualitySum) / float64(s.Total)
}

// Summarize recomputes the summary of a list of results.
func Summarize(results []ImportResult) BatchSummary {
	var s BatchSummary
	for _, r := range results {
		s.Add(r)
	}
	return s
}
