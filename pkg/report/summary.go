package report

// Summary aggregates scenario outcomes of a report.
type Summary struct {
	Total     int `json:"total"`
	Passed    int `json:"passed"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`
	Pending   int `json:"pending"`
	Undefined int `json:"undefined"`
}

func (s *Summary) add(status Status) {
	s.Total++
	switch status {
	case StatusPassed:
		s.Passed++
	case StatusFailed, StatusAmbiguous:
		s.Failed++
	case StatusPending:
		s.Pending++
	case StatusUndefined:
		s.Undefined++
	default:
		s.Skipped++
	}
}

// Outcome collapses the counts into a single status.
func (s Summary) Outcome() Status {
	switch {
	case s.Failed > 0:
		return StatusFailed
	case s.Undefined > 0:
		return StatusUndefined
	case s.Pending > 0:
		return StatusPending
	case s.Passed > 0:
		return StatusPassed
	default:
		return StatusSkipped
	}
}

// IsSuccessful reports whether nothing failed or is left unimplemented.
func (s Summary) IsSuccessful() bool {
	return s.Failed == 0 && s.Undefined == 0 && s.Pending == 0
}
