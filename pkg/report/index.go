package report

// Index lists the reports written during a run.
type Index struct {
	Title   string       `json:"title"`
	Entries []IndexEntry `json:"entries"`
}

// IndexEntry points at one written report.
type IndexEntry struct {
	Title   string  `json:"title"`
	File    string  `json:"file"`
	Summary Summary `json:"summary"`
}
