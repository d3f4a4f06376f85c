package review

import "fmt"

// Summary aggregates a run.
type Summary struct {
	Total     int `json:"total"`
	Corrected int `json:"corrected"`
	Failed    int `json:"failed"`
}

func Summarize(records []Record) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		if r.HadError {
			s.Failed++
			continue
		}
		if r.Changed() {
			s.Corrected++
		}
	}
	return s
}

// Line is the one-line summary printed at the top of the report.
func (s Summary) Line() string {
	return fmt.Sprintf("Processed %d paragraphs. %d paragraphs had corrections.", s.Total, s.Corrected)
}
