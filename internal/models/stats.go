package models

// Stats counts question outcomes over one run.
type Stats struct {
	Skipped  int
	Answered int
	Voted    int
	Failed   int
}

// Add records one outcome.
func (s *Stats) Add(o Outcome) {
	switch o {
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeAnswered:
		s.Answered++
	case OutcomeVoted:
		s.Voted++
	case OutcomeFailed:
		s.Failed++
	}
}

func (s Stats) Total() int {
	return s.Skipped + s.Answered + s.Voted + s.Failed
}
