package models

// Question is a platform question as fetched for processing. It is never
// mutated after the fetch.
type Question struct {
	ID        int64
	Title     string
	Text      string
	Author    string
	Category  string
	URL       string
	CanAnswer bool

	// Poll is nil for ordinary questions.
	Poll *Poll
}

type Poll struct {
	Options []PollOption
}

type PollOption struct {
	ID   int64
	Text string
}

// HasPoll reports whether q should be routed to the poll voter.
func (q *Question) HasPoll() bool {
	return q.Poll != nil
}
