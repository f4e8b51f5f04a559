package report

import (
	"sync"

	"github.com/dmitrijs2005/otvetbot/internal/models"
)

// Event is one call captured by Recorder.
type Event struct {
	Kind     string
	Question models.Question
	Text     string
	Options  []models.PollOption
	Err      error
}

// Recorder is a Reporter that keeps every call in memory. It backs tests
// of the components that report.
type Recorder struct {
	mu          sync.Mutex
	Events      []Event
	LastProfile models.Profile
	LastStats   models.Stats
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, e)
}

// Kinds lists recorded event kinds in order.
func (r *Recorder) Kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	kinds := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		kinds = append(kinds, e.Kind)
	}
	return kinds
}

// Errors lists every error passed to Failure.
func (r *Recorder) Errors() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var errs []error
	for _, e := range r.Events {
		if e.Kind == "failure" {
			errs = append(errs, e.Err)
		}
	}
	return errs
}

func (r *Recorder) Profile(p models.Profile) {
	r.mu.Lock()
	r.LastProfile = p
	r.mu.Unlock()
	r.add(Event{Kind: "profile"})
}

func (r *Recorder) Question(q models.Question) { r.add(Event{Kind: "question", Question: q}) }

func (r *Recorder) Skipped(q models.Question, reason string) {
	r.add(Event{Kind: "skipped", Question: q, Text: reason})
}

func (r *Recorder) Answer(q models.Question, text string) {
	r.add(Event{Kind: "answer", Question: q, Text: text})
}

func (r *Recorder) Poll(q models.Question) { r.add(Event{Kind: "poll", Question: q}) }

func (r *Recorder) Voted(q models.Question, chosen []models.PollOption) {
	r.add(Event{Kind: "voted", Question: q, Options: chosen})
}

func (r *Recorder) Failure(err error) { r.add(Event{Kind: "failure", Err: err}) }

func (r *Recorder) Summary(s models.Stats) {
	r.mu.Lock()
	r.LastStats = s
	r.mu.Unlock()
	r.add(Event{Kind: "summary"})
}

func (r *Recorder) Notice(msg string) { r.add(Event{Kind: "notice", Text: msg}) }
