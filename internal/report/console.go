package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dmitrijs2005/otvetbot/internal/models"
)

type styles struct {
	header  lipgloss.Style
	label   lipgloss.Style
	title   lipgloss.Style
	muted   lipgloss.Style
	answer  lipgloss.Style
	success lipgloss.Style
	warn    lipgloss.Style
	failure lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		header: r.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1),
		label:   r.NewStyle().Foreground(lipgloss.Color("243")),
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("212")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("240")),
		answer:  r.NewStyle().Foreground(lipgloss.Color("42")).PaddingLeft(2),
		success: r.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
		warn:    r.NewStyle().Foreground(lipgloss.Color("214")),
		failure: r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

// Console writes styled output to a terminal. Colors are dropped
// automatically when w is not a TTY.
type Console struct {
	w  io.Writer
	st styles
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w, st: newStyles(lipgloss.NewRenderer(w))}
}

func (c *Console) println(s string) {
	fmt.Fprintln(c.w, s)
}

func (c *Console) field(name, value string) string {
	return c.st.label.Render(name+":") + " " + value
}

func (c *Console) Profile(p models.Profile) {
	body := strings.Join([]string{
		c.field("id", strconv.FormatInt(p.ID, 10)),
		c.field("name", p.Name),
		c.field("rate", p.Rate),
		c.field("url", p.URL),
	}, "\n")
	c.println(c.st.header.Render(body))
}

func (c *Console) Question(q models.Question) {
	c.println("")
	c.println(c.st.title.Render(q.Title))
	if q.Text != "" {
		c.println(q.Text)
	}
	c.println(c.st.muted.Render(fmt.Sprintf("%s · %s · %s", q.Author, q.Category, q.URL)))
}

func (c *Console) Skipped(q models.Question, reason string) {
	c.println(c.st.warn.Render(fmt.Sprintf("skipped %d: %s", q.ID, reason)))
}

func (c *Console) Answer(q models.Question, text string) {
	c.println(c.st.success.Render("answer:"))
	c.println(c.st.answer.Render(text))
}

func (c *Console) Poll(q models.Question) {
	if !q.HasPoll() {
		return
	}
	width := len(strconv.Itoa(len(q.Poll.Options)))
	for i, o := range q.Poll.Options {
		num := fmt.Sprintf("%*d", width, i+1)
		c.println("  " + c.st.label.Render(num) + "  " + o.Text)
	}
}

func (c *Console) Voted(q models.Question, chosen []models.PollOption) {
	texts := make([]string, 0, len(chosen))
	for _, o := range chosen {
		texts = append(texts, o.Text)
	}
	c.println(c.st.success.Render("voted:") + " " + strings.Join(texts, "; "))
}

func (c *Console) Failure(err error) {
	c.println(c.st.failure.Render("error:") + " " + err.Error())
}

func (c *Console) Summary(s models.Stats) {
	body := strings.Join([]string{
		c.field("answered", strconv.Itoa(s.Answered)),
		c.field("voted", strconv.Itoa(s.Voted)),
		c.field("skipped", strconv.Itoa(s.Skipped)),
		c.field("failed", strconv.Itoa(s.Failed)),
	}, "  ")
	c.println(c.st.header.Render(body))
}

func (c *Console) Notice(msg string) {
	c.println(c.st.muted.Render(msg))
}
