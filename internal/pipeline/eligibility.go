package pipeline

import (
	"regexp"

	"github.com/dmitrijs2005/otvetbot/internal/models"
)

var (
	linkPattern  = regexp.MustCompile(`[A-Za-z][A-Za-z0-9+.-]*://\S+`)
	imagePattern = regexp.MustCompile(`!\[.*\]\(.*\)|<img\s+[^>]*src="[^"]+"`)
)

// Skip reasons reported for ineligible questions.
const (
	ReasonCannotAnswer = "answering is not allowed"
	ReasonLink         = "contains a link"
	ReasonImage        = "contains an image"
)

// SkipReason returns why q must not be processed, or "" when it may.
func SkipReason(q models.Question) string {
	if !q.CanAnswer {
		return ReasonCannotAnswer
	}
	for _, s := range []string{q.Title, q.Text} {
		if linkPattern.MatchString(s) {
			return ReasonLink
		}
		if imagePattern.MatchString(s) {
			return ReasonImage
		}
	}
	return ""
}

func IsEligible(q models.Question) bool {
	return SkipReason(q) == ""
}
