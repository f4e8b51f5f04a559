package pipeline

import "errors"

var ErrVoteSubmissionFailed = errors.New("vote submission failed")
