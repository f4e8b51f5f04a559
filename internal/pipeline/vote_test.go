package pipeline

import (
	"context"
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/dmitrijs2005/otvetbot/internal/logging"
	"github.com/dmitrijs2005/otvetbot/internal/models"
	"github.com/dmitrijs2005/otvetbot/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoter_ChooseBoundsAndDistinct(t *testing.T) {
	v := NewVoter(rand.New(rand.NewPCG(7, 7)), &report.Recorder{}, logging.Discard())

	for n := 1; n <= 6; n++ {
		options := poll(1, n).Poll.Options
		for range 200 {
			chosen := v.Choose(options)
			require.GreaterOrEqual(t, len(chosen), 1)
			require.LessOrEqual(t, len(chosen), n)

			seen := map[int64]bool{}
			for _, o := range chosen {
				require.False(t, seen[o.ID], "option %d chosen twice", o.ID)
				seen[o.ID] = true
			}
		}
	}
}

func TestVoter_EveryOptionAndSizeIsReachable(t *testing.T) {
	v := NewVoter(rand.New(rand.NewPCG(1, 2)), &report.Recorder{}, logging.Discard())
	options := poll(1, 4).Poll.Options

	picked := map[int64]int{}
	sizes := map[int]int{}
	for range 1000 {
		chosen := v.Choose(options)
		sizes[len(chosen)]++
		for _, o := range chosen {
			picked[o.ID]++
		}
	}

	for _, o := range options {
		assert.Positive(t, picked[o.ID], "option %d never picked", o.ID)
	}
	for k := 1; k <= 4; k++ {
		assert.Positive(t, sizes[k], "subset size %d never drawn", k)
	}
}

func TestVoter_ChooseEmpty(t *testing.T) {
	v := NewVoter(nil, &report.Recorder{}, logging.Discard())
	assert.Nil(t, v.Choose(nil))
}

func TestVoter_Vote(t *testing.T) {
	e := newEnv(3)
	q := poll(9, 3)

	outcome, err := e.loop.voter.Vote(context.Background(), e.sess, q)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeVoted, outcome)
	require.Len(t, e.client.Votes, 1)
	assert.Equal(t, int64(9), e.client.Votes[0].QuestionID)
	assert.NotEmpty(t, e.client.Votes[0].Options)
	assert.Equal(t, []string{"poll", "voted"}, e.reporter.Kinds())
}

func TestVoter_VoteFailures(t *testing.T) {
	t.Run("submission error", func(t *testing.T) {
		e := newEnv(3)
		e.client.VoteErr = errors.New("closed")

		outcome, err := e.loop.voter.Vote(context.Background(), e.sess, poll(9, 2))
		require.NoError(t, err)
		assert.Equal(t, models.OutcomeFailed, outcome)
		require.Len(t, e.reporter.Errors(), 1)
		assert.ErrorIs(t, e.reporter.Errors()[0], ErrVoteSubmissionFailed)
	})

	t.Run("no options", func(t *testing.T) {
		e := newEnv(3)

		outcome, err := e.loop.voter.Vote(context.Background(), e.sess, poll(9, 0))
		require.NoError(t, err)
		assert.Equal(t, models.OutcomeFailed, outcome)
		assert.Empty(t, e.client.Votes)
		require.Len(t, e.reporter.Errors(), 1)
		assert.ErrorIs(t, e.reporter.Errors()[0], ErrVoteSubmissionFailed)
	})
}
