package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concept-booster/internal/kv"
)

func TestProgressLifecycle(t *testing.T) {
	ctx := context.Background()
	svc := NewProgressService(kv.NewMemoryStore())

	p, err := svc.Get(ctx, "9876543210")
	require.NoError(t, err)
	assert.Empty(t, p.TopicsSearched)
	assert.NotNil(t, p.WeakTopics)

	_, err = svc.RecordQuestion(ctx, "9876543210", "  What is gravity? ")
	require.NoError(t, err)
	_, err = svc.RecordTopic(ctx, "9876543210", "Fractions")
	require.NoError(t, err)
	_, err = svc.RecordTopic(ctx, "9876543210", "Fractions ")
	require.NoError(t, err)
	_, err = svc.RecordTopic(ctx, "9876543210", "fractions")
	require.NoError(t, err)
	_, err = svc.RecordAnswer(ctx, "9876543210", "Fractions", true)
	require.NoError(t, err)
	p, err = svc.RecordAnswer(ctx, "9876543210", "Fractions", false)
	require.NoError(t, err)

	assert.Equal(t, []string{"What is gravity?", "Fractions", "fractions"}, p.TopicsSearched)
	assert.Equal(t, 1, p.QuestionsAsked)
	assert.Equal(t, 1, p.CorrectAnswers)
	assert.Equal(t, 1, p.WrongAnswers)
	assert.Equal(t, []string{"Fractions"}, p.WeakTopics)
	// (3*10 + 1*5) / 1.5 = 23.33
	assert.Equal(t, 23, p.MasteryLevel)

	stored, err := svc.Get(ctx, "9876543210")
	require.NoError(t, err)
	assert.Equal(t, p, stored)

	require.NoError(t, svc.Reset(ctx, "9876543210"))
	p, err = svc.Get(ctx, "9876543210")
	require.NoError(t, err)
	assert.Zero(t, p.QuestionsAsked)
}

func TestProgressRequiresLearner(t *testing.T) {
	svc := NewProgressService(kv.NewMemoryStore())
	_, err := svc.Get(context.Background(), " ")
	assert.True(t, errors.Is(err, ErrInvalidInput))
	_, err = svc.RecordTopic(context.Background(), "", "x")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, svc.Reset(context.Background(), ""), ErrInvalidInput)
}

func TestProgressConcurrentUpdates(t *testing.T) {
	svc := NewProgressService(kv.NewMemoryStore())
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.RecordAnswer(context.Background(), "learner", "t", true)
		}()
	}
	wg.Wait()

	p, err := svc.Get(context.Background(), "learner")
	require.NoError(t, err)
	assert.Equal(t, 50, p.CorrectAnswers)
	assert.Equal(t, 100, p.MasteryLevel)
}

func TestProgressCorruptRecord(t *testing.T) {
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(), "progress_x", []byte("{broken")))
	_, err := NewProgressService(store).Get(context.Background(), "x")
	assert.Error(t, err)
}
