package client

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concept-booster/internal/db"
	"concept-booster/internal/kv"
	"concept-booster/internal/models"
	"concept-booster/internal/services"
)

// gatedCall blocks each call until the test releases that request.
type gatedCall struct {
	started chan string
	mu      sync.Mutex
	gates   map[string]chan result
}

type result struct {
	text string
	err  error
}

func newGatedCall() *gatedCall {
	return &gatedCall{started: make(chan string, 4), gates: make(map[string]chan result)}
}

func (g *gatedCall) gate(req string) chan result {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[req]
	if !ok {
		ch = make(chan result, 1)
		g.gates[req] = ch
	}
	return ch
}

func (g *gatedCall) release(req string, r result) {
	g.gate(req) <- r
}

func (g *gatedCall) call(_ context.Context, req string) (string, error) {
	g.started <- req
	r := <-g.gate(req)
	return r.text, r.err
}

func TestFeatureRejectsSecondSubmitWhileLoading(t *testing.T) {
	g := newGatedCall()
	f := NewFeature(services.FeatureDoubt, g.call, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background(), models.LanguageSimpleTarget, "first")
		done <- err
	}()
	<-g.started
	assert.True(t, f.Loading())

	_, err := f.Submit(context.Background(), models.LanguageSimpleTarget, "second")
	assert.ErrorIs(t, err, ErrBusy)

	g.release("first", result{text: "answer"})
	require.NoError(t, <-done)
	assert.False(t, f.Loading())

	state := f.State()
	assert.Equal(t, "first", state.Input)
	assert.Equal(t, "answer", state.Result)
	assert.True(t, state.HasResult)
}

func TestFeatureDropsReplyAfterReset(t *testing.T) {
	g := newGatedCall()
	f := NewFeature(services.FeatureLesson, g.call, nil, nil)

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background(), models.LanguageSimpleTarget, "old topic")
		done <- err
	}()
	<-g.started
	f.Reset()

	// a newer request may start right away
	newer := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background(), models.LanguageSimpleTarget, "new topic")
		newer <- err
	}()
	<-g.started

	g.release("old topic", result{text: "late answer"})
	err := <-done
	assert.ErrorIs(t, err, ErrStale)
	assert.True(t, f.Loading(), "stale reply must not clear the newer request's loading flag")

	g.release("new topic", result{text: "fresh answer"})
	require.NoError(t, <-newer)
	assert.Equal(t, "fresh answer", f.State().Result)
	assert.Equal(t, "new topic", f.State().Input)
}

func TestFeatureFailureKeepsPriorState(t *testing.T) {
	g := newGatedCall()
	f := NewFeature(services.FeatureDoubt, g.call, nil, nil)

	g.release("What is fraction?", result{text: "first answer"})
	_, err := f.Submit(context.Background(), models.LanguageSimpleTarget, "What is fraction?")
	require.NoError(t, err)
	<-g.started

	g.release("What is gravity?", result{err: &APIError{StatusCode: 429, Message: "Rate limit exceeded. Please try again in a moment."}})
	_, err = f.Submit(context.Background(), models.LanguagePrimaryScript, "What is gravity?")
	<-g.started

	var toastErr *ToastError
	require.ErrorAs(t, err, &toastErr)
	assert.Equal(t, toastRateLimited.hindi, toastErr.Toast)
	assert.ErrorIs(t, err, services.ErrRateLimited)

	state := f.State()
	assert.Equal(t, "What is fraction?", state.Input)
	assert.Equal(t, "first answer", state.Result)
	assert.Equal(t, toastRateLimited.hindi, state.Toast)
	assert.False(t, f.Loading())
}

func TestToast(t *testing.T) {
	malformed := &APIError{StatusCode: 500, Message: "Failed to parse AI response"}
	assert.Equal(t, "Could not generate questions", Toast(services.FeatureQuiz, models.LanguageSimpleTarget, malformed))
	assert.Equal(t, toastGeneric.english, Toast(services.FeatureDoubt, models.LanguageSimpleTarget, malformed))
	assert.Equal(t, toastQuota.hinglish, Toast(services.FeatureLesson, models.LanguageRomanizedMixed, &APIError{StatusCode: 402}))
	assert.Equal(t, toastInvalid.english, Toast(services.FeatureLesson, models.LanguageSimpleTarget, &APIError{StatusCode: 400}))
	assert.Equal(t, toastGeneric.hindi, Toast(services.FeatureDoubt, models.LanguagePrimaryScript, errors.New("boom")))
}

func TestTutorRecordsProgressLocally(t *testing.T) {
	conn, err := db.Open(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	defer conn.Close()
	progress := services.NewProgressService(kv.NewSQLiteStore(conn))

	c := newStack(t, scriptedGateway{reply: `{"definition":"d","steps":["s"],"mistakes":["m"],"practice":[{"q":"q","a":"a"}]}`})
	tutor := NewTutor(c, progress, "9876543210", nil)
	ctx := context.Background()

	_, err = tutor.Lesson.Submit(ctx, models.LanguageSimpleTarget, TopicRequest{Topic: "Fractions", Language: "english"})
	require.NoError(t, err)
	_, err = tutor.Doubt.Submit(ctx, models.LanguageSimpleTarget, DoubtRequest{Question: "What is a numerator?"})
	require.NoError(t, err)
	_, err = tutor.RecordAnswer(ctx, "Fractions", false)
	require.NoError(t, err)

	p, err := tutor.Progress(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fractions", "What is a numerator?"}, p.TopicsSearched)
	assert.Equal(t, 1, p.QuestionsAsked)
	assert.Equal(t, 1, p.WrongAnswers)
	assert.Equal(t, []string{"Fractions"}, p.WeakTopics)

	require.NoError(t, tutor.ResetProgress(ctx))
	p, err = tutor.Progress(ctx)
	require.NoError(t, err)
	assert.Empty(t, p.TopicsSearched)
	assert.False(t, tutor.Lesson.State().HasResult)
}
