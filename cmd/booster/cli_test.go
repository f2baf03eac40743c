package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"concept-booster/internal/api"
	"concept-booster/internal/kv"
	"concept-booster/internal/logger"
	"concept-booster/internal/services"
)

type cannedGateway struct {
	reply string
	err   error
}

func (g cannedGateway) Complete(context.Context, services.Prompt) (string, error) {
	return g.reply, g.err
}

func runCLI(t *testing.T, gw services.Gateway, state, stdin string, args ...string) (string, error) {
	t.Helper()
	log = logger.NewNop()

	srv := api.NewServer(services.NewTutorService(gw, nil), nil, services.NewProgressService(kv.NewMemoryStore()), nil, nil)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(append([]string{"--api", ts.URL, "--state", state, "--learner", "9876543210"}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestAskCommand(t *testing.T) {
	state := filepath.Join(t.TempDir(), "state.db")
	gw := cannedGateway{reply: `{"explanation":"A fraction is part of a whole.","steps":["Top is numerator","Bottom is denominator"],"example":"🍕 3/8","tip":"💡 Never divide by zero"}`}

	out, err := runCLI(t, gw, state, "", "ask", "What", "is", "fraction?")
	require.NoError(t, err)
	assert.Contains(t, out, "A fraction is part of a whole.")
	assert.Contains(t, out, "2. Bottom is denominator")

	out, err = runCLI(t, gw, state, "", "progress")
	require.NoError(t, err)
	assert.Contains(t, out, "Questions asked: 1")
	assert.Contains(t, out, "What is fraction?")
}

func TestAskCommandShowsToast(t *testing.T) {
	t.Cleanup(func() { language = "english" })
	state := filepath.Join(t.TempDir(), "state.db")
	_, err := runCLI(t, cannedGateway{err: services.ErrRateLimited}, state, "", "--language", "hinglish", "ask", "why?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Thodi der baad")
}

func TestQuizCommand(t *testing.T) {
	state := filepath.Join(t.TempDir(), "state.db")
	gw := cannedGateway{reply: "```json\n[" +
		`{"q":"1/2 + 1/2 = ?","options":["1","2","1/4","0"],"correct":0,"explanation":"Two halves make a whole"},` +
		`{"q":"Bigger: 1/3 or 1/2?","options":["1/3","1/2","same","neither"],"correct":1,"explanation":"Fewer slices, bigger slice"}` +
		"]\n```"}

	out, err := runCLI(t, gw, state, "x\n1\na\n", "quiz", "--count", "5", "Fractions")
	require.NoError(t, err)
	assert.Contains(t, out, "Answer with 1-4 or a-d.")
	assert.Contains(t, out, "✅ Correct!")
	assert.Contains(t, out, "❌ The answer is b) 1/2")
	assert.Contains(t, out, "Score: 1/2")

	out, err = runCLI(t, gw, state, "", "progress")
	require.NoError(t, err)
	assert.Contains(t, out, "Quiz accuracy:   50% (1 correct, 1 wrong)")
	assert.Contains(t, out, "Needs practice:  Fractions")

	out, err = runCLI(t, gw, state, "", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Progress cleared for 9876543210")

	out, err = runCLI(t, gw, state, "", "progress")
	require.NoError(t, err)
	assert.Contains(t, out, "Questions asked: 0")
}

func TestQuizCommandFailsLoudly(t *testing.T) {
	state := filepath.Join(t.TempDir(), "state.db")
	_, err := runCLI(t, cannedGateway{reply: "Sorry, I cannot help"}, state, "", "quiz", "Fractions")
	require.Error(t, err)
	assert.Equal(t, "Could not generate questions", err.Error())
}

func TestParseChoice(t *testing.T) {
	for raw, want := range map[string]int{"a": 0, "B": 1, " 3 ": 2, "4": 3} {
		got, ok := parseChoice(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	for _, raw := range []string{"", "e", "0", "5", "ab"} {
		_, ok := parseChoice(raw)
		assert.False(t, ok, raw)
	}
}
