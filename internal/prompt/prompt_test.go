package prompt

import (
	"bytes"
	"context"
	"io"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskOne_ReasksUntilValid(t *testing.T) {
	asker := NewScriptedAsker("4", "x", "2")
	answer, err := AskOne(context.Background(), asker, Question{
		Prompt:   "Select project type (1-3):",
		Validate: Choice(3),
	})

	require.NoError(t, err)
	assert.Equal(t, "2", answer)
	assert.Len(t, asker.Prompts, 3)
	assert.Equal(t, []string{
		"Please enter a number between 1 and 3",
		"Please enter a number between 1 and 3",
	}, asker.Said)
}

func TestAskOne_DefaultAndNormalize(t *testing.T) {
	asker := NewScriptedAsker("   ")
	answer, err := AskOne(context.Background(), asker, Question{
		Prompt:    "Use default PHP port (9000)? [Y/n]:",
		Default:   "y",
		Normalize: strings.ToUpper,
		Validate:  YesNo(),
	})
	require.NoError(t, err)
	assert.Equal(t, "Y", answer)
}

func TestAskOne_IntroPrintedOnce(t *testing.T) {
	asker := NewScriptedAsker("9", "1")
	_, err := AskOne(context.Background(), asker, Question{
		Intro:    []string{"Select project type:", "1. Laravel"},
		Prompt:   ">",
		Validate: Choice(3),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Select project type:", "1. Laravel", "Please enter a number between 1 and 3"}, asker.Said)
}

func TestAskOne_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := AskOne(ctx, NewScriptedAsker("1"), Question{Prompt: ">"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_WhenSkipsQuestions(t *testing.T) {
	asker := NewScriptedAsker("2", "demo")
	answers, err := Run(context.Background(), asker, []Question{
		{Key: "type", Prompt: "type:", Validate: Choice(3)},
		{Key: "php", Prompt: "php:", Validate: Choice(5), When: func(a Answers) bool { return a["type"] == "1" }},
		{Key: "name", Prompt: "name:"},
	})

	require.NoError(t, err)
	assert.Equal(t, Answers{"type": "2", "name": "demo"}, answers)
	assert.Equal(t, []string{"type:", "name:"}, asker.Prompts)
	assert.Zero(t, asker.Remaining())
}

func TestRun_OutOfAnswers(t *testing.T) {
	answers, err := Run(context.Background(), NewScriptedAsker("1"), []Question{
		{Key: "a", Prompt: "a:"},
		{Key: "b", Prompt: "b:"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCancelled)
	assert.Contains(t, err.Error(), "b:")
	assert.Equal(t, Answers{"a": "1"}, answers)
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"y", true},
		{"Y", true},
		{"n", false},
		{"N", false},
	}
	for _, tt := range tests {
		t.Run("answer "+tt.input, func(t *testing.T) {
			got, err := Confirm(context.Background(), NewScriptedAsker(tt.input), "Use default MySQL port (3306)?")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	asker := NewScriptedAsker("maybe", "n")
	got, err := Confirm(context.Background(), asker, "Continue?")
	require.NoError(t, err)
	assert.False(t, got)
	assert.Equal(t, []string{"Please enter Y or n"}, asker.Said)
	assert.Equal(t, "Continue? [Y/n]:", asker.Prompts[0])
}

func TestPause(t *testing.T) {
	asker := NewScriptedAsker("")
	require.NoError(t, Pause(context.Background(), asker))
	assert.Equal(t, []string{"Press Enter to continue or Ctrl+C to abort"}, asker.Prompts)
}

func TestValidators(t *testing.T) {
	name := MatchRegexp(regexp.MustCompile(`^[a-z0-9-]+$`), "lowercase only")
	assert.NoError(t, name("my-app-2"))
	assert.EqualError(t, name("My App"), "lowercase only")
	assert.Error(t, name(""))

	port := IntInRange(3306, 3399, "Please enter a valid port number between %d and %d")
	assert.NoError(t, port("3306"))
	assert.NoError(t, port("3399"))
	assert.EqualError(t, port("3400"), "Please enter a valid port number between 3306 and 3399")
	assert.Error(t, port("-1"))
	assert.Error(t, port("33a"))
	assert.Error(t, port("+3306"))

	assert.EqualError(t, Choice(2)("3"), "Please enter 1 or 2")
	assert.NoError(t, Choice(2)("2"))

	var vErr *ValidationError
	assert.ErrorAs(t, YesNo()("x"), &vErr)
	assert.True(t, IsYes("y"))
	assert.False(t, IsYes("n"))
}

func TestLineAsker(t *testing.T) {
	in := strings.NewReader("laravel\r\n\nlast")
	var out bytes.Buffer
	asker := NewLineAsker(in, &out)
	ctx := context.Background()

	first, err := asker.Ask(ctx, Question{Prompt: "type:"})
	require.NoError(t, err)
	assert.Equal(t, "laravel", first)

	empty, err := asker.Ask(ctx, Question{Prompt: "name:"})
	require.NoError(t, err)
	assert.Equal(t, "", empty)

	// A final line without a newline is still an answer.
	last, err := asker.Ask(ctx, Question{Prompt: "php:"})
	require.NoError(t, err)
	assert.Equal(t, "last", last)

	_, err = asker.Ask(ctx, Question{Prompt: "more:"})
	assert.ErrorIs(t, err, ErrCancelled)

	asker.Say("hello")
	assert.Contains(t, out.String(), "type: name: php: more: ")
	assert.Contains(t, out.String(), "hello\n")
}

// TestLineAsker_Cancelled verifies Ctrl+C interrupts a blocked read and
// the abandoned line goes to the next question.
func TestLineAsker_Cancelled(t *testing.T) {
	pr, pw := io.Pipe()
	t.Cleanup(func() { _ = pw.Close() })
	var out bytes.Buffer
	asker := NewLineAsker(pr, &out)

	ctx, cancel := context.WithCancel(context.Background())
	timer := time.AfterFunc(20*time.Millisecond, cancel)
	t.Cleanup(func() { timer.Stop() })

	_, err := asker.Ask(ctx, Question{Prompt: "name:"})
	assert.ErrorIs(t, err, context.Canceled)

	go func() { _, _ = io.WriteString(pw, "shop\n") }()
	answer, err := asker.Ask(context.Background(), Question{Prompt: "name:"})
	require.NoError(t, err)
	assert.Equal(t, "shop", answer)
}

func TestLineAsker_WithRun(t *testing.T) {
	in := strings.NewReader("0\n3\n")
	var out bytes.Buffer

	answers, err := Run(context.Background(), NewLineAsker(in, &out), []Question{
		{Key: "type", Prompt: "Select project type (1-3):", Validate: Choice(3)},
	})
	require.NoError(t, err)
	assert.Equal(t, "3", answers["type"])
	assert.Contains(t, out.String(), "Please enter a number between 1 and 3")
}
