package prompt

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrCancelled is returned when the operator aborts input (Ctrl+C or end
// of input).
var ErrCancelled = errors.New("prompt cancelled")

// Answers maps Question.Key to the accepted answer.
type Answers map[string]string

// Question is one step of the pipeline.
type Question struct {
	// Key stores the accepted answer in Answers. Questions with an empty
	// Key are asked but not recorded (e.g. "Press Enter to continue").
	Key string

	// Intro lines are printed once before the first ask (menus).
	Intro []string

	// Prompt is the text shown on the input line.
	Prompt string

	// Default replaces an empty answer.
	Default string

	// Normalize is applied to the answer before validation.
	Normalize func(string) string

	// Validate rejects an answer; its error message is shown before the
	// question is asked again.
	Validate Validator

	// When skips the question unless it returns true for the answers so
	// far. nil always asks.
	When func(Answers) bool
}

// Asker reads one raw answer for a question and shows messages to the
// operator.
type Asker interface {
	// Ask displays q and returns the raw answer line without its newline.
	Ask(ctx context.Context, q Question) (string, error)

	// Say shows a message line.
	Say(msg string)
}

// AskOne asks q until its answer validates and returns the accepted
// answer.
func AskOne(ctx context.Context, asker Asker, q Question) (string, error) {
	for _, line := range q.Intro {
		asker.Say(line)
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		raw, err := asker.Ask(ctx, q)
		if err != nil {
			return "", err
		}

		answer := strings.TrimSpace(raw)
		if answer == "" {
			answer = q.Default
		}
		if q.Normalize != nil {
			answer = q.Normalize(answer)
		}
		if q.Validate != nil {
			if vErr := q.Validate(answer); vErr != nil {
				asker.Say(vErr.Error())
				continue
			}
		}
		return answer, nil
	}
}

// Run asks qs in order and collects the answers. It stops at the first
// error.
func Run(ctx context.Context, asker Asker, qs []Question) (Answers, error) {
	answers := make(Answers, len(qs))
	for _, q := range qs {
		if q.When != nil && !q.When(answers) {
			continue
		}
		answer, err := AskOne(ctx, asker, q)
		if err != nil {
			if q.Key != "" {
				return answers, fmt.Errorf("%s: %w", q.Key, err)
			}
			return answers, err
		}
		if q.Key != "" {
			answers[q.Key] = answer
		}
	}
	return answers, nil
}

// Pause asks the operator to press Enter.
func Pause(ctx context.Context, asker Asker) error {
	_, err := AskOne(ctx, asker, Question{Prompt: "Press Enter to continue or Ctrl+C to abort"})
	return err
}

// Confirm asks a Y/n question; an empty answer means yes.
func Confirm(ctx context.Context, asker Asker, text string) (bool, error) {
	answer, err := AskOne(ctx, asker, Question{
		Prompt:    text + " [Y/n]:",
		Default:   "Y",
		Normalize: strings.ToUpper,
		Validate:  YesNo(),
	})
	if err != nil {
		return false, err
	}
	return IsYes(answer), nil
}
