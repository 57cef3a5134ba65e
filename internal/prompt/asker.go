package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// LineAsker reads answers line by line from a stream. It is used when
// stdin is not a terminal.
type LineAsker struct {
	reader *bufio.Reader
	out    io.Writer

	// pending is the read left running by a cancelled Ask. The next Ask
	// takes its line instead of reading concurrently.
	pending <-chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// NewLineAsker creates a LineAsker reading from in and writing to out.
func NewLineAsker(in io.Reader, out io.Writer) *LineAsker {
	return &LineAsker{reader: bufio.NewReader(in), out: out}
}

// Ask implements Asker. End of input with no pending text returns
// ErrCancelled; a cancelled ctx returns its error without waiting for
// the line.
func (a *LineAsker) Ask(ctx context.Context, q Question) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprintf(a.out, "%s ", q.Prompt)

	if a.pending == nil {
		ch := make(chan lineResult, 1)
		go func() {
			line, err := a.reader.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
		a.pending = ch
	}

	var res lineResult
	select {
	case <-ctx.Done():
		fmt.Fprintln(a.out)
		return "", ctx.Err()
	case res = <-a.pending:
		a.pending = nil
	}

	if res.err != nil {
		if errors.Is(res.err, io.EOF) && res.line != "" {
			return strings.TrimRight(res.line, "\r"), nil
		}
		fmt.Fprintln(a.out)
		if errors.Is(res.err, io.EOF) {
			return "", fmt.Errorf("%w: end of input", ErrCancelled)
		}
		return "", fmt.Errorf("failed to read answer: %w", res.err)
	}
	return strings.TrimRight(res.line, "\r\n"), nil
}

// Say implements Asker.
func (a *LineAsker) Say(msg string) {
	fmt.Fprintln(a.out, msg)
}

// SurveyAsker asks questions on an interactive terminal with survey.
type SurveyAsker struct {
	in     terminal.FileReader
	out    terminal.FileWriter
	errOut io.Writer
}

// NewSurveyAsker creates a SurveyAsker on the given terminal streams.
func NewSurveyAsker(in terminal.FileReader, out terminal.FileWriter, errOut io.Writer) *SurveyAsker {
	return &SurveyAsker{in: in, out: out, errOut: errOut}
}

// Ask implements Asker. Ctrl+C returns ErrCancelled.
func (a *SurveyAsker) Ask(ctx context.Context, q Question) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var answer string
	input := &survey.Input{
		Message: strings.TrimSuffix(strings.TrimSpace(q.Prompt), ":"),
		Default: q.Default,
	}
	err := survey.AskOne(input, &answer, survey.WithStdio(a.in, a.out, a.errOut))
	if err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			return "", fmt.Errorf("%w: interrupted", ErrCancelled)
		}
		return "", fmt.Errorf("failed to read answer: %w", err)
	}
	return answer, nil
}

// Say implements Asker.
func (a *SurveyAsker) Say(msg string) {
	fmt.Fprintln(a.out, msg)
}

// ScriptedAsker replays fixed answers. It records every prompt and
// message so tests can assert on the conversation.
type ScriptedAsker struct {
	mu      sync.Mutex
	answers []string
	Prompts []string
	Said    []string
}

// NewScriptedAsker creates a ScriptedAsker that returns answers in order.
func NewScriptedAsker(answers ...string) *ScriptedAsker {
	return &ScriptedAsker{answers: answers}
}

// Ask implements Asker. Running out of answers returns ErrCancelled.
func (a *ScriptedAsker) Ask(_ context.Context, q Question) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.Prompts = append(a.Prompts, q.Prompt)
	if len(a.answers) == 0 {
		return "", fmt.Errorf("%w: no scripted answer for %q", ErrCancelled, q.Prompt)
	}
	answer := a.answers[0]
	a.answers = a.answers[1:]
	return answer, nil
}

// Say implements Asker.
func (a *ScriptedAsker) Say(msg string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Said = append(a.Said, msg)
}

// Remaining returns the number of unused answers.
func (a *ScriptedAsker) Remaining() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.answers)
}
