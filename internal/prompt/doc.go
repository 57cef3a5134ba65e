// Package prompt implements the sequential question pipeline behind the
// interactive init workflow.
//
// A Question is asked through an Asker, the only I/O capability the
// pipeline consumes. An empty answer takes the question's Default; the
// answer is then normalized and validated, and the question is re-asked
// with the validator's message until it passes:
//
//	answers, err := prompt.Run(ctx, asker, []prompt.Question{
//		{Key: "name", Prompt: "Enter your project name:", Validate: prompt.MatchRegexp(re, "...")},
//		{Key: "php", Prompt: "Select PHP version (1-5):", Validate: prompt.Choice(5),
//			When: func(a prompt.Answers) bool { return a["type"] == "1" }},
//	})
//
// Three Askers are provided: LineAsker for plain line-oriented streams
// (pipes, CI and tests), SurveyAsker for interactive terminals, and
// ScriptedAsker for fixed answers in tests.
package prompt
