package session

import (
	"context"

	"github.com/shinji-kodama/stackup/internal/model"
	"github.com/shinji-kodama/stackup/internal/prompt"
)

const (
	keyAuth           = "auth"
	keyBreezeStack    = "breezeStack"
	keyDarkMode       = "darkMode"
	keyJetstreamStack = "jetstreamStack"
	keyTeams          = "teams"
	keyTesting        = "testing"
)

var authKinds = []model.AuthKind{model.AuthNone, model.AuthBreeze, model.AuthJetstream}

func answered(key, value string) func(prompt.Answers) bool {
	return func(a prompt.Answers) bool { return a[key] == value }
}

// yesNoQuestion asks a [y/n] question that defaults to no.
func yesNoQuestion(key, text string, when func(prompt.Answers) bool) prompt.Question {
	return prompt.Question{
		Key:      key,
		Prompt:   text + " [y/n]:",
		Default:  "n",
		Validate: prompt.YesNo(),
		When:     when,
	}
}

// laravelQuestions returns the starter-kit questions. Dark mode is only
// offered when darkMode is true.
func laravelQuestions(darkMode bool) []prompt.Question {
	breeze := answered(keyAuth, "2")
	jetstream := answered(keyAuth, "3")

	qs := []prompt.Question{
		{
			Key: keyAuth,
			Intro: []string{
				"", "Laravel Project Setup Options:", "",
				"Select authentication setup:",
				"1. No authentication (skip)",
				"2. Laravel Breeze (minimal)",
				"3. Laravel Jetstream",
			},
			Prompt:   "Choose authentication (1-3):",
			Validate: prompt.Choice(3),
		},
		{
			Key: keyBreezeStack,
			Intro: []string{
				"", "Select Breeze stack:",
				"1. Blade with Alpine.js",
				"2. Livewire (Blade + Alpine.js + Livewire)",
				"3. React with Inertia",
				"4. Vue with Inertia",
				"5. API only",
			},
			Prompt:   "Choose stack (1-5):",
			Validate: prompt.Choice(len(model.BreezeStacks)),
			When:     breeze,
		},
	}
	if darkMode {
		qs = append(qs, yesNoQuestion(keyDarkMode, "Would you like to include dark mode support?", breeze))
	}
	return append(qs,
		prompt.Question{
			Key: keyJetstreamStack,
			Intro: []string{
				"", "Select Jetstream stack:",
				"1. Livewire + Blade",
				"2. Inertia + Vue.js",
			},
			Prompt:   "Choose stack (1-2):",
			Validate: prompt.Choice(len(model.JetstreamStacks)),
			When:     jetstream,
		},
		yesNoQuestion(keyTeams, "Would you like to include team support?", jetstream),
	)
}

var testingQuestion = prompt.Question{
	Key: keyTesting,
	Intro: []string{
		"", "Select testing framework:",
		"1. PHPUnit (default)",
		"2. Pest (recommended)",
	},
	Prompt:   "Choose testing framework (1-2):",
	Validate: prompt.Choice(2),
}

// LaravelOptions asks for the Laravel starter kit and test framework.
// Its signature matches installer.OptionsFunc.
func (s *Session) LaravelOptions(ctx context.Context, project *model.Project) (model.LaravelOptions, error) {
	darkMode := project.PHPVersion.Major() >= 8

	answers, err := prompt.Run(ctx, s.asker, laravelQuestions(darkMode))
	if err != nil {
		return model.LaravelOptions{}, err
	}
	if answers[keyAuth] == "2" && !darkMode {
		s.asker.Say("Skipping dark mode installation (requires PHP ≥8.0, selected " + project.PHPVersion.String() + ")")
	}

	testAnswers, err := prompt.Run(ctx, s.asker, []prompt.Question{testingQuestion})
	if err != nil {
		return model.LaravelOptions{}, err
	}

	opts := model.LaravelOptions{
		Auth:    authKinds[choiceIndex(answers[keyAuth])],
		Testing: model.TestPHPUnit,
	}
	switch opts.Auth {
	case model.AuthBreeze:
		opts.BreezeStack = model.BreezeStacks[choiceIndex(answers[keyBreezeStack])]
		opts.DarkMode = prompt.IsYes(answers[keyDarkMode])
	case model.AuthJetstream:
		opts.JetstreamStack = model.JetstreamStacks[choiceIndex(answers[keyJetstreamStack])]
		opts.Teams = prompt.IsYes(answers[keyTeams])
	}
	if testAnswers[keyTesting] == "2" {
		opts.Testing = model.TestPest
	}
	return opts, nil
}
