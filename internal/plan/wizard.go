package plan

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// State is a snapshot of the wizard.
type State struct {
	Step    int            `json:"step"`
	Current *Step          `json:"current,omitempty"`
	Input   string         `json:"input"`
	Answers map[int]string `json:"answers"`
	Plan    string         `json:"plan,omitempty"`
	// Progress is the percentage shown next to "Step N of 10".
	Progress int `json:"progress"`
}

// Wizard walks a user through the ten planning questions and produces a plan.
type Wizard struct {
	mu        sync.Mutex
	generator Generator
	logger    *zap.Logger
	step      int
	answers   map[int]string
	plan      string
}

// NewWizard creates a wizard at the intro step.
func NewWizard(generator Generator, logger *zap.Logger) *Wizard {
	if generator == nil {
		generator = Unavailable()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Wizard{generator: generator, logger: logger, answers: map[int]string{}}
}

// Start moves from the intro to the first question.
func (w *Wizard) Start() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step == StepIntro {
		w.step = FirstStep
	}
	return w.stateLocked()
}

// Next stores input for the current question and advances. It stops at step 10.
func (w *Wizard) Next(input string) State {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step >= FirstStep && w.step < LastStep {
		w.answers[w.step] = input
		w.step++
	}
	return w.stateLocked()
}

// Previous stores input for the current question and goes back. It stops at step 1.
func (w *Wizard) Previous(input string) State {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step > FirstStep && w.step <= LastStep {
		w.answers[w.step] = input
		w.step--
	}
	return w.stateLocked()
}

// Generate stores the step 10 answer and requests the plan. Any generator
// failure puts ErrorText in place of the plan; the wizard always ends on
// the complete step.
func (w *Wizard) Generate(ctx context.Context, input string) State {
	w.mu.Lock()
	if w.step != LastStep {
		defer w.mu.Unlock()
		return w.stateLocked()
	}
	w.answers[LastStep] = input
	w.step = StepGenerating
	prompt := ComposePrompt(w.answers)
	w.mu.Unlock()

	text, err := w.generator.Generate(ctx, SystemInstruction, prompt)
	if err != nil {
		w.logger.Error("generate plan", zap.Error(err))
		text = ErrorText
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step != StepGenerating {
		// reset while the request was in flight
		return w.stateLocked()
	}
	w.plan = text
	w.step = StepComplete
	return w.stateLocked()
}

// StartOver clears every answer and returns to the intro.
func (w *Wizard) StartOver() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.step = StepIntro
	w.answers = map[int]string{}
	w.plan = ""
	return w.stateLocked()
}

// State returns the current snapshot.
func (w *Wizard) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stateLocked()
}

func (w *Wizard) stateLocked() State {
	answers := make(map[int]string, len(w.answers))
	for k, v := range w.answers {
		answers[k] = v
	}
	st := State{Step: w.step, Answers: answers, Plan: w.plan, Input: w.answers[w.step]}
	if step, ok := StepAt(w.step); ok {
		st.Current = &step
		st.Progress = w.step * 10
	}
	return st
}
