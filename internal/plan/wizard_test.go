package plan

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingGenerator struct {
	system string
	prompt string
	text   string
	err    error
}

func (g *recordingGenerator) Generate(_ context.Context, system, prompt string) (string, error) {
	g.system, g.prompt = system, prompt
	return g.text, g.err
}

func walkToLast(w *Wizard) {
	w.Start()
	for i := FirstStep; i < LastStep; i++ {
		answer := ""
		if i%2 == 1 {
			answer = "answer " + string(rune('0'+i))
		}
		w.Next(answer)
	}
}

func TestStepsTable(t *testing.T) {
	all := Steps()
	require.Len(t, all, 10)
	for i, s := range all {
		assert.Equal(t, i+1, s.Number)
		assert.True(t, strings.HasPrefix(s.Title, "Step "))
		assert.NotEmpty(t, s.Prompt)
	}
	_, ok := StepAt(0)
	assert.False(t, ok)
	_, ok = StepAt(11)
	assert.False(t, ok)
}

func TestComposePrompt(t *testing.T) {
	prompt := ComposePrompt(map[int]string{1: "Flood season outreach", 10: "Lessons"})

	assert.True(t, strings.HasPrefix(prompt, "Please generate a complete communication plan based on the following inputs:\n\n"))
	assert.Contains(t, prompt, "**Step 1: Define the Issue:**\nFlood season outreach\n\n")
	assert.Contains(t, prompt, "**Step 2: Analyze the Situation:**\nNo input provided.\n\n")
	assert.True(t, strings.HasSuffix(prompt, "**Step 10: Plan for Post-Analysis:**\nLessons\n\n"))
	assert.Equal(t, 9, strings.Count(prompt, "No input provided."))
}

func TestWizardNavigation(t *testing.T) {
	w := NewWizard(nil, nil)
	assert.Equal(t, StepIntro, w.State().Step)
	assert.Nil(t, w.State().Current)

	st := w.Start()
	assert.Equal(t, 1, st.Step)
	assert.Equal(t, 10, st.Progress)

	st = w.Previous("kept")
	assert.Equal(t, 1, st.Step, "cannot go before step 1")

	w.Next("first")
	st = w.Next("second")
	assert.Equal(t, 3, st.Step)

	st = w.Previous("third draft")
	assert.Equal(t, 2, st.Step)
	assert.Equal(t, "second", st.Input)
	assert.Equal(t, "third draft", st.Answers[3])

	for i := 0; i < 20; i++ {
		st = w.Next("x")
	}
	assert.Equal(t, LastStep, st.Step, "next stops at step 10")
	assert.Equal(t, 100, st.Progress)
}

func TestWizardGenerate(t *testing.T) {
	gen := &recordingGenerator{text: "## Step 1: Define the Issue\nPlan body"}
	w := NewWizard(gen, nil)
	walkToLast(w)

	st := w.Generate(context.Background(), "final thoughts")
	assert.Equal(t, StepComplete, st.Step)
	assert.Equal(t, gen.text, st.Plan)
	assert.Equal(t, SystemInstruction, gen.system)
	assert.Contains(t, gen.prompt, "**Step 10: Plan for Post-Analysis:**\nfinal thoughts")
	assert.Contains(t, gen.prompt, "**Step 1: Define the Issue:**\nanswer 1")
}

func TestWizardGenerateFailure(t *testing.T) {
	w := NewWizard(&recordingGenerator{err: errors.New("quota exceeded")}, nil)
	walkToLast(w)

	st := w.Generate(context.Background(), "")
	assert.Equal(t, StepComplete, st.Step)
	assert.Equal(t, ErrorText, st.Plan)
}

func TestWizardGenerateWithoutKey(t *testing.T) {
	w := NewWizard(Unavailable(), nil)
	walkToLast(w)
	assert.Equal(t, ErrorText, w.Generate(context.Background(), "x").Plan)
}

func TestWizardGenerateOnlyFromLastStep(t *testing.T) {
	gen := &recordingGenerator{text: "plan"}
	w := NewWizard(gen, nil)
	w.Start()

	st := w.Generate(context.Background(), "too early")
	assert.Equal(t, 1, st.Step)
	assert.Empty(t, gen.prompt)
}

func TestWizardStartOver(t *testing.T) {
	w := NewWizard(&recordingGenerator{text: "plan"}, nil)
	walkToLast(w)
	w.Generate(context.Background(), "done")

	st := w.StartOver()
	assert.Equal(t, StepIntro, st.Step)
	assert.Empty(t, st.Answers)
	assert.Empty(t, st.Plan)
}
