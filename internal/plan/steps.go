package plan

import "strings"

// Wizard positions outside the numbered question steps.
const (
	StepIntro      = 0
	FirstStep      = 1
	LastStep       = 10
	StepGenerating = 11
	StepComplete   = 12
)

// Step is one question of the plan wizard.
type Step struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	Prompt string `json:"prompt"`
}

var steps = [LastStep]Step{
	{1, "Step 1: Define the Issue", "Let's start with the basics. What is the core issue or project you need a communication plan for? Why is communication necessary right now?"},
	{2, "Step 2: Analyze the Situation", "Now, let's analyze the current situation. Briefly describe the background, any research you have, and a simple SWOT analysis (Strengths, Weaknesses, Opportunities, Threats). What mindset do you want to change?"},
	{3, "Step 3: Identify Audiences", "Who are your stakeholders and target audiences? List them out and consider their level of interest and influence."},
	{4, "Step 4: Define Goals & Objectives", "What are your communication goals? For each goal, define specific, measurable objectives. For example, 'Increase public awareness by 20% by December 31st.'"},
	{5, "Step 5: Develop Strategies & Messages", "How will you achieve your goals? Outline your main strategies, key tactics, and the core messages you want to convey. Include a few talking points for each message."},
	{6, "Step 6: Determine the Budget", "What resources are required? List potential budget items like advertising, materials, or event costs. A rough estimate is fine for now."},
	{7, "Step 7: Create an Action Matrix", "Let's make this actionable. Create a simple table or list of actions, who is responsible for each (owner), and a due date."},
	{8, "Step 8: Plan for Implementation", "How will you track implementation? Think about potential risks and how you might mitigate them."},
	{9, "Step 9: Establish Measurement", "How will you measure success? List the Key Performance Indicators (KPIs) you'll be tracking and how you'll collect that data."},
	{10, "Step 10: Plan for Post-Analysis", "Finally, how will you evaluate the plan's effectiveness after the campaign? What lessons do you hope to learn for the next cycle?"},
}

// Steps returns the ten wizard questions in order.
func Steps() []Step {
	out := make([]Step, len(steps))
	copy(out, steps[:])
	return out
}

// StepAt returns question n, or false outside 1..10.
func StepAt(n int) (Step, bool) {
	if n < FirstStep || n > LastStep {
		return Step{}, false
	}
	return steps[n-1], true
}

// SystemInstruction frames every generation request.
const SystemInstruction = "You are an expert communication strategist for a public affairs office. " +
	"Your task is to synthesize user-provided notes into a formal, comprehensive 10-step communication plan. " +
	"The output should be a single, well-structured document using Markdown for formatting (headings, bold text, bullet points). " +
	"Do not output JSON or any other code format. Adopt a professional and authoritative tone. " +
	"Use '##' for main step headings (e.g., '## Step 1: Define the Issue') and '###' for subheadings. Use '*' for bullet points."

// ErrorText replaces the plan when generation fails.
const ErrorText = "Sorry, an error occurred while generating the plan. Please check your connection and API key, then try again."

const (
	promptHeader = "Please generate a complete communication plan based on the following inputs:\n\n"
	noInput      = "No input provided."
)

// ComposePrompt renders the answers of steps 1..10 into the generation prompt.
func ComposePrompt(answers map[int]string) string {
	var b strings.Builder
	b.WriteString(promptHeader)
	for _, step := range steps {
		answer := answers[step.Number]
		if answer == "" {
			answer = noInput
		}
		b.WriteString("**")
		b.WriteString(step.Title)
		b.WriteString(":**\n")
		b.WriteString(answer)
		b.WriteString("\n\n")
	}
	return b.String()
}
