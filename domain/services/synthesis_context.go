package services

import (
	"fmt"
	"strings"

	"inward-backend/domain/core/entities"
)

// Fetch limits for one synthesis run.
const (
	SynthesisMaxInsights     = 100
	SynthesisMaxDocuments    = 50
	SynthesisMaxExperiments  = 20
	SynthesisMaxActions      = 50
	SynthesisMaxObservations = 30

	insightBodyBudget     = 200
	documentSummaryBudget = 150
	observationBudget     = 200
)

// SynthesisInput is everything a synthesis run reads. Documents are
// observations carrying a summary, fetched separately with their own
// limit.
type SynthesisInput struct {
	Identity     *entities.IdentityStatement
	Topics       []entities.Topic
	Insights     []entities.Insight
	Documents    []entities.Observation
	Experiments  []entities.Experiment
	Actions      []entities.Action
	Observations []entities.Observation
}

// BuildSynthesisContext assembles the single labeled text context sent
// to the model. Per-item bodies are clipped to fixed character budgets;
// counts are already capped by the fetch limits.
func BuildSynthesisContext(input SynthesisInput) string {
	var b strings.Builder

	b.WriteString("## IDENTITY\n")
	if input.Identity != nil {
		b.WriteString(input.Identity.SelfDescription)
		b.WriteString("\n")
		if input.Identity.WeeklyFocus != "" {
			fmt.Fprintf(&b, "Weekly focus: %s\n", input.Identity.WeeklyFocus)
		}
		if input.Identity.LongHorizon != "" {
			fmt.Fprintf(&b, "Long horizon: %s\n", input.Identity.LongHorizon)
		}
	} else {
		b.WriteString("(not yet defined)\n")
	}

	b.WriteString("\n## VALUES\n")
	if input.Identity != nil && input.Identity.CoreValues != "" {
		b.WriteString(input.Identity.CoreValues)
		b.WriteString("\n")
	} else {
		b.WriteString("(none recorded)\n")
	}

	b.WriteString("\n## TOPICS\n")
	topicNames := make(map[string]string, len(input.Topics))
	for _, t := range input.Topics {
		topicNames[t.ID] = t.Name
		fmt.Fprintf(&b, "- %s\n", t.Name)
	}

	b.WriteString("\n## INSIGHTS\n")
	for _, in := range input.Insights {
		line := fmt.Sprintf("- %s: %s", in.Title, clip(in.Body, insightBodyBudget))
		if name := topicNames[in.TopicID]; name != "" {
			line += fmt.Sprintf(" [topic: %s]", name)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n## DOCUMENTS\n")
	for _, d := range input.Documents {
		fmt.Fprintf(&b, "- %s\n", clip(d.Summary, documentSummaryBudget))
	}

	b.WriteString("\n## EXPERIMENTS\n")
	for _, e := range input.Experiments {
		line := fmt.Sprintf("- %s (%s)", e.Title, e.Status)
		if e.Hypothesis != "" {
			line += fmt.Sprintf(": %s", e.Hypothesis)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n## ACTIONS\n")
	for _, a := range input.Actions {
		fmt.Fprintf(&b, "- [%s] %s\n", a.Pillar, a.Text)
	}

	b.WriteString("\n## OBSERVATIONS\n")
	for _, o := range input.Observations {
		fmt.Fprintf(&b, "- (%s) %s\n", o.Kind, clip(o.Text, observationBudget))
	}

	return b.String()
}

// SynthesisResponseSchema is the JSON schema the model backend is
// forced to answer through.
func SynthesisResponseSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"synthesis": map[string]interface{}{
				"type":        "string",
				"description": "A multi-paragraph synthesis of the material",
			},
			"core_themes": map[string]interface{}{
				"type":     "array",
				"items":    map[string]interface{}{"type": "string"},
				"minItems": 3,
				"maxItems": 5,
			},
			"emerging_direction": map[string]interface{}{
				"type":        "string",
				"description": "One sentence naming where this person seems headed",
			},
			"hidden_connections": map[string]interface{}{
				"type":     "array",
				"items":    map[string]interface{}{"type": "string"},
				"minItems": 2,
				"maxItems": 4,
			},
			"distillation": map[string]interface{}{
				"type":        "string",
				"description": "A single sentence distilling everything",
			},
		},
		"required": []string{
			"synthesis",
			"core_themes",
			"emerging_direction",
			"hidden_connections",
			"distillation",
		},
	}
}

// clip shortens s to max characters. Budgets are rune counts, so
// multibyte text keeps its full budget and never ends mid-rune.
func clip(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
