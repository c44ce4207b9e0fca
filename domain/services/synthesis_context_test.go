package services

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inward-backend/domain/core/entities"
)

func TestBuildSynthesisContext_LabelsSections(t *testing.T) {
	ctx := BuildSynthesisContext(SynthesisInput{
		Identity: &entities.IdentityStatement{
			UserID:          "user-1",
			SelfDescription: "a careful builder",
			CoreValues:      "depth over breadth",
		},
		Topics:   []entities.Topic{{ID: "t1", Name: "deep work"}},
		Insights: []entities.Insight{{ID: "i1", Title: "blocks win", Body: "short body", TopicID: "t1"}},
		Actions:  []entities.Action{{ID: "a1", Text: "wrote for an hour", Pillar: entities.PillarCraft}},
	})

	assert.Contains(t, ctx, "## IDENTITY\na careful builder")
	assert.Contains(t, ctx, "## VALUES\ndepth over breadth")
	assert.Contains(t, ctx, "- blocks win: short body [topic: deep work]")
	assert.Contains(t, ctx, "- [craft] wrote for an hour")
}

func TestBuildSynthesisContext_EmptyIdentityDegrades(t *testing.T) {
	ctx := BuildSynthesisContext(SynthesisInput{})

	assert.Contains(t, ctx, "(not yet defined)")
	assert.Contains(t, ctx, "(none recorded)")
}

func TestBuildSynthesisContext_ClipsBodiesByRune(t *testing.T) {
	// Two hundred characters exactly stays whole even though the byte
	// length is double the budget; one more gets the ellipsis.
	under := strings.Repeat("ж", insightBodyBudget)
	over := under + "ж"

	ctx := BuildSynthesisContext(SynthesisInput{
		Insights: []entities.Insight{
			{ID: "i1", Title: "first", Body: under},
			{ID: "i2", Title: "second", Body: over},
		},
	})

	require.True(t, utf8.ValidString(ctx))
	assert.Contains(t, ctx, "- first: "+under+"\n")
	assert.Contains(t, ctx, "- second: "+under+"...")
}
