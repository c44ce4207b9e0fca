package emergence

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inward-backend/domain/core/entities"
	"inward-backend/domain/services"
)

func newTestDetector() *Detector {
	fixed := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	return NewDetector(services.NewDefaultTextAnalyzer()).WithClock(func() time.Time { return fixed })
}

func insight(id, title, body, topicID string) entities.Insight {
	return entities.Insight{ID: id, UserID: "user-1", Title: title, Body: body, TopicID: topicID}
}

func action(id, text string) entities.Action {
	return entities.Action{ID: id, UserID: "user-1", Text: text, Pillar: entities.PillarCraft}
}

func TestDetect_InsufficientData(t *testing.T) {
	d := newTestDetector()

	tests := []struct {
		name string
		snap Snapshot
	}{
		{"empty", Snapshot{}},
		{"two insights", Snapshot{Insights: []entities.Insight{
			insight("i1", "a", "", ""),
			insight("i2", "b", "", ""),
		}}},
		{"one of each kind short", Snapshot{
			Insights: []entities.Insight{insight("i1", "a", "", "")},
			Actions:  []entities.Action{action("a1", "did a thing")},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := d.Detect(tt.snap)
			assert.Equal(t, StatusInsufficient, result.Status)
			assert.Nil(t, result.Finding)
		})
	}
}

func TestDetect_MixedRecordsSatisfyMinimum(t *testing.T) {
	d := newTestDetector()

	// One insight, one action, one experiment total three records. The
	// gate passes even though no strategy can fire.
	snap := Snapshot{
		Insights:    []entities.Insight{insight("i1", "short", "", "")},
		Actions:     []entities.Action{action("a1", "x")},
		Experiments: []entities.Experiment{{ID: "e1", Title: "", Status: entities.ExperimentComplete}},
	}

	result := d.Detect(snap)
	assert.Equal(t, StatusNone, result.Status)
}

func TestTopicThread(t *testing.T) {
	d := newTestDetector()

	snap := Snapshot{
		Topics: []entities.Topic{{ID: "t1", Name: "deep work"}},
		Insights: []entities.Insight{
			insight("i1", "morning blocks beat evening ones", "", "t1"),
			insight("i2", "untopiced stray", "", ""),
			insight("i3", "context switches cost an hour", "", "t1"),
			insight("i4", strings.Repeat("x", 60), "", "t1"),
		},
	}

	result := d.Detect(snap)
	require.Equal(t, StatusFound, result.Status)
	require.NotNil(t, result.Finding)

	f := result.Finding
	assert.Equal(t, KindThread, f.Kind)
	assert.Contains(t, f.Title, "deep work")
	require.Len(t, f.Items, 3)
	assert.Equal(t, "i1", f.Items[0].ID)
	assert.Equal(t, "i3", f.Items[1].ID)
	assert.Equal(t, "i4", f.Items[2].ID)

	// Long titles are cut to 40 characters plus an ellipsis.
	assert.Equal(t, strings.Repeat("x", 40)+"...", f.Items[2].Title)
}

func TestTopicThread_BodyCountsWholeGroup(t *testing.T) {
	d := newTestDetector()

	// Five insights share the topic; the body reports all five while the
	// linked items stay at the three newest.
	snap := Snapshot{
		Topics: []entities.Topic{{ID: "t1", Name: "deep work"}},
		Insights: []entities.Insight{
			insight("i1", "aaaa", "", "t1"),
			insight("i2", "bbbb", "", "t1"),
			insight("i3", "cccc", "", "t1"),
			insight("i4", "dddd", "", "t1"),
			insight("i5", "eeee", "", "t1"),
		},
	}

	result := d.Detect(snap)
	require.Equal(t, StatusFound, result.Status)

	f := result.Finding
	assert.Contains(t, f.Body, "5 of your recent insights")
	require.Len(t, f.Items, 3)
	assert.Equal(t, "i1", f.Items[0].ID)
	assert.Equal(t, "i3", f.Items[2].ID)
}

func TestTopicThread_MultibyteTitlesTruncateByRune(t *testing.T) {
	d := newTestDetector()

	// Forty characters but far more bytes; the title must survive intact.
	under := "идеи о глубокой работе и внимании длинны"
	over := under + "е"

	snap := Snapshot{
		Topics: []entities.Topic{{ID: "t1", Name: "глубокая работа"}},
		Insights: []entities.Insight{
			insight("i1", under, "", "t1"),
			insight("i2", over, "", "t1"),
			insight("i3", "режим без встреч по утрам", "", "t1"),
		},
	}

	result := d.Detect(snap)
	require.Equal(t, StatusFound, result.Status)

	f := result.Finding
	require.Len(t, f.Items, 3)
	assert.Equal(t, under, f.Items[0].Title)
	assert.Equal(t, under+"...", f.Items[1].Title)
	for _, item := range f.Items {
		assert.True(t, utf8.ValidString(item.Title))
	}
}

func TestTopicThread_TwoInsightsNotEnough(t *testing.T) {
	d := newTestDetector()

	snap := Snapshot{
		Topics: []entities.Topic{{ID: "t1", Name: "sleep"}},
		Insights: []entities.Insight{
			insight("i1", "aaaa", "", "t1"),
			insight("i2", "bbbb", "", "t1"),
			insight("i3", "cccc", "", ""),
		},
	}

	result := d.Detect(snap)
	assert.Equal(t, StatusNone, result.Status)
}

func TestKeywordConnection(t *testing.T) {
	d := newTestDetector()

	snap := Snapshot{
		Insights: []entities.Insight{
			insight("i1", "procrastination spikes before big launches", "", ""),
			insight("i2", "email is where mornings go to die", "", ""),
			insight("i3", "procrastination is fear wearing a costume", "", ""),
			insight("i4", "walking resets my attention", "", ""),
		},
	}

	result := d.Detect(snap)
	require.Equal(t, StatusFound, result.Status)

	f := result.Finding
	assert.Equal(t, KindConnection, f.Kind)
	assert.Contains(t, f.Title, "procrastination")
	require.Len(t, f.Items, 2)
	assert.Equal(t, "i1", f.Items[0].ID)
	assert.Equal(t, "i3", f.Items[1].ID)
}

func TestKeywordConnection_WindowIsFourNewest(t *testing.T) {
	d := newTestDetector()

	// The shared word only appears in the newest and the fifth insight,
	// so it falls outside the four-insight window.
	snap := Snapshot{
		Insights: []entities.Insight{
			insight("i1", "gardening on sunday mornings", "", ""),
			insight("i2", "aaaa", "", ""),
			insight("i3", "bbbb", "", ""),
			insight("i4", "cccc", "", ""),
			insight("i5", "gardening as meditation", "", ""),
		},
	}

	result := d.Detect(snap)
	assert.Equal(t, StatusNone, result.Status)
}

func TestKeywordConnection_ShortWordsIgnored(t *testing.T) {
	d := newTestDetector()

	// "sleep" has five letters, one short of significant.
	snap := Snapshot{
		Insights: []entities.Insight{
			insight("i1", "sleep first", "", ""),
			insight("i2", "sleep again", "", ""),
			insight("i3", "sleep third", "", ""),
		},
	}

	result := d.Detect(snap)
	assert.Equal(t, StatusNone, result.Status)
}

func TestKeywordConnection_RepeatsInsideOneInsightDoNotCount(t *testing.T) {
	d := newTestDetector()

	snap := Snapshot{
		Insights: []entities.Insight{
			insight("i1", "momentum momentum momentum", "momentum everywhere", ""),
			insight("i2", "something unrelated entirely", "", ""),
			insight("i3", "different matters", "", ""),
		},
	}

	result := d.Detect(snap)
	assert.Equal(t, StatusNone, result.Status)
}

func TestExperimentActionLink(t *testing.T) {
	d := newTestDetector()

	snap := Snapshot{
		Experiments: []entities.Experiment{
			{ID: "e0", Title: "cold showers", Status: entities.ExperimentAbandoned},
			{ID: "e1", Title: "meditation before email", Status: entities.ExperimentActive},
		},
		Actions: []entities.Action{
			action("a1", "10 minute meditation after lunch"),
			action("a2", "skipped the gym"),
			action("a3", "meditation on the train"),
		},
	}

	result := d.Detect(snap)
	require.Equal(t, StatusFound, result.Status)

	f := result.Finding
	assert.Equal(t, KindPattern, f.Kind)
	assert.Contains(t, f.Title, "meditation before email")
	require.Len(t, f.Items, 2)
	assert.Equal(t, "a1", f.Items[0].ID)
	assert.Equal(t, "a3", f.Items[1].ID)
}

func TestExperimentActionLink_NoActiveExperiment(t *testing.T) {
	d := newTestDetector()

	snap := Snapshot{
		Experiments: []entities.Experiment{
			{ID: "e1", Title: "meditation daily", Status: entities.ExperimentComplete},
		},
		Actions: []entities.Action{
			action("a1", "meditation at dawn"),
			action("a2", "meditation at noon"),
			action("a3", "meditation at dusk"),
		},
	}

	result := d.Detect(snap)
	assert.Equal(t, StatusNone, result.Status)
}

func TestIdentityAlignment(t *testing.T) {
	d := newTestDetector()

	snap := Snapshot{
		Identity: &entities.IdentityStatement{
			UserID:          "user-1",
			SelfDescription: "a disciplined builder who finishes things",
		},
		Actions: []entities.Action{
			action("a1", "stayed disciplined about the morning routine"),
			action("a2", "watched tv"),
			action("a3", "finishes the draft instead of starting a new one"),
		},
	}

	result := d.Detect(snap)
	require.Equal(t, StatusFound, result.Status)

	f := result.Finding
	assert.Equal(t, KindPattern, f.Kind)
	assert.Contains(t, f.Body, "2 recent actions")
	assert.Empty(t, f.Items)
}

func TestIdentityAlignment_OneMatchNotEnough(t *testing.T) {
	d := newTestDetector()

	snap := Snapshot{
		Identity: &entities.IdentityStatement{
			UserID:          "user-1",
			SelfDescription: "a disciplined builder",
		},
		Actions: []entities.Action{
			action("a1", "stayed disciplined today"),
			action("a2", "watched tv"),
			action("a3", "slept in"),
		},
	}

	result := d.Detect(snap)
	assert.Equal(t, StatusNone, result.Status)
}

func TestDetect_PriorityOrder(t *testing.T) {
	d := newTestDetector()

	// Both the topic thread and the keyword connection could fire; the
	// thread wins because it runs first.
	snap := Snapshot{
		Topics: []entities.Topic{{ID: "t1", Name: "writing"}},
		Insights: []entities.Insight{
			insight("i1", "momentum compounds daily", "", "t1"),
			insight("i2", "momentum is fragile", "", "t1"),
			insight("i3", "momentum needs protecting", "", "t1"),
		},
	}

	result := d.Detect(snap)
	require.Equal(t, StatusFound, result.Status)
	assert.Equal(t, KindThread, result.Finding.Kind)
}

func TestDetect_Idempotent(t *testing.T) {
	d := newTestDetector()

	snap := Snapshot{
		Topics: []entities.Topic{{ID: "t1", Name: "focus"}},
		Insights: []entities.Insight{
			insight("i1", "aaaaaa", "", "t1"),
			insight("i2", "bbbbbb", "", "t1"),
			insight("i3", "cccccc", "", "t1"),
		},
	}

	first := d.Detect(snap)
	second := d.Detect(snap)
	assert.Equal(t, first, second)
}
