package emergence

import (
	"fmt"
	"strings"
	"time"

	"inward-backend/domain/core/entities"
	"inward-backend/domain/services"
)

// Fetch limits and thresholds for a detection run.
const (
	MaxInsights    = 30
	MaxActions     = 20
	MaxExperiments = 8

	minTotalRecords  = 3
	topicThreadSize  = 3
	keywordWindow    = 4
	significantLen   = 5 // words must be strictly longer than this
	minActionsLinked = 3
	minAlignedWords  = 2

	topicTitleMax   = 40
	keywordTitleMax = 35
	actionTextMax   = 30
)

// Snapshot is the freshly fetched input to one detection run. Insights
// and actions are ordered newest first; missing collaborator data is
// represented as empty slices or a nil identity, never an error.
type Snapshot struct {
	Insights    []entities.Insight
	Actions     []entities.Action
	Experiments []entities.Experiment
	Identity    *entities.IdentityStatement
	Topics      []entities.Topic
}

// Detector runs a priority-ordered chain of pattern strategies over a
// snapshot and returns at most one finding. The chain is deterministic:
// the first strategy producing a result wins and ties inside a strategy
// break by recency, then discovery order.
type Detector struct {
	analyzer services.TextAnalyzer
	now      func() time.Time
}

// NewDetector creates a detector using the given text analyzer.
func NewDetector(analyzer services.TextAnalyzer) *Detector {
	return &Detector{
		analyzer: analyzer,
		now:      time.Now,
	}
}

// WithClock overrides the detector's clock. Intended for tests.
func (d *Detector) WithClock(now func() time.Time) *Detector {
	d.now = now
	return d
}

// Detect runs the strategy chain. It never fails: thin data yields
// StatusInsufficient and an exhausted chain yields StatusNone.
func (d *Detector) Detect(snap Snapshot) Detection {
	if len(snap.Insights)+len(snap.Actions)+len(snap.Experiments) < minTotalRecords {
		return Detection{Status: StatusInsufficient}
	}

	strategies := []func(Snapshot) *Finding{
		d.topicThread,
		d.keywordConnection,
		d.experimentActionLink,
		d.identityAlignment,
	}
	for _, strategy := range strategies {
		if f := strategy(snap); f != nil {
			return found(f)
		}
	}

	return Detection{Status: StatusNone}
}

// topicThread looks for a topic that has accumulated at least three
// insights. Iteration follows insight recency, so the winning topic is
// the first one to reach the threshold walking newest to oldest.
func (d *Detector) topicThread(snap Snapshot) *Finding {
	names := make(map[string]string, len(snap.Topics))
	for _, t := range snap.Topics {
		names[t.ID] = t.Name
	}

	byTopic := make(map[string][]entities.Insight)
	for idx, in := range snap.Insights {
		if !in.HasTopic() {
			continue
		}
		byTopic[in.TopicID] = append(byTopic[in.TopicID], in)
		if len(byTopic[in.TopicID]) < topicThreadSize {
			continue
		}

		topicName := names[in.TopicID]
		if topicName == "" {
			// Topic lookup failed or the topic was deleted; degrade
			// rather than abort.
			topicName = "an emerging topic"
		}

		thread := byTopic[in.TopicID]
		items := make([]LinkedItem, 0, topicThreadSize)
		for _, linked := range thread[:topicThreadSize] {
			items = append(items, LinkedItem{ID: linked.ID, Title: truncate(linked.Title, topicTitleMax)})
		}

		// The group can extend past the threshold; finish counting the
		// winning topic so the body reports its full size.
		groupSize := len(thread)
		for _, later := range snap.Insights[idx+1:] {
			if later.TopicID == in.TopicID {
				groupSize++
			}
		}

		return &Finding{
			Kind:  KindThread,
			Title: fmt.Sprintf("A thread is forming around %s", topicName),
			Body: fmt.Sprintf("%d of your recent insights gather under %s. Something is accumulating there.",
				groupSize, topicName),
			Items:       items,
			GeneratedAt: d.now(),
		}
	}
	return nil
}

// keywordConnection looks for a significant word shared by at least two
// of the four most recent insights.
func (d *Detector) keywordConnection(snap Snapshot) *Finding {
	window := snap.Insights
	if len(window) > keywordWindow {
		window = window[:keywordWindow]
	}
	if len(window) < 2 {
		return nil
	}

	// Words are deduplicated per insight, so the count is the number of
	// distinct insights a word appears in.
	wordInsights := make(map[string]int)
	perInsight := make([][]string, len(window))
	for i, in := range window {
		words := d.analyzer.SignificantWords(in.Title+" "+in.Body, significantLen)
		perInsight[i] = words
		for _, w := range words {
			wordInsights[w]++
		}
	}

	// Pick the first shared word walking insights newest first and
	// words in discovery order.
	for i, words := range perInsight {
		for _, w := range words {
			if wordInsights[w] < 2 {
				continue
			}

			items := []LinkedItem{{ID: window[i].ID, Title: truncate(window[i].Title, keywordTitleMax)}}
			for j := i + 1; j < len(window) && len(items) < 2; j++ {
				if containsWord(perInsight[j], w) {
					items = append(items, LinkedItem{ID: window[j].ID, Title: truncate(window[j].Title, keywordTitleMax)})
				}
			}

			return &Finding{
				Kind:        KindConnection,
				Title:       fmt.Sprintf("\"%s\" keeps coming up", w),
				Body:        fmt.Sprintf("The word \"%s\" appears across %d of your recent insights. They may be circling the same idea.", w, wordInsights[w]),
				Items:       items,
				GeneratedAt: d.now(),
			}
		}
	}
	return nil
}

// experimentActionLink looks for logged actions that echo the leading
// word of an active experiment's title.
func (d *Detector) experimentActionLink(snap Snapshot) *Finding {
	if len(snap.Actions) < minActionsLinked {
		return nil
	}

	var active *entities.Experiment
	for i := range snap.Experiments {
		if snap.Experiments[i].IsActive() {
			active = &snap.Experiments[i]
			break
		}
	}
	if active == nil {
		return nil
	}

	token := firstToken(active.Title)
	if token == "" {
		return nil
	}

	var matches []entities.Action
	for _, a := range snap.Actions {
		if strings.Contains(strings.ToLower(a.Text), token) {
			matches = append(matches, a)
		}
	}
	if len(matches) == 0 {
		return nil
	}

	items := make([]LinkedItem, 0, 2)
	for _, m := range matches {
		if len(items) == 2 {
			break
		}
		items = append(items, LinkedItem{ID: m.ID, Title: truncate(m.Text, actionTextMax)})
	}

	return &Finding{
		Kind:  KindPattern,
		Title: fmt.Sprintf("Your actions are feeding \"%s\"", active.Title),
		Body: fmt.Sprintf("%d logged actions line up with your active experiment \"%s\". You are acting on it, not just tracking it.",
			len(matches), active.Title),
		Items:       items,
		GeneratedAt: d.now(),
	}
}

// identityAlignment looks for actions that use the vocabulary of the
// user's identity statement.
func (d *Detector) identityAlignment(snap Snapshot) *Finding {
	if snap.Identity == nil || len(snap.Actions) < minActionsLinked {
		return nil
	}

	words := d.analyzer.SignificantWords(snap.Identity.SelfDescription, significantLen)
	if len(words) == 0 {
		return nil
	}

	count := 0
	for _, a := range snap.Actions {
		text := strings.ToLower(a.Text)
		for _, w := range words {
			if strings.Contains(text, w) {
				count++
				break
			}
		}
	}
	if count < minAlignedWords {
		return nil
	}

	return &Finding{
		Kind:        KindPattern,
		Title:       "Your actions echo who you said you are",
		Body:        fmt.Sprintf("%d recent actions use the language of your identity statement. The gap between saying and doing is closing.", count),
		GeneratedAt: d.now(),
	}
}

// truncate shortens s to max characters, appending an ellipsis when the
// original is longer. Characters are runes, so multibyte titles are
// never cut mid-rune.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// firstToken returns the lowercased first space-delimited token of s.
func firstToken(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}

func containsWord(words []string, target string) bool {
	for _, w := range words {
		if w == target {
			return true
		}
	}
	return false
}
