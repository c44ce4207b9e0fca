package rollup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inward-backend/domain/core/entities"
)

func actionOn(pillar entities.Pillar, day time.Time) entities.Action {
	return entities.Action{ID: "a", UserID: "user-1", Text: "did", Pillar: pillar, OccurredAt: day}
}

func TestBuild_TrailingThreeMonthsOldestFirst(t *testing.T) {
	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

	result := Build(nil, now)
	require.Len(t, result.Months, 3)
	assert.Equal(t, "2026-06", result.Months[0].Month)
	assert.Equal(t, "2026-07", result.Months[1].Month)
	assert.Equal(t, "2026-08", result.Months[2].Month)
}

func TestBuild_EmptyMonthStillEmitsWeeks(t *testing.T) {
	now := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)

	result := Build(nil, now)
	june := result.Months[0]

	// June 2026 runs Monday the 1st through Tuesday the 30th, covering
	// ISO weeks 23 through 27.
	require.Len(t, june.Weeks, 5)
	assert.Equal(t, 23, june.Weeks[0].Week)
	assert.Equal(t, 27, june.Weeks[4].Week)
	for _, w := range june.Weeks {
		assert.Equal(t, 0, w.Total)
		assert.False(t, w.HasData)
	}
	assert.Equal(t, 0, june.Total)
	assert.Empty(t, june.TopPillars)
}

func TestBuild_CountsActionsIntoWeeks(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	actions := []entities.Action{
		actionOn(entities.PillarBody, time.Date(2026, 8, 3, 8, 0, 0, 0, time.UTC)),  // week 32
		actionOn(entities.PillarBody, time.Date(2026, 8, 4, 8, 0, 0, 0, time.UTC)),  // week 32
		actionOn(entities.PillarMind, time.Date(2026, 8, 12, 8, 0, 0, 0, time.UTC)), // week 33
	}

	result := Build(actions, now)
	august := result.Months[2]

	assert.Equal(t, 3, august.Total)

	var week32, week33 *WeekData
	for i := range august.Weeks {
		switch august.Weeks[i].Week {
		case 32:
			week32 = &august.Weeks[i]
		case 33:
			week33 = &august.Weeks[i]
		}
	}
	require.NotNil(t, week32)
	require.NotNil(t, week33)

	assert.Equal(t, 2, week32.Total)
	assert.True(t, week32.HasData)
	assert.Equal(t, 2, week32.ByPillar[entities.PillarBody])
	assert.Equal(t, 1, week33.Total)
	assert.Equal(t, 1, week33.ByPillar[entities.PillarMind])
}

func TestBuild_TopPillarsRankedWithStableTies(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	day := time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC)

	actions := []entities.Action{
		actionOn(entities.PillarMind, day),
		actionOn(entities.PillarBody, day),
		actionOn(entities.PillarBody, day),
		actionOn(entities.PillarCraft, day),
		actionOn(entities.PillarBusiness, day),
		actionOn(entities.PillarRelationships, day),
	}

	result := Build(actions, now)
	top := result.Months[2].TopPillars

	require.Len(t, top, 3)
	assert.Equal(t, entities.PillarBody, top[0].Pillar)
	assert.Equal(t, 2, top[0].Count)
	// mind and craft tie at 1; mind appeared first in the stream.
	assert.Equal(t, entities.PillarMind, top[1].Pillar)
	assert.Equal(t, entities.PillarCraft, top[2].Pillar)
}

func TestBuild_YearBoundaryWeeksEmittedOnce(t *testing.T) {
	now := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	result := Build(nil, now)
	december := result.Months[1]
	require.Equal(t, "2025-12", december.Month)

	// December 2025 ends Wednesday the 31st, whose ISO week is week 1
	// of 2026. The boundary week appears exactly once.
	last := december.Weeks[len(december.Weeks)-1]
	assert.Equal(t, 2026, last.Year)
	assert.Equal(t, 1, last.Week)

	seen := make(map[[2]int]int)
	for _, w := range december.Weeks {
		seen[[2]int{w.Year, w.Week}]++
	}
	for key, count := range seen {
		assert.Equal(t, 1, count, "week %v emitted more than once", key)
	}
}

func TestBuild_ActionsOutsideMonthIgnored(t *testing.T) {
	now := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	actions := []entities.Action{
		actionOn(entities.PillarBody, time.Date(2026, 5, 30, 0, 0, 0, 0, time.UTC)),
		actionOn(entities.PillarBody, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)),
	}

	result := Build(actions, now)
	for _, m := range result.Months {
		assert.Equal(t, 0, m.Total, "month %s", m.Month)
	}
}
