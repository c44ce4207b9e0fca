package rollup

import (
	"sort"
	"time"

	"inward-backend/domain/core/entities"
)

// TrailingMonths is how many calendar months a rollup covers, the
// current partial month included.
const TrailingMonths = 3

const maxTopPillars = 3

// WeekData is one ISO week's activity inside a month. Weeks with no
// actions are still emitted so the UI can render empty weeks. Year
// carries the ISO week-year, which differs from the calendar year for
// weeks straddling a year boundary.
type WeekData struct {
	Year     int                     `json:"year"`
	Week     int                     `json:"week"`
	Total    int                     `json:"total"`
	ByPillar map[entities.Pillar]int `json:"by_pillar"`
	HasData  bool                    `json:"has_data"`
}

// PillarCount pairs a pillar with its action count for ranking.
type PillarCount struct {
	Pillar entities.Pillar `json:"pillar"`
	Count  int             `json:"count"`
}

// MonthRollup is one calendar month's aggregated activity.
type MonthRollup struct {
	Month      string        `json:"month"` // yyyy-mm
	Weeks      []WeekData    `json:"weeks"`
	Total      int           `json:"total"`
	TopPillars []PillarCount `json:"top_pillars"`
}

// ActivityRollup covers the trailing months, oldest first.
type ActivityRollup struct {
	Months []MonthRollup `json:"months"`
}

// Build groups actions into per-month ISO week buckets. Weeks are
// enumerated by stepping Monday to Monday from the week containing the
// month's first day through the week containing its last, so a
// December-to-January rollover produces each boundary week exactly once
// instead of comparing raw week numbers across the year break. An
// action on a boundary week is counted in the month its occurrence
// date belongs to.
func Build(actions []entities.Action, now time.Time) ActivityRollup {
	now = now.UTC()

	months := make([]MonthRollup, 0, TrailingMonths)
	for i := TrailingMonths - 1; i >= 0; i-- {
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		months = append(months, buildMonth(actions, first))
	}
	return ActivityRollup{Months: months}
}

func buildMonth(actions []entities.Action, first time.Time) MonthRollup {
	next := first.AddDate(0, 1, 0)
	last := next.AddDate(0, 0, -1)

	// One bucket per Monday spanning the month.
	index := make(map[time.Time]int)
	var weeks []WeekData
	for monday := mondayOf(first); !monday.After(last); monday = monday.AddDate(0, 0, 7) {
		year, week := monday.ISOWeek()
		index[monday] = len(weeks)
		weeks = append(weeks, WeekData{
			Year:     year,
			Week:     week,
			ByPillar: make(map[entities.Pillar]int),
		})
	}

	total := 0
	pillarTotals := make(map[entities.Pillar]int)
	var pillarOrder []entities.Pillar

	for _, a := range actions {
		day := a.OccurredAt.UTC()
		if day.Before(first) || !day.Before(next) {
			continue
		}

		total++
		if _, seen := pillarTotals[a.Pillar]; !seen {
			pillarOrder = append(pillarOrder, a.Pillar)
		}
		pillarTotals[a.Pillar]++

		if idx, ok := index[mondayOf(day)]; ok {
			weeks[idx].Total++
			weeks[idx].ByPillar[a.Pillar]++
			weeks[idx].HasData = true
		}
	}

	return MonthRollup{
		Month:      first.Format("2006-01"),
		Weeks:      weeks,
		Total:      total,
		TopPillars: topPillars(pillarTotals, pillarOrder),
	}
}

// topPillars ranks pillars by month total, ties broken by the order a
// pillar was first encountered in the action stream.
func topPillars(totals map[entities.Pillar]int, order []entities.Pillar) []PillarCount {
	ranked := make([]PillarCount, 0, len(order))
	for _, p := range order {
		ranked = append(ranked, PillarCount{Pillar: p, Count: totals[p]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	if len(ranked) > maxTopPillars {
		ranked = ranked[:maxTopPillars]
	}
	return ranked
}

// mondayOf returns the UTC midnight Monday of t's ISO week.
func mondayOf(t time.Time) time.Time {
	t = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -offset)
}
