// Package analytics computes derived summaries over the ledger on demand.
// Nothing here is persisted; every call recomputes from the stored
// collections.
package analytics

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"fingenius/internal/core"
	"fingenius/internal/ledger"
)

const defaultTrendMonths = 6

type (
	CategoryTotal struct {
		Category string  `json:"category"`
		Total    float64 `json:"total"`
		Count    int     `json:"count"`
	}

	MonthTotal struct {
		Month string  `json:"month"` // YYYY-MM
		Total float64 `json:"total"`
		Count int     `json:"count"`
	}

	DayTotal struct {
		Date  string  `json:"date"` // YYYY-MM-DD
		Total float64 `json:"total"`
		Count int     `json:"count"`
	}

	MoodStat struct {
		Mood    string  `json:"mood"`
		Count   int     `json:"count"`
		Total   float64 `json:"total"`
		Average float64 `json:"average"`
	}
)

// Service reads through the ledger; its notion of "now" is the ledger clock.
type Service struct {
	ledger *ledger.Ledger
}

func New(l *ledger.Ledger) *Service {
	return &Service{ledger: l}
}

// SpendingByCategory sums absolute amounts per category, highest total
// first. Categories without expenses are absent rather than zero.
func (s *Service) SpendingByCategory() []CategoryTotal {
	totals := map[string]*CategoryTotal{}
	for _, e := range s.ledger.Expenses.List() {
		t, ok := totals[e.Category]
		if !ok {
			t = &CategoryTotal{Category: e.Category}
			totals[e.Category] = t
		}
		t.Total += math.Abs(e.Amount)
		t.Count++
	}
	out := make([]CategoryTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// MonthlyTrend returns absolute-amount totals for the chronologically last
// monthCount months that have data, ascending by month. Months without
// expenses are not zero-filled. monthCount <= 0 means the default of 6.
func (s *Service) MonthlyTrend(monthCount int) []MonthTotal {
	if monthCount <= 0 {
		monthCount = defaultTrendMonths
	}
	totals := map[string]*MonthTotal{}
	for _, e := range s.ledger.Expenses.List() {
		month := core.YearMonth(e.Date)
		if month == "" {
			continue
		}
		t, ok := totals[month]
		if !ok {
			t = &MonthTotal{Month: month}
			totals[month] = t
		}
		t.Total += math.Abs(e.Amount)
		t.Count++
	}
	out := make([]MonthTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	// lexicographic order is chronological for YYYY-MM
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	if len(out) > monthCount {
		out = out[len(out)-monthCount:]
	}
	return out
}

// CurrentMonthTotal sums absolute amounts of expenses dated in the clock's
// current calendar month.
func (s *Service) CurrentMonthTotal() float64 {
	month := s.ledger.Now().UTC().Format("2006-01")
	var total float64
	for _, e := range s.ledger.Expenses.List() {
		if strings.HasPrefix(e.Date, month) {
			total += math.Abs(e.Amount)
		}
	}
	return total
}

// DailySpending returns per-day totals for one calendar month, ascending by
// date. Built for the calendar heatmap.
func (s *Service) DailySpending(year, month int) []DayTotal {
	prefix := fmt.Sprintf("%04d-%02d", year, month)
	totals := map[string]*DayTotal{}
	for _, e := range s.ledger.Expenses.List() {
		if !strings.HasPrefix(e.Date, prefix) {
			continue
		}
		t, ok := totals[e.Date]
		if !ok {
			t = &DayTotal{Date: e.Date}
			totals[e.Date] = t
		}
		t.Total += math.Abs(e.Amount)
		t.Count++
	}
	out := make([]DayTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// MoodAnalysis groups expenses by the mood recorded with them, highest total
// first.
func (s *Service) MoodAnalysis() []MoodStat {
	stats := map[string]*MoodStat{}
	for _, e := range s.ledger.Expenses.List() {
		m, ok := stats[e.Mood]
		if !ok {
			m = &MoodStat{Mood: e.Mood}
			stats[e.Mood] = m
		}
		m.Total += math.Abs(e.Amount)
		m.Count++
	}
	out := make([]MoodStat, 0, len(stats))
	for _, m := range stats {
		m.Average = m.Total / float64(m.Count)
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		return out[i].Mood < out[j].Mood
	})
	return out
}
