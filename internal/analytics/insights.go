package analytics

import (
	"fmt"
	"math"
	"strings"
)

const maxInsights = 5

// Insights produces up to five rule-based observations about recent
// spending, phrased for direct display. The rules run in a fixed order: top
// category, month-over-month change, happy-mood spending, then per-category
// budget alerts.
func (s *Service) Insights() []string {
	if len(s.ledger.Expenses.List()) == 0 {
		return []string{"No expenses found. Start tracking to get insights! 💡"}
	}

	currency := s.ledger.Settings.Get().Currency
	var insights []string

	if byCat := s.SpendingByCategory(); len(byCat) > 0 {
		top := byCat[0]
		insights = append(insights, fmt.Sprintf("Your biggest spending category is %s at %.0f %s", top.Category, top.Total, currency))
	}

	if trend := s.MonthlyTrend(2); len(trend) >= 2 {
		current, previous := trend[len(trend)-1].Total, trend[len(trend)-2].Total
		switch {
		case previous == 0:
			// no baseline, skip the comparison
		case current > previous:
			insights = append(insights, fmt.Sprintf("Spending increased by %.1f%% compared to last month 📈", (current-previous)/previous*100))
		default:
			insights = append(insights, fmt.Sprintf("Great job! Spending decreased by %.1f%% this month 🎉", (previous-current)/previous*100))
		}
	}

	for _, m := range s.MoodAnalysis() {
		if strings.Contains(m.Mood, "😊") || strings.Contains(m.Mood, "😄") {
			insights = append(insights, fmt.Sprintf("You spent %.0f %s on happy moments! 😊", m.Total, currency))
			break
		}
	}

	insights = append(insights, s.budgetAlerts()...)

	if len(insights) > maxInsights {
		insights = insights[:maxInsights]
	}
	return insights
}

// budgetAlerts flags categories whose current-month spending passed 80% of
// their limit.
func (s *Service) budgetAlerts() []string {
	month := s.ledger.Now().UTC().Format("2006-01")
	spent := map[string]float64{}
	for _, t := range s.monthCategoryTotals(month) {
		spent[t.Category] = t.Total
	}
	var alerts []string
	for _, b := range s.ledger.Budgets.List() {
		if b.Limit <= 0 {
			continue
		}
		if total := spent[b.Category]; total > b.Limit*0.8 {
			alerts = append(alerts, fmt.Sprintf("⚠️ You've used %.0f%% of your %s budget!", total/b.Limit*100, b.Category))
		}
	}
	return alerts
}

func (s *Service) monthCategoryTotals(month string) []CategoryTotal {
	totals := map[string]*CategoryTotal{}
	for _, e := range s.ledger.Expenses.List() {
		if !strings.HasPrefix(e.Date, month) {
			continue
		}
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
	return out
}
