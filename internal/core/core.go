package core

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Outflow FlowKind = "outflow"
	Inflow  FlowKind = "inflow"

	ThemeLight ThemeName = "light"
	ThemeDark  ThemeName = "dark"
	ThemeNeon  ThemeName = "neon"

	DefaultExpenseCategory = "Other"
	DefaultIncomeCategory  = "Salary"
	DefaultMood            = "😊"
)

type (
	// FlowKind tags the direction of money movement explicitly, instead of
	// encoding it in the sign of the amount.
	FlowKind string

	ThemeName string

	Expense struct {
		ID           string   `json:"id"`
		Date         string   `json:"date"` // YYYY-MM-DD
		Category     string   `json:"category"`
		Description  string   `json:"description"`
		Amount       float64  `json:"amount"` // outflows stored negative by convention
		Kind         FlowKind `json:"kind"`
		Mood         string   `json:"mood"`
		ReceiptImage string   `json:"receipt_image,omitempty"`
		CreatedAt    string   `json:"created_at"`
		UpdatedAt    string   `json:"updated_at"`
	}

	Income struct {
		ID          string  `json:"id"`
		Date        string  `json:"date"`
		Category    string  `json:"category"`
		Description string  `json:"description"`
		Amount      float64 `json:"amount"` // stored positive
		CreatedAt   string  `json:"created_at"`
	}

	Goal struct {
		ID            string  `json:"id"`
		Title         string  `json:"title"`
		TargetAmount  float64 `json:"target_amount"`
		CurrentAmount float64 `json:"current_amount"`
		Deadline      string  `json:"deadline,omitempty"`
		Category      string  `json:"category"`
		CreatedAt     string  `json:"created_at"`
		UpdatedAt     string  `json:"updated_at"`
	}

	Settings struct {
		Theme           ThemeName `json:"theme"`
		Currency        string    `json:"currency"`
		BudgetAlerts    bool      `json:"budget_alerts"`
		InsightsEnabled bool      `json:"insights_enabled"`
		Language        string    `json:"language"`
	}

	BudgetCategory struct {
		Category string  `json:"category"`
		Limit    float64 `json:"limit"`
		Icon     string  `json:"icon"`
	}

	GroupExpense struct {
		ID           string   `json:"id"`
		Title        string   `json:"title"`
		TotalAmount  float64  `json:"total_amount"`
		Participants []string `json:"participants"`
		PaidBy       string   `json:"paid_by"`
		Date         string   `json:"date"`
		Description  string   `json:"description"`
		CreatedAt    string   `json:"created_at"`
	}
)

var (
	ErrEmptyTitle       = errors.New("empty title")
	ErrNegativeTarget   = errors.New("target amount cannot be negative")
	ErrNoParticipants   = errors.New("at least 2 participants required")
	ErrUnknownTheme     = errors.New("unknown theme")
	ErrUnknownCategory  = errors.New("unknown budget category")
	ErrRecordNotFound   = errors.New("record not found")
	ErrMalformedDoc     = errors.New("malformed document")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// NewID returns a 128-bit random record identifier.
func NewID() string {
	return uuid.NewString()
}

// Timestamp formats t the way records store created_at/updated_at.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// CoerceNumber converts loosely-typed numeric input to a float64. Anything
// unparsable contributes 0 and logs a warning; callers never see an error.
func CoerceNumber(v any) float64 {
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", "."))
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			slog.Warn("Unparsable numeric input coerced to zero", "value", n)
			return 0
		}
		return f
	default:
		slog.Warn("Unsupported numeric input coerced to zero", "value", fmt.Sprint(v))
		return 0
	}
}

func (k FlowKind) Valid() bool {
	return k == Outflow || k == Inflow
}

func (t ThemeName) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeNeon:
		return true
	default:
		return false
	}
}

// YearMonth returns the YYYY-MM slice of a record date, or "" when the date
// is too short to carry one.
func YearMonth(date string) string {
	if len(date) < 7 {
		return ""
	}
	return date[:7]
}

// SplitAmount derives the per-participant share at read time. Nothing about
// the split is persisted.
func (g GroupExpense) SplitAmount() float64 {
	if len(g.Participants) == 0 {
		return 0
	}
	return g.TotalAmount / float64(len(g.Participants))
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return ErrEmptyTitle
	}
	if g.TargetAmount < 0 {
		return ErrNegativeTarget
	}
	return nil
}

func (g GroupExpense) Validate() error {
	if strings.TrimSpace(g.Title) == "" {
		return ErrEmptyTitle
	}
	if len(g.Participants) < 2 {
		return ErrNoParticipants
	}
	return nil
}

// DefaultSettings is the fixed baseline merged underneath stored overrides.
func DefaultSettings() Settings {
	return Settings{
		Theme:           ThemeLight,
		Currency:        "₹",
		BudgetAlerts:    true,
		InsightsEnabled: true,
		Language:        "en",
	}
}

// DefaultBudgetCategories seeds the budget collection when the store holds
// nothing yet. The eight categories and limits come from the stock seed data.
func DefaultBudgetCategories() []BudgetCategory {
	return []BudgetCategory{
		{Category: "Food & Dining", Limit: 5000, Icon: "🍔"},
		{Category: "Transportation", Limit: 3000, Icon: "🚗"},
		{Category: "Shopping", Limit: 4000, Icon: "🛍️"},
		{Category: "Entertainment", Limit: 2000, Icon: "🎬"},
		{Category: "Bills & Utilities", Limit: 6000, Icon: "💡"},
		{Category: "Healthcare", Limit: 1500, Icon: "🏥"},
		{Category: "Education", Limit: 3000, Icon: "📚"},
		{Category: "Others", Limit: 2000, Icon: "📦"},
	}
}
