package ledger

import (
	"fingenius/internal/core"
	"fingenius/internal/kv"
)

// SettingsPatch updates only the fields that are set.
type SettingsPatch struct {
	Theme           *string `json:"theme"`
	Currency        *string `json:"currency"`
	BudgetAlerts    *bool   `json:"budget_alerts"`
	InsightsEnabled *bool   `json:"insights_enabled"`
	Language        *string `json:"language"`
}

// SettingsManager holds the singleton settings document. Defaults are merged
// underneath whatever is stored, so documents written by older versions that
// lack newer fields still read back complete.
type SettingsManager struct {
	store *kv.Adapter
	key   string
}

func (m *SettingsManager) Get() core.Settings {
	s := core.DefaultSettings()
	m.store.Load(m.key, &s)
	return s
}

// Update applies the patch to the current settings and persists. An unknown
// theme name is rejected before anything touches the store.
func (m *SettingsManager) Update(patch SettingsPatch) (core.Settings, error) {
	s := m.Get()
	if patch.Theme != nil {
		t := core.ThemeName(*patch.Theme)
		if !t.Valid() {
			return s, core.ErrUnknownTheme
		}
		s.Theme = t
	}
	if patch.Currency != nil {
		s.Currency = *patch.Currency
	}
	if patch.BudgetAlerts != nil {
		s.BudgetAlerts = *patch.BudgetAlerts
	}
	if patch.InsightsEnabled != nil {
		s.InsightsEnabled = *patch.InsightsEnabled
	}
	if patch.Language != nil {
		s.Language = *patch.Language
	}
	if !m.store.Save(m.key, s) {
		return s, core.ErrStoreUnavailable
	}
	return s, nil
}

// Reset restores the defaults and persists them.
func (m *SettingsManager) Reset() (core.Settings, error) {
	s := core.DefaultSettings()
	if !m.store.Save(m.key, s) {
		return s, core.ErrStoreUnavailable
	}
	return s, nil
}
