package service

import (
	"github.com/youngsunson/updatev2/common/llm"
	"github.com/youngsunson/updatev2/internal/settings"
	"github.com/youngsunson/updatev2/internal/store"
)

type Services struct {
	sessions SessionService
	settings SettingsService
}

// NewServices wires the services; runs may be nil when history is disabled.
func NewServices(analyzer llm.Client, live *settings.Live, runs store.RunStore) *Services {
	return &Services{
		sessions: NewSessionService(analyzer, live, runs),
		settings: NewSettingsService(live),
	}
}

func (s *Services) Sessions() SessionService {
	return s.sessions
}

func (s *Services) Settings() SettingsService {
	return s.settings
}
