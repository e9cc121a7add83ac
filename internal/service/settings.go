package service

import (
	"context"

	"github.com/youngsunson/updatev2/internal/settings"
)

type SettingsService interface {
	// Get returns the settings with the API key masked.
	Get(ctx context.Context) settings.Settings
	// Update replaces the settings. An empty API key keeps the saved one.
	Update(ctx context.Context, s settings.Settings) (settings.Settings, error)
}

type settingsService struct {
	live *settings.Live
}

func NewSettingsService(live *settings.Live) SettingsService {
	return &settingsService{live: live}
}

func (s *settingsService) Get(_ context.Context) settings.Settings {
	return s.live.Current().Masked()
}

func (s *settingsService) Update(ctx context.Context, next settings.Settings) (settings.Settings, error) {
	if next.APIKey == "" {
		next.APIKey = s.live.Current().APIKey
	}
	saved, err := s.live.Update(ctx, next)
	if err != nil {
		return settings.Settings{}, err
	}
	return saved.Masked(), nil
}
