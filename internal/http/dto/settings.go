package dto

import (
	"github.com/youngsunson/updatev2/common/llm"
	"github.com/youngsunson/updatev2/internal/model"
	"github.com/youngsunson/updatev2/internal/settings"
)

type SettingsResponse struct {
	APIKey    string   `json:"api_key"`
	HasAPIKey bool     `json:"has_api_key"`
	Model     string   `json:"model"`
	Tone      string   `json:"tone"`
	Register  string   `json:"register"`
	Models    []string `json:"models"`
}

// ToSettingsResponse expects s to be masked already.
func ToSettingsResponse(s settings.Settings) *SettingsResponse {
	return &SettingsResponse{
		APIKey:    s.APIKey,
		HasAPIKey: s.APIKey != "",
		Model:     s.Model,
		Tone:      string(s.Tone),
		Register:  string(s.Register),
		Models:    llm.SupportedModels,
	}
}

type UpdateSettingsRequest struct {
	APIKey   string `json:"api_key"`
	Model    string `json:"model"`
	Tone     string `json:"tone"`
	Register string `json:"register"`
}

func (r UpdateSettingsRequest) Settings() settings.Settings {
	return settings.Settings{
		APIKey:   r.APIKey,
		Model:    r.Model,
		Tone:     model.Tone(r.Tone),
		Register: model.Register(r.Register),
	}
}
