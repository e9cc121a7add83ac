// Package settings persists the user's analysis credential, model and default
// category selections.
package settings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/youngsunson/updatev2/common/llm"
	"github.com/youngsunson/updatev2/internal/model"
)

var ErrInvalid = errors.New("invalid settings")

type Settings struct {
	APIKey   string         `json:"api_key" yaml:"api_key"`
	Model    string         `json:"model" yaml:"model"`
	Tone     model.Tone     `json:"tone" yaml:"tone,omitempty"`
	Register model.Register `json:"register" yaml:"register,omitempty"`
}

func Default() Settings {
	return Settings{
		Model:    llm.DefaultModel,
		Register: model.RegisterNone,
	}
}

// Store loads and saves one settings profile. Load returns Default when
// nothing has been saved yet.
type Store interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, s Settings) error
}

func (s Settings) Credential() string {
	return s.APIKey
}

func (s Settings) ModelID() string {
	return s.Model
}

// Task is the default category selection for a run.
func (s Settings) Task() model.TaskConfig {
	return model.TaskConfig{Tone: s.Tone, Register: s.Register}.Normalize()
}

// MaskedKey renders the credential for display, keeping only its edges.
func (s Settings) MaskedKey() string {
	key := strings.TrimSpace(s.APIKey)
	switch {
	case key == "":
		return ""
	case len(key) <= 8:
		return strings.Repeat("*", len(key))
	default:
		return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
	}
}

// Masked returns a copy safe to render or log.
func (s Settings) Masked() Settings {
	s.APIKey = s.MaskedKey()
	return s
}

// Normalize trims fields and fills defaults.
func (s Settings) Normalize() Settings {
	s.APIKey = strings.TrimSpace(s.APIKey)
	s.Model = strings.TrimSpace(s.Model)
	if s.Model == "" {
		s.Model = llm.DefaultModel
	}
	task := s.Task()
	s.Tone, s.Register = task.Tone, task.Register
	return s
}

func (s Settings) Validate() error {
	if !llm.IsSupportedModel(s.Model) {
		return fmt.Errorf("%w: unsupported model %q", ErrInvalid, s.Model)
	}
	if err := s.Task().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Live keeps the current settings in memory in front of a Store. It is the
// read-only credential source handed to orchestrators, so a saved key takes
// effect on the next run.
type Live struct {
	store       Store
	fallbackKey string

	mu      sync.RWMutex
	current Settings
}

// NewLive loads the current settings. fallbackKey is used when no key has been
// saved, e.g. one provided through the environment.
func NewLive(ctx context.Context, store Store, fallbackKey string) (*Live, error) {
	current, err := store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	return &Live{
		store:       store,
		fallbackKey: strings.TrimSpace(fallbackKey),
		current:     current.Normalize(),
	}, nil
}

func (l *Live) Current() Settings {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// Update validates, persists and then publishes s.
func (l *Live) Update(ctx context.Context, s Settings) (Settings, error) {
	s = s.Normalize()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	if err := l.store.Save(ctx, s); err != nil {
		return Settings{}, fmt.Errorf("save settings: %w", err)
	}

	l.mu.Lock()
	l.current = s
	l.mu.Unlock()
	return s, nil
}

func (l *Live) Credential() string {
	if key := l.Current().APIKey; key != "" {
		return key
	}
	return l.fallbackKey
}

func (l *Live) ModelID() string {
	return l.Current().Model
}
