package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/mentorhub/signaling/internal/domain"
)

// MediaConfigStore is the process-wide capture configuration, an explicit
// injected singleton rather than an ambient global. Reads return copies.
type MediaConfigStore struct {
	mu  sync.RWMutex
	cfg domain.MediaConfig
}

func NewMediaConfigStore(initial domain.MediaConfig) *MediaConfigStore {
	return &MediaConfigStore{cfg: initial}
}

func (s *MediaConfigStore) Snapshot() domain.MediaConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Merge applies a partial update and returns the resulting config.
// Unset patch fields keep their current values.
func (s *MediaConfigStore) Merge(p domain.MediaConfigPatch) domain.MediaConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.Video != nil {
		if p.Video.Width != nil {
			s.cfg.Video.Width = *p.Video.Width
		}
		if p.Video.Height != nil {
			s.cfg.Video.Height = *p.Video.Height
		}
		if p.Video.FrameRate != nil {
			s.cfg.Video.FrameRate = *p.Video.FrameRate
		}
	}
	if p.Audio != nil {
		if p.Audio.Enabled != nil {
			s.cfg.Audio.Enabled = *p.Audio.Enabled
		}
		if p.Audio.EchoCancellation != nil {
			s.cfg.Audio.EchoCancellation = *p.Audio.EchoCancellation
		}
		if p.Audio.NoiseSuppression != nil {
			s.cfg.Audio.NoiseSuppression = *p.Audio.NoiseSuppression
		}
	}
	log.Info().Str("module", "app.mediaconfig").Interface("config", s.cfg).Msg("media config updated")
	return s.cfg
}
