package orch

import "github.com/mentorhub/signaling/internal/domain"

// MediaConfig returns the current process-wide capture configuration.
func (o *Orchestrator) MediaConfig() domain.MediaConfig {
	return o.Media.Snapshot()
}

// UpdateMediaConfig merge-updates the configuration and pushes the result
// to every connected client.
func (o *Orchestrator) UpdateMediaConfig(p domain.MediaConfigPatch) domain.MediaConfig {
	cfg := o.Media.Merge(p)
	o.broadcastAll(MediaConfigEvent{Type: EventMediaConfigUpdated, Config: cfg})
	return cfg
}
