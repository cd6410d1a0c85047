package domain

// VideoConfig holds capture defaults pushed to clients.
type VideoConfig struct {
	Width     int `json:"width" mapstructure:"width"`
	Height    int `json:"height" mapstructure:"height"`
	FrameRate int `json:"frame_rate" mapstructure:"frame_rate"`
}

type AudioConfig struct {
	Enabled          bool `json:"enabled" mapstructure:"enabled"`
	EchoCancellation bool `json:"echo_cancellation" mapstructure:"echo_cancellation"`
	NoiseSuppression bool `json:"noise_suppression" mapstructure:"noise_suppression"`
}

// MediaConfig is the process-wide capture configuration shared by all
// sessions. It is a value here; the mutable singleton lives in app.
type MediaConfig struct {
	Video VideoConfig `json:"video" mapstructure:"video"`
	Audio AudioConfig `json:"audio" mapstructure:"audio"`
}

// MediaConfigPatch is a merge-update: nil fields keep the current value.
type MediaConfigPatch struct {
	Video *struct {
		Width     *int `json:"width,omitempty"`
		Height    *int `json:"height,omitempty"`
		FrameRate *int `json:"frame_rate,omitempty"`
	} `json:"video,omitempty"`
	Audio *struct {
		Enabled          *bool `json:"enabled,omitempty"`
		EchoCancellation *bool `json:"echo_cancellation,omitempty"`
		NoiseSuppression *bool `json:"noise_suppression,omitempty"`
	} `json:"audio,omitempty"`
}
