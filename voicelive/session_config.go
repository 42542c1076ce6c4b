package voicelive

import "strings"

// AvatarSelection names the avatar character (and optional style) the remote
// service should render.
type AvatarSelection struct {
	Character string
	Style     string
}

// SessionConfig is the immutable per-connection configuration translated into
// the initial session.update call. Built once from the client's configure
// message merged with server defaults.
type SessionConfig struct {
	ModelID              string
	VoiceID              string
	Instructions         string
	Language             string
	PhraseList           []string
	SemanticVAD          string
	EnableEOU            bool
	AgentID              string
	CustomSpeechEndpoint string
	Avatar               *AvatarSelection
}

// standardVoice is the structured descriptor for locale-qualified voice names.
type standardVoice struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// turnDetection is the server VAD descriptor sent in session.update.
type turnDetection struct {
	Type              string  `json:"type"`
	Threshold         float64 `json:"threshold"`
	PrefixPaddingMS   int     `json:"prefix_padding_ms"`
	SilenceDurationMS int     `json:"silence_duration_ms"`
}

// resolveVoice maps a voice identifier to its wire form: locale-qualified
// identifiers (containing "-") become a structured azure-standard descriptor,
// anything else is an opaque preset name, and empty falls back to "alloy".
func resolveVoice(voiceID string) any {
	normalized := strings.TrimSpace(voiceID)
	if normalized == "" {
		return "alloy"
	}
	if strings.Contains(normalized, "-") {
		return standardVoice{Name: normalized, Type: "azure-standard"}
	}
	return normalized
}

// resolveTurnDetection derives the VAD descriptor. EOU off disables turn
// detection entirely; semantic mode trades a lower threshold for a shorter
// trailing-silence window.
func resolveTurnDetection(cfg SessionConfig) *turnDetection {
	if !cfg.EnableEOU {
		return nil
	}

	threshold := 0.5
	silenceMS := 500
	if cfg.SemanticVAD == "semantic_vad" {
		threshold = 0.45
		silenceMS = 400
	}
	return &turnDetection{
		Type:              "server_vad",
		Threshold:         threshold,
		PrefixPaddingMS:   300,
		SilenceDurationMS: silenceMS,
	}
}

// NormalizePhraseList trims entries, drops empties and removes
// case-insensitive duplicates while preserving order and first-seen casing.
func NormalizePhraseList(values []string) []string {
	normalized := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, value := range values {
		raw := strings.TrimSpace(value)
		if raw == "" {
			continue
		}
		key := strings.ToLower(raw)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		normalized = append(normalized, raw)
	}
	return normalized
}
