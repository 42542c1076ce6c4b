// Package catalog holds the read-only option tables the gateway serves to
// clients and uses to validate session configuration: realtime models,
// voices, avatar characters and language profiles.
package catalog

// Model describes a Voice Live deployment a client may select.
type Model struct {
	ModelID        string `json:"model_id"`
	Label          string `json:"label"`
	Category       string `json:"category"`
	LatencyProfile string `json:"latency_profile"`
	Description    string `json:"description"`
	Notes          string `json:"notes,omitempty"`
}

// Models are enumerated as master data so the list stays easy to maintain.
var realtimeModels = []Model{
	{
		ModelID:        "gpt-realtime",
		Label:          "GPT Realtime",
		Category:       "realtime",
		LatencyProfile: "low",
		Description:    "Standard model pairing GPT Realtime with Azure Text to Speech (custom voices included).",
		Notes:          "Supports semantic_vad.",
	},
	{
		ModelID:        "gpt-realtime-mini",
		Label:          "GPT Realtime Mini",
		Category:       "realtime",
		LatencyProfile: "ultra_low",
		Description:    "Lightweight GPT Realtime. Prioritizes responsiveness over conversational quality.",
		Notes:          "Supports semantic_vad.",
	},
	{
		ModelID:        "gpt-4o",
		Label:          "GPT-4o",
		Category:       "multimodal",
		LatencyProfile: "medium",
		Description:    "GPT-4o with Azure Speech STT/TTS (custom voices included). For high quality multimodal sessions.",
		Notes:          "Supports EOU and phrase lists.",
	},
	{
		ModelID:        "gpt-4o-mini",
		Label:          "GPT-4o Mini",
		Category:       "multimodal",
		LatencyProfile: "low",
		Description:    "GPT-4o Mini with Azure Speech STT/TTS. Suited to lightweight multimodal sessions.",
		Notes:          "Supports EOU and phrase lists.",
	},
	{
		ModelID:        "gpt-4.1",
		Label:          "GPT-4.1",
		Category:       "multimodal",
		LatencyProfile: "medium",
		Description:    "GPT-4.1 with Azure Speech STT/TTS. For accuracy-sensitive use cases.",
		Notes:          "Supports EOU and phrase lists.",
	},
	{
		ModelID:        "gpt-4.1-mini",
		Label:          "GPT-4.1 Mini",
		Category:       "multimodal",
		LatencyProfile: "low",
		Description:    "GPT-4.1 Mini with Azure Speech STT/TTS. Good balance of cost and quality.",
		Notes:          "Supports EOU and phrase lists.",
	},
	{
		ModelID:        "gpt-5",
		Label:          "GPT-5",
		Category:       "multimodal",
		LatencyProfile: "medium",
		Description:    "GPT-5 with Azure Speech STT/TTS. Latest generation high quality model.",
		Notes:          "Supports EOU and phrase lists.",
	},
	{
		ModelID:        "gpt-5-mini",
		Label:          "GPT-5 Mini",
		Category:       "multimodal",
		LatencyProfile: "low",
		Description:    "GPT-5 Mini with Azure Speech STT/TTS. Lightweight yet capable realtime responses.",
		Notes:          "Supports EOU and phrase lists.",
	},
	{
		ModelID:        "gpt-5-nano",
		Label:          "GPT-5 Nano",
		Category:       "multimodal",
		LatencyProfile: "ultra_low",
		Description:    "GPT-5 Nano with Azure Speech STT/TTS. The lightest GPT-5 family model.",
		Notes:          "Supports EOU and phrase lists.",
	},
	{
		ModelID:        "gpt-5-chat",
		Label:          "GPT-5 Chat",
		Category:       "multimodal",
		LatencyProfile: "medium",
		Description:    "GPT-5 Chat with Azure Speech STT/TTS. Stable conversational model.",
		Notes:          "Supports EOU and phrase lists.",
	},
	{
		ModelID:        "phi4-mm-realtime",
		Label:          "Phi-4 MM Realtime",
		Category:       "multimodal",
		LatencyProfile: "medium",
		Description:    "Phi4-mm with Azure Text to Speech (custom voices included). Cost-efficient multimodal.",
		Notes:          "No semantic_vad support.",
	},
	{
		ModelID:        "phi4-mini",
		Label:          "Phi-4 Mini",
		Category:       "multimodal",
		LatencyProfile: "low",
		Description:    "Phi4-mm Mini with Azure Speech STT/TTS. Lightweight humanoid conversation model.",
		Notes:          "No semantic_vad support.",
	},
}

// ListModels returns the models whose IDs appear in allowedIDs.
// A nil or empty allowlist returns every model.
func ListModels(allowedIDs []string) []Model {
	if len(allowedIDs) == 0 {
		out := make([]Model, len(realtimeModels))
		copy(out, realtimeModels)
		return out
	}

	allowed := make(map[string]struct{}, len(allowedIDs))
	for _, id := range allowedIDs {
		allowed[id] = struct{}{}
	}

	out := make([]Model, 0, len(allowedIDs))
	for _, model := range realtimeModels {
		if _, ok := allowed[model.ModelID]; ok {
			out = append(out, model)
		}
	}
	return out
}

// GetModel looks up a model by ID.
func GetModel(modelID string) (Model, bool) {
	for _, model := range realtimeModels {
		if model.ModelID == modelID {
			return model, true
		}
	}
	return Model{}, false
}
