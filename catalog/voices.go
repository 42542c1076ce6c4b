package catalog

// Voice describes a TTS voice a client may select.
type Voice struct {
	VoiceID     string   `json:"voice_id"`
	Provider    string   `json:"provider"`
	DisplayName string   `json:"display_name"`
	Locale      string   `json:"locale"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
}

var azureVoices = []Voice{
	{
		VoiceID:     "ja-JP-AoiNeural",
		Provider:    "azure",
		DisplayName: "Aoi (ja-JP)",
		Locale:      "ja-JP",
		Description: "Natural native Japanese female voice. Well suited to reception and guidance scenarios.",
		Tags:        []string{"Japanese", "Neural"},
	},
	{
		VoiceID:     "en-US-JennyNeural",
		Provider:    "azure",
		DisplayName: "Jenny (en-US)",
		Locale:      "en-US",
		Description: "Warm English voice. A good fit for a global-facing assistant.",
		Tags:        []string{"English", "Neural"},
	},
	{
		VoiceID:     "zh-CN-XiaoxiaoNeural",
		Provider:    "azure",
		DisplayName: "Xiaoxiao (zh-CN)",
		Locale:      "zh-CN",
		Description: "Mandarin Chinese voice. Useful for multilingual demo switching.",
		Tags:        []string{"Chinese", "Multilingual"},
	},
	{
		VoiceID:     "en-US-DavisNeural",
		Provider:    "azure",
		DisplayName: "Davis (en-US)",
		Locale:      "en-US",
		Description: "Low, calm male voice. Well suited to technical support and FAQ flows.",
		Tags:        []string{"Calm", "Neural"},
	},
}

// ListVoices returns the voices for a provider. Unknown providers yield nil.
func ListVoices(provider string) []Voice {
	if provider != "azure" {
		return nil
	}
	out := make([]Voice, len(azureVoices))
	copy(out, azureVoices)
	return out
}

// DefaultVoiceID returns the default voice for a provider.
func DefaultVoiceID(provider string) string {
	voices := ListVoices(provider)
	if len(voices) == 0 {
		return ""
	}
	return voices[0].VoiceID
}
