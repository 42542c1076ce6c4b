package catalog

// LanguageOption pairs a language code with its display label. An empty code
// means automatic detection.
type LanguageOption struct {
	Code  string `json:"code"`
	Label string `json:"label"`
	Note  string `json:"note,omitempty"`
}

// LanguageMode describes one way the input language can be configured.
type LanguageMode struct {
	Mode        string `json:"mode"`
	Label       string `json:"label"`
	Description string `json:"description"`
}

// LanguageProfile describes the language support of one realtime model.
type LanguageProfile struct {
	ModelID         string           `json:"model_id"`
	SelectionMode   string           `json:"selection_mode"` // "single" or "multi"
	AllowAutoDetect bool             `json:"allow_auto_detect"`
	Languages       []LanguageOption `json:"languages"`
}

var azureSpeechLanguageModes = []LanguageMode{
	{
		Mode:        "auto",
		Label:       "Automatic multilingual detection (default)",
		Description: "Set model=azure-speech and leave language empty to enable automatic detection.",
	},
	{
		Mode:        "single",
		Label:       "Single language",
		Description: "Set model=azure-speech and pick one language code from the list below.",
	},
	{
		Mode:        "multi",
		Label:       "Up to 10 languages",
		Description: "Provide up to 10 comma-separated codes from the list below as hints to the model.",
	},
}

var azureSpeechLanguages = []LanguageOption{
	{Code: "", Label: "Auto detect (multilingual model)", Note: "Leave the language field empty."},
	{Code: "zh-CN", Label: "Chinese (China)"},
	{Code: "en-AU", Label: "English (Australia)"},
	{Code: "en-CA", Label: "English (Canada)"},
	{Code: "en-IN", Label: "English (India)"},
	{Code: "en-GB", Label: "English (United Kingdom)"},
	{Code: "en-US", Label: "English (United States)"},
	{Code: "fr-CA", Label: "French (Canada)"},
	{Code: "fr-FR", Label: "French (France)"},
	{Code: "de-DE", Label: "German (Germany)"},
	{Code: "hi-IN", Label: "Hindi (India)"},
	{Code: "it-IT", Label: "Italian (Italy)"},
	{Code: "ja-JP", Label: "Japanese (Japan)"},
	{Code: "ko-KR", Label: "Korean (Korea)"},
	{Code: "es-MX", Label: "Spanish (Mexico)"},
	{Code: "es-ES", Label: "Spanish (Spain)"},
}

var gptRealtimeLanguages = []LanguageOption{
	{Code: "af", Label: "Afrikaans"},
	{Code: "ar", Label: "Arabic"},
	{Code: "hy", Label: "Armenian"},
	{Code: "az", Label: "Azerbaijani"},
	{Code: "be", Label: "Belarusian"},
	{Code: "bs", Label: "Bosnian"},
	{Code: "bg", Label: "Bulgarian"},
	{Code: "ca", Label: "Catalan"},
	{Code: "zh", Label: "Chinese"},
	{Code: "hr", Label: "Croatian"},
	{Code: "cs", Label: "Czech"},
	{Code: "da", Label: "Danish"},
	{Code: "nl", Label: "Dutch"},
	{Code: "en", Label: "English"},
	{Code: "et", Label: "Estonian"},
	{Code: "fi", Label: "Finnish"},
	{Code: "fr", Label: "French"},
	{Code: "gl", Label: "Galician"},
	{Code: "de", Label: "German"},
	{Code: "el", Label: "Greek"},
	{Code: "he", Label: "Hebrew"},
	{Code: "hi", Label: "Hindi"},
	{Code: "hu", Label: "Hungarian"},
	{Code: "is", Label: "Icelandic"},
	{Code: "id", Label: "Indonesian"},
	{Code: "it", Label: "Italian"},
	{Code: "ja", Label: "Japanese"},
	{Code: "kn", Label: "Kannada"},
	{Code: "kk", Label: "Kazakh"},
	{Code: "ko", Label: "Korean"},
	{Code: "lv", Label: "Latvian"},
	{Code: "lt", Label: "Lithuanian"},
	{Code: "mk", Label: "Macedonian"},
	{Code: "ms", Label: "Malay"},
	{Code: "mr", Label: "Marathi"},
	{Code: "mi", Label: "Maori"},
	{Code: "ne", Label: "Nepali"},
	{Code: "no", Label: "Norwegian"},
	{Code: "fa", Label: "Persian"},
	{Code: "pl", Label: "Polish"},
	{Code: "pt", Label: "Portuguese"},
	{Code: "ro", Label: "Romanian"},
	{Code: "ru", Label: "Russian"},
	{Code: "sr", Label: "Serbian"},
	{Code: "sk", Label: "Slovak"},
	{Code: "sl", Label: "Slovenian"},
	{Code: "es", Label: "Spanish"},
	{Code: "sw", Label: "Swahili"},
	{Code: "sv", Label: "Swedish"},
	{Code: "tl", Label: "Tagalog"},
	{Code: "ta", Label: "Tamil"},
	{Code: "th", Label: "Thai"},
	{Code: "tr", Label: "Turkish"},
	{Code: "uk", Label: "Ukrainian"},
	{Code: "ur", Label: "Urdu"},
	{Code: "vi", Label: "Vietnamese"},
	{Code: "cy", Label: "Welsh"},
}

var phi4MMLanguages = []LanguageOption{
	{Code: "zh", Label: "Chinese"},
	{Code: "en", Label: "English"},
	{Code: "fr", Label: "French"},
	{Code: "de", Label: "German"},
	{Code: "it", Label: "Italian"},
	{Code: "ja", Label: "Japanese"},
	{Code: "pt", Label: "Portuguese"},
	{Code: "es", Label: "Spanish"},
}

// ListAzureSpeechLanguageModes returns the Azure Speech language configuration modes.
func ListAzureSpeechLanguageModes() []LanguageMode {
	out := make([]LanguageMode, len(azureSpeechLanguageModes))
	copy(out, azureSpeechLanguageModes)
	return out
}

// ListAzureSpeechLanguages returns the languages Azure Speech recognizes.
func ListAzureSpeechLanguages() []LanguageOption {
	out := make([]LanguageOption, len(azureSpeechLanguages))
	copy(out, azureSpeechLanguages)
	return out
}

// ListLanguageProfiles returns the per-model language support for the
// realtime-category models. Multimodal models use the Azure Speech list and
// are appended by the API layer.
func ListLanguageProfiles() []LanguageProfile {
	gpt := make([]LanguageOption, len(gptRealtimeLanguages))
	copy(gpt, gptRealtimeLanguages)
	phi := make([]LanguageOption, len(phi4MMLanguages))
	copy(phi, phi4MMLanguages)

	return []LanguageProfile{
		{ModelID: "gpt-realtime", SelectionMode: "single", AllowAutoDetect: true, Languages: gpt},
		{ModelID: "gpt-realtime-mini", SelectionMode: "single", AllowAutoDetect: true, Languages: gpt},
		{ModelID: "phi4-mm-realtime", SelectionMode: "single", AllowAutoDetect: false, Languages: phi},
	}
}
