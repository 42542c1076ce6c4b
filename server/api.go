package server

import (
	"log"
	"net/http"

	"voicelive-gateway/catalog"
	"voicelive-gateway/config"

	"github.com/bytedance/sonic"
)

// registerCatalogRoutes wires the read-only option catalog under
// /api/v1/realtime/. These endpoints back the client's setup screens.
func registerCatalogRoutes(mux *http.ServeMux, cfg *config.Config) {
	api := &catalogAPI{config: cfg}
	mux.HandleFunc("/api/v1/realtime/models", api.handle(api.models))
	mux.HandleFunc("/api/v1/realtime/voices/azure", api.handle(api.azureVoices))
	mux.HandleFunc("/api/v1/realtime/avatars", api.handle(api.avatars))
	mux.HandleFunc("/api/v1/realtime/languages", api.handle(api.languages))
}

type catalogAPI struct {
	config *config.Config
}

// handle wraps an endpoint with method filtering, API-key auth and CORS.
func (a *catalogAPI) handle(fn func() any) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a.setCORSHeaders(w, r)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodGet {
			http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
			return
		}
		if !a.authorized(r) {
			w.Header().Set("Content-Type", "application/json")
			http.Error(w, `{"error":"invalid api key"}`, http.StatusUnauthorized)
			return
		}

		data, err := sonic.Marshal(fn())
		if err != nil {
			log.Printf("❌ Failed to encode catalog response: %v", err)
			http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(data)
	}
}

func (a *catalogAPI) authorized(r *http.Request) bool {
	if a.config.AppAPIKey == "" {
		return true
	}
	key := r.Header.Get("x-app-api-key")
	if key == "" {
		key = r.URL.Query().Get("api_key")
	}
	return key == a.config.AppAPIKey
}

func (a *catalogAPI) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	for _, allowed := range a.config.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "x-app-api-key, Content-Type")
			return
		}
	}
}

// models returns the selectable model list. The configured default deployment
// is always included even when the allow-list omits it, and leads the list.
func (a *catalogAPI) models() any {
	models := catalog.ListModels(a.config.AllowedModels)

	defaultID := a.config.VoiceLiveDeploymentID
	if defaultID != "" {
		found := false
		for _, m := range models {
			if m.ModelID == defaultID {
				found = true
				break
			}
		}
		if !found {
			if m, ok := catalog.GetModel(defaultID); ok {
				models = append([]catalog.Model{m}, models...)
			}
		}
	}

	return map[string]any{
		"models":              models,
		"default_model_id":    defaultID,
		"allowed_model_ids":   a.config.AllowedModels,
		"voice_live_agent_id": a.config.VoiceLiveAgentID,
	}
}

func (a *catalogAPI) azureVoices() any {
	return map[string]any{
		"provider":         "azure",
		"voices":           catalog.ListVoices("azure"),
		"default_voice_id": catalog.DefaultVoiceID("azure"),
	}
}

// avatars lists the avatar characters. An unknown configured default falls
// back to the first catalog entry so clients always get a usable id.
func (a *catalogAPI) avatars() any {
	avatars := catalog.ListAvatars()

	defaultID := a.config.AvatarDefaultCharacter
	if _, ok := catalog.GetAvatar(defaultID); !ok && len(avatars) > 0 {
		defaultID = avatars[0].AvatarID
	}

	return map[string]any{
		"avatars":           avatars,
		"default_avatar_id": defaultID,
	}
}

// languages merges the static per-model profiles with the Azure Speech list
// used by every multimodal model.
func (a *catalogAPI) languages() any {
	profiles := catalog.ListLanguageProfiles()
	azure := catalog.ListAzureSpeechLanguages()

	for _, m := range catalog.ListModels(nil) {
		if m.Category != "multimodal" {
			continue
		}
		profiles = append(profiles, catalog.LanguageProfile{
			ModelID:         m.ModelID,
			SelectionMode:   "single",
			AllowAutoDetect: true,
			Languages:       azure,
		})
	}

	return map[string]any{
		"azure_speech_modes":     catalog.ListAzureSpeechLanguageModes(),
		"azure_speech_languages": azure,
		"profiles":               profiles,
	}
}
