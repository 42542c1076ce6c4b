package voicelive

// Capabilities advertises which optional session.update fields a protocol
// version accepts. The orchestrator queries this instead of probing the wire;
// unsupported fields are logged and skipped, never fatal.
type Capabilities struct {
	Language   bool
	PhraseList bool
	Avatar     bool
}

// protocolCapabilities maps known api-version strings to their feature sets.
var protocolCapabilities = map[string]Capabilities{
	"2025-05-01-preview": {Language: true, PhraseList: true, Avatar: true},
	"2025-01-01-preview": {Language: true, PhraseList: false, Avatar: true},
	"2024-10-01-preview": {Language: false, PhraseList: false, Avatar: false},
}

// capabilitiesFor returns the capability set for an api version. Unknown
// versions are assumed to support only the mandatory fields.
func capabilitiesFor(apiVersion string) Capabilities {
	if caps, ok := protocolCapabilities[apiVersion]; ok {
		return caps
	}
	return Capabilities{}
}
