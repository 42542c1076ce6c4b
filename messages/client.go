package messages

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/pion/webrtc/v3"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Client message types
const (
	TypeSessionConfigure   = "session.configure"
	TypeSessionStop        = "session.stop"
	TypeAvatarAnswer       = "avatar.answer"
	TypeAvatarICECandidate = "avatar.ice_candidate"
	TypeAvatarClientOffer  = "avatar.client_offer"
)

// ClientMessage is the envelope of every JSON text frame a client sends,
// discriminated by Type. Payload is decoded lazily per type; the avatar
// answer and ICE candidate messages carry their fields at the top level.
type ClientMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`

	// avatar.answer
	SDP             string `json:"sdp,omitempty"`
	DescriptionType string `json:"descriptionType,omitempty"`

	// avatar.ice_candidate
	Candidate *webrtc.ICECandidateInit `json:"candidate,omitempty"`
}

// ConfigurePayload is the body of a session.configure message.
type ConfigurePayload struct {
	ModelID              string   `json:"modelId"`
	VoiceID              string   `json:"voiceId"`
	Instructions         string   `json:"instructions,omitempty"`
	Language             string   `json:"language,omitempty"`
	PhraseList           []string `json:"phraseList,omitempty"`
	SemanticVAD          string   `json:"semanticVad,omitempty"`
	EnableEOU            *bool    `json:"enableEou,omitempty"`
	AgentID              string   `json:"agentId,omitempty"`
	CustomSpeechEndpoint string   `json:"customSpeechEndpoint,omitempty"`
	AvatarID             string   `json:"avatarId,omitempty"`
}

// ClientOfferPayload is the body of an avatar.client_offer message.
type ClientOfferPayload struct {
	Offer struct {
		SDP string `json:"sdp"`
	} `json:"offer"`
}

const configureSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["modelId", "voiceId"],
  "properties": {
    "modelId": {"type": "string", "minLength": 1},
    "voiceId": {"type": "string"},
    "instructions": {"type": "string"},
    "language": {"type": "string"},
    "phraseList": {"type": "array", "items": {"type": "string"}},
    "semanticVad": {"type": "string"},
    "enableEou": {"type": "boolean"},
    "agentId": {"type": "string"},
    "customSpeechEndpoint": {"type": "string"},
    "avatarId": {"type": "string"}
  }
}`

var configureSchema = mustCompileSchema("session.configure.json", configureSchemaJSON)

func mustCompileSchema(name, source string) *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, strings.NewReader(source)); err != nil {
		panic(err)
	}
	return compiler.MustCompile(name)
}

// ParseClientMessage decodes a text frame into its envelope. A missing or
// unknown type tag is a protocol error.
func ParseClientMessage(data []byte) (*ClientMessage, error) {
	var msg ClientMessage
	if err := sonic.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("invalid message JSON: %w", err)
	}

	switch msg.Type {
	case TypeSessionConfigure, TypeSessionStop, TypeAvatarAnswer, TypeAvatarICECandidate, TypeAvatarClientOffer:
		return &msg, nil
	case "":
		return nil, fmt.Errorf("message missing type tag")
	default:
		return nil, fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// ConfigurePayload validates the payload against the session.configure schema
// and decodes it.
func (m *ClientMessage) ConfigurePayload() (*ConfigurePayload, error) {
	if len(m.Payload) == 0 {
		return nil, fmt.Errorf("session.configure missing payload")
	}

	var instance any
	if err := sonic.Unmarshal(m.Payload, &instance); err != nil {
		return nil, fmt.Errorf("invalid configure payload JSON: %w", err)
	}
	if err := configureSchema.Validate(instance); err != nil {
		return nil, fmt.Errorf("configure payload failed validation: %w", err)
	}

	var payload ConfigurePayload
	if err := sonic.Unmarshal(m.Payload, &payload); err != nil {
		return nil, fmt.Errorf("invalid configure payload: %w", err)
	}
	return &payload, nil
}

// ClientOfferPayload decodes the payload of an avatar.client_offer message.
func (m *ClientMessage) ClientOfferPayload() (*ClientOfferPayload, error) {
	if len(m.Payload) == 0 {
		return nil, fmt.Errorf("avatar.client_offer missing payload")
	}

	var payload ClientOfferPayload
	if err := sonic.Unmarshal(m.Payload, &payload); err != nil {
		return nil, fmt.Errorf("invalid client offer payload: %w", err)
	}
	if strings.TrimSpace(payload.Offer.SDP) == "" {
		return nil, fmt.Errorf("client offer missing offer.sdp")
	}
	return &payload, nil
}
