package voicelive

import "github.com/pion/webrtc/v3"

// Server event types on the Voice Live connection
const (
	EventSessionCreated   = "session.created"
	EventSessionUpdated   = "session.updated"
	EventSpeechStarted    = "input_audio_buffer.speech_started"
	EventSpeechStopped    = "input_audio_buffer.speech_stopped"
	EventAudioDelta       = "response.audio.delta"
	EventAudioDone        = "response.audio.done"
	EventResponseDone     = "response.done"
	EventItemCreated      = "conversation.item.created"
	EventError            = "error"
	EventAvatarConnecting = "session.avatar.connecting"
	EventAvatarAnswer     = "session.avatar.answer"
	EventAvatarOffer      = "session.avatar.offer"
	EventAvatarICE        = "session.avatar.ice_candidate"
)

// ServerEvent is the decoded envelope of one event from the Voice Live
// connection. It is a superset of every event shape; fields irrelevant to an
// event's type are simply zero. Decoding once into the superset keeps the
// relay loop to a single unmarshal per frame.
type ServerEvent struct {
	Type    string `json:"type"`
	EventID string `json:"event_id,omitempty"`

	Session *SessionResource `json:"session,omitempty"`

	// response.audio.delta carries base64 PCM16
	Delta      string `json:"delta,omitempty"`
	ResponseID string `json:"response_id,omitempty"`
	ItemID     string `json:"item_id,omitempty"`

	Error *ErrorDetail `json:"error,omitempty"`

	// avatar sub-protocol
	ServerSDP     string             `json:"server_sdp,omitempty"`
	SDP           string             `json:"sdp,omitempty"`
	Candidate     string             `json:"candidate,omitempty"`
	SDPMid        *string            `json:"sdp_mid,omitempty"`
	SDPMLineIndex *uint16            `json:"sdp_m_line_index,omitempty"`
	ICEServers    []webrtc.ICEServer `json:"ice_servers,omitempty"`
}

// ErrorDetail is the error body of an error event.
type ErrorDetail struct {
	Type    string `json:"type,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// SessionResource mirrors the remote session object carried by
// session.created / session.updated events.
type SessionResource struct {
	ID     string          `json:"id"`
	Model  string          `json:"model,omitempty"`
	Avatar *AvatarResource `json:"avatar,omitempty"`
}

// AvatarResource is the remote session's avatar state. Absent fields stay
// absent when re-serialized toward the client.
type AvatarResource struct {
	ID         string             `json:"id,omitempty"`
	Character  string             `json:"character,omitempty"`
	Style      string             `json:"style,omitempty"`
	State      string             `json:"state,omitempty"`
	ICEServers []webrtc.ICEServer `json:"ice_servers,omitempty"`
	SDPOffer   string             `json:"sdp_offer,omitempty"`
	Video      *AvatarVideoParams `json:"video,omitempty"`
}

// AvatarVideoParams describes the negotiated avatar video stream.
type AvatarVideoParams struct {
	Codec   string `json:"codec,omitempty"`
	Width   int    `json:"width,omitempty"`
	Height  int    `json:"height,omitempty"`
	Bitrate int    `json:"bitrate,omitempty"`
}

// AvatarAnswerEvent is the SDP answer produced when the remote service
// finishes avatar WebRTC negotiation. Consumed exactly once by the pending
// RequestAvatarAnswer caller.
type AvatarAnswerEvent struct {
	SDP             string
	DescriptionType string
}
