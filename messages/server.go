package messages

import "github.com/bytedance/sonic"

// Server message types
const (
	TypeSessionLog   = "session.log"
	TypeSessionReady = "session.ready"
	TypeSessionError = "session.error"
	TypeSessionEvent = "session.event"
)

// Relayed event names carried by session.event frames
const (
	EventSessionUpdated          = "session.updated"
	EventSpeechStarted           = "speech.started"
	EventSpeechStopped           = "speech.stopped"
	EventAudioDone               = "audio.done"
	EventResponseDone            = "response.done"
	EventConversationItemCreated = "conversation.item.created"
	EventAvatarOffer             = "avatar.offer"
	EventAvatarAnswer            = "avatar.answer"
	EventAvatarICECandidate      = "avatar.ice_candidate"
)

// ServerMessage is a JSON text frame sent to the client. Raw audio is never
// wrapped in one of these; it goes out as a binary frame.
type ServerMessage struct {
	Type    string `json:"type"`
	Message string `json:"message,omitempty"`
	Event   string `json:"event,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// NewLogMessage creates an advisory session.log message
func NewLogMessage(message string) *ServerMessage {
	return &ServerMessage{Type: TypeSessionLog, Message: message}
}

// NewReadyMessage creates the session.ready message sent once the remote
// session is open
func NewReadyMessage() *ServerMessage {
	return &ServerMessage{Type: TypeSessionReady}
}

// NewErrorMessage creates a session.error message
func NewErrorMessage(message string) *ServerMessage {
	return &ServerMessage{Type: TypeSessionError, Message: message}
}

// NewEventMessage creates a session.event message relaying a remote event
func NewEventMessage(event string, data any) *ServerMessage {
	return &ServerMessage{Type: TypeSessionEvent, Event: event, Data: data}
}

// Encode serializes the message for the wire.
func (m *ServerMessage) Encode() ([]byte, error) {
	return sonic.Marshal(m)
}
