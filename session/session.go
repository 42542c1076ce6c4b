package session

import (
	"context"
	"encoding/base64"
	"log"
	"sync"
	"time"

	"voicelive-gateway/catalog"
	"voicelive-gateway/config"
	"voicelive-gateway/messages"
	"voicelive-gateway/voicelive"

	"github.com/gorilla/websocket"
)

const (
	writeBufferSize = 256
	writeTimeout    = 10 * time.Second
)

// State tracks where a client session is in its lifecycle.
type State int

const (
	StateAwaitingConfig State = iota
	StateConfiguring
	StateActive
	StateClosing
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateAwaitingConfig:
		return "awaiting_config"
	case StateConfiguring:
		return "configuring"
	case StateActive:
		return "active"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// RemoteSession is the upstream realtime connection a client session drives.
// *voicelive.Client implements it; tests substitute fakes.
type RemoteSession interface {
	Open(ctx context.Context, cfg voicelive.SessionConfig) error
	Events() (<-chan voicelive.ServerEvent, error)
	SendAudioChunk(chunk []byte) error
	CancelResponse()
	SendAvatarAnswer(sdp, descriptionType string) error
	RequestAvatarAnswer(ctx context.Context, offerSDP string) (string, error)
	Close() error
}

// RemoteFactory builds an unopened remote session for one client connection.
type RemoteFactory func() RemoteSession

// ClientSession represents a single user's connection
type ClientSession struct {
	ID           string
	ClientConn   *websocket.Conn
	Remote       RemoteSession
	CreatedAt    time.Time
	LastActivity time.Time

	config        *config.Config
	remoteFactory RemoteFactory
	relayDone     chan struct{}
	pumpDone      chan struct{}

	// Use channels for non-blocking writes
	writeChan chan any

	mu        sync.RWMutex
	state     State
	closed    bool
	CloseChan chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewClientSession creates an unconfigured session. The remote connection is
// established later, when the client sends session.configure.
func NewClientSession(id string, clientConn *websocket.Conn, cfg *config.Config, factory RemoteFactory) *ClientSession {
	ctx, cancel := context.WithCancel(context.Background())

	clientConn.SetReadLimit(512 * 1024) // 512KB max message
	clientConn.EnableWriteCompression(true)
	clientConn.SetCompressionLevel(6)

	return &ClientSession{
		ID:            id,
		ClientConn:    clientConn,
		CreatedAt:     time.Now(),
		LastActivity:  time.Now(),
		config:        cfg,
		remoteFactory: factory,
		writeChan:     make(chan any, writeBufferSize),
		CloseChan:     make(chan struct{}),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Start begins the bidirectional message handling
func (cs *ClientSession) Start() {
	cs.mu.Lock()
	cs.pumpDone = make(chan struct{})
	cs.mu.Unlock()
	go cs.writePump()
	cs.queueMessage(messages.NewLogMessage("session established, send session.configure to begin"))
	go cs.handleClientMessages()
}

// State returns the current lifecycle state.
func (cs *ClientSession) State() State {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.state
}

func (cs *ClientSession) setState(s State) {
	cs.mu.Lock()
	cs.state = s
	cs.mu.Unlock()
}

// writePump handles all outgoing messages in a single goroutine
func (cs *ClientSession) writePump() {
	defer close(cs.pumpDone)
	defer func() {
		// Send close message before exiting
		cs.ClientConn.SetWriteDeadline(time.Now().Add(writeTimeout))
		cs.ClientConn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		)
	}()

	for {
		select {
		case <-cs.CloseChan:
			// Flush whatever is already queued so a final session.error
			// reaches the client before the close frame.
			for {
				select {
				case msg, ok := <-cs.writeChan:
					if !ok {
						return
					}
					if err := cs.writeFrame(msg); err != nil {
						return
					}
				default:
					return
				}
			}
		case msg, ok := <-cs.writeChan:
			if !ok {
				// Channel closed, exit gracefully
				return
			}

			if err := cs.writeFrame(msg); err != nil {
				return
			}

			n := len(cs.writeChan)
			for i := 0; i < n; i++ {
				select {
				case msg, ok := <-cs.writeChan:
					if !ok {
						return
					}
					if err := cs.writeFrame(msg); err != nil {
						return
					}
				default:
					// No more messages, continue outer loop
				}
			}
		}
	}
}

// writeFrame writes one queued message. Byte slices go out as binary audio
// frames, everything else as JSON text.
func (cs *ClientSession) writeFrame(msg any) error {
	cs.ClientConn.SetWriteDeadline(time.Now().Add(writeTimeout))

	switch m := msg.(type) {
	case []byte:
		return cs.ClientConn.WriteMessage(websocket.BinaryMessage, m)
	case *messages.ServerMessage:
		data, err := m.Encode()
		if err != nil {
			log.Printf("❌ [%s] Failed to encode server message: %v", cs.ID[:8], err)
			return nil
		}
		return cs.ClientConn.WriteMessage(websocket.TextMessage, data)
	default:
		return cs.ClientConn.WriteJSON(msg)
	}
}

// queueMessage adds a message to the write queue (non-blocking). The read
// lock is held across the send so Close cannot close the channel underneath
// an in-flight enqueue.
func (cs *ClientSession) queueMessage(msg any) {
	cs.mu.RLock()
	if cs.closed {
		cs.mu.RUnlock()
		return
	}
	queued := false
	select {
	case cs.writeChan <- msg:
		queued = true
	default:
		// Queue full, drop message (shouldn't happen with proper sizing)
	}
	cs.mu.RUnlock()

	if queued {
		cs.mu.Lock()
		cs.LastActivity = time.Now()
		cs.mu.Unlock()
	}
}

func (cs *ClientSession) handleClientMessages() {
	defer cs.Close()

	for {
		select {
		case <-cs.CloseChan:
			return
		default:
			messageType, message, err := cs.ClientConn.ReadMessage()
			if err != nil {
				return
			}

			cs.mu.Lock()
			cs.LastActivity = time.Now()
			cs.mu.Unlock()

			// Binary messages are raw PCM audio for the remote session
			if messageType == websocket.BinaryMessage {
				cs.handleAudio(message)
				continue
			}

			clientMsg, err := messages.ParseClientMessage(message)
			if err != nil {
				cs.queueMessage(messages.NewErrorMessage("invalid message: " + err.Error()))
				continue
			}

			cs.processClientMessage(clientMsg)
		}
	}
}

func (cs *ClientSession) handleAudio(chunk []byte) {
	if cs.State() != StateActive {
		cs.queueMessage(messages.NewErrorMessage("session not configured"))
		return
	}
	// A mid-session send failure means the upstream connection is gone.
	if err := cs.Remote.SendAudioChunk(chunk); err != nil {
		log.Printf("❌ [%s] Failed to forward audio: %v", cs.ID[:8], err)
		cs.queueMessage(messages.NewErrorMessage("failed to forward audio: " + err.Error()))
		cs.Close()
	}
}

func (cs *ClientSession) processClientMessage(msg *messages.ClientMessage) {
	switch msg.Type {
	case messages.TypeSessionConfigure:
		cs.handleConfigure(msg)

	case messages.TypeSessionStop:
		cs.handleStop()

	case messages.TypeAvatarClientOffer:
		cs.handleClientOffer(msg)

	case messages.TypeAvatarAnswer:
		cs.handleAvatarAnswer(msg)

	case messages.TypeAvatarICECandidate:
		// Candidates are bundled into the SDP exchange; individual trickle
		// candidates from the client have no upstream equivalent.
		cs.queueMessage(messages.NewLogMessage("ice candidate acknowledged"))

	default:
		cs.queueMessage(messages.NewErrorMessage("unknown message type: " + msg.Type))
	}
}

// handleConfigure validates the configure payload, opens the remote session
// and transitions the session to active.
func (cs *ClientSession) handleConfigure(msg *messages.ClientMessage) {
	if cs.State() != StateAwaitingConfig {
		cs.queueMessage(messages.NewErrorMessage("session already configured"))
		return
	}
	cs.setState(StateConfiguring)

	payload, err := msg.ConfigurePayload()
	if err != nil {
		cs.queueMessage(messages.NewErrorMessage("invalid configure payload: " + err.Error()))
		cs.setState(StateAwaitingConfig)
		return
	}

	remoteCfg, err := cs.buildSessionConfig(payload)
	if err != nil {
		cs.queueMessage(messages.NewErrorMessage(err.Error()))
		cs.setState(StateAwaitingConfig)
		return
	}

	// A failed open is fatal to the whole session, unlike a bad payload.
	remote := cs.remoteFactory()
	if err := remote.Open(cs.ctx, remoteCfg); err != nil {
		log.Printf("❌ [%s] Failed to open remote session: %v", cs.ID[:8], err)
		remote.Close()
		cs.queueMessage(messages.NewErrorMessage("failed to open remote session: " + err.Error()))
		cs.Close()
		return
	}

	events, err := remote.Events()
	if err != nil {
		remote.Close()
		cs.queueMessage(messages.NewErrorMessage("failed to open remote session: " + err.Error()))
		cs.Close()
		return
	}

	cs.mu.Lock()
	cs.Remote = remote
	cs.relayDone = make(chan struct{})
	cs.mu.Unlock()

	go cs.relayRemoteEvents(events)

	cs.setState(StateActive)
	log.Printf("🔗 [%s] Remote session open, model=%s voice=%s", cs.ID[:8], remoteCfg.ModelID, remoteCfg.VoiceID)
	cs.queueMessage(messages.NewReadyMessage())
}

// buildSessionConfig merges the configure payload with server defaults and
// resolves catalog references.
func (cs *ClientSession) buildSessionConfig(payload *messages.ConfigurePayload) (voicelive.SessionConfig, error) {
	if err := cs.validateModel(payload.ModelID); err != nil {
		return voicelive.SessionConfig{}, err
	}

	enableEOU := true
	if payload.EnableEOU != nil {
		enableEOU = *payload.EnableEOU
	}

	cfg := voicelive.SessionConfig{
		ModelID:              payload.ModelID,
		VoiceID:              payload.VoiceID,
		Instructions:         payload.Instructions,
		Language:             payload.Language,
		PhraseList:           voicelive.NormalizePhraseList(payload.PhraseList),
		SemanticVAD:          payload.SemanticVAD,
		EnableEOU:            enableEOU,
		AgentID:              payload.AgentID,
		CustomSpeechEndpoint: payload.CustomSpeechEndpoint,
	}

	cfg.Avatar = cs.resolveAvatar(payload.AvatarID)
	return cfg, nil
}

func (cs *ClientSession) validateModel(modelID string) error {
	allowed := cs.config.AllowedModels
	if len(allowed) == 0 {
		return nil
	}
	for _, id := range allowed {
		if id == modelID {
			return nil
		}
	}
	return &modelNotAllowedError{modelID: modelID}
}

type modelNotAllowedError struct {
	modelID string
}

func (e *modelNotAllowedError) Error() string {
	return "model not allowed: " + e.modelID
}

// resolveAvatar maps an avatar catalog id to its character and style. An
// empty or unknown id falls back to the configured default; if that is
// unknown too the session proceeds without an avatar modality.
func (cs *ClientSession) resolveAvatar(avatarID string) *voicelive.AvatarSelection {
	if avatarID != "" {
		if avatar, ok := catalog.GetAvatar(avatarID); ok {
			return &voicelive.AvatarSelection{Character: avatar.Character, Style: avatar.Style}
		}
		log.Printf("⚠️ [%s] Unknown avatar %q, trying default", cs.ID[:8], avatarID)
	}
	if avatar, ok := catalog.GetAvatar(cs.config.AvatarDefaultCharacter); ok {
		return &voicelive.AvatarSelection{Character: avatar.Character, Style: avatar.Style}
	}
	return nil
}

// relayRemoteEvents translates upstream events into client frames until the
// remote event channel closes or the session shuts down.
func (cs *ClientSession) relayRemoteEvents(events <-chan voicelive.ServerEvent) {
	defer close(cs.relayDone)

	for {
		select {
		case <-cs.ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				if !cs.IsClosed() {
					log.Printf("🔌 [%s] Remote session closed, ending session", cs.ID[:8])
					cs.queueMessage(messages.NewErrorMessage("remote session closed"))
					go cs.Close()
				}
				return
			}
			cs.relayEvent(event)
		}
	}
}

func (cs *ClientSession) relayEvent(event voicelive.ServerEvent) {
	switch event.Type {
	case voicelive.EventSessionCreated:
		log.Printf("✅ [%s] Remote session created", cs.ID[:8])

	case voicelive.EventSessionUpdated:
		data := map[string]any{}
		if event.Session != nil {
			data["sessionId"] = event.Session.ID
			if event.Session.Avatar != nil {
				data["avatar"] = event.Session.Avatar
			}
		}
		cs.queueMessage(messages.NewEventMessage(messages.EventSessionUpdated, data))

	case voicelive.EventSpeechStarted:
		cs.queueMessage(messages.NewEventMessage(messages.EventSpeechStarted, nil))

	case voicelive.EventSpeechStopped:
		cs.queueMessage(messages.NewEventMessage(messages.EventSpeechStopped, nil))

	case voicelive.EventAudioDelta:
		pcm, err := base64.StdEncoding.DecodeString(event.Delta)
		if err != nil {
			log.Printf("⚠️ [%s] Undecodable audio delta: %v", cs.ID[:8], err)
			return
		}
		cs.queueMessage(pcm)

	case voicelive.EventAudioDone:
		cs.queueMessage(messages.NewEventMessage(messages.EventAudioDone, nil))

	case voicelive.EventResponseDone:
		cs.queueMessage(messages.NewEventMessage(messages.EventResponseDone, map[string]any{
			"response_id": event.ResponseID,
		}))

	case voicelive.EventItemCreated:
		cs.queueMessage(messages.NewEventMessage(messages.EventConversationItemCreated, map[string]any{
			"item_id": event.ItemID,
		}))

	case voicelive.EventAvatarOffer:
		sdp := event.ServerSDP
		if sdp == "" {
			sdp = event.SDP
		}
		cs.queueMessage(messages.NewEventMessage(messages.EventAvatarOffer, map[string]any{
			"offer": map[string]any{
				"sdp":  voicelive.DecodeServerSDP(sdp),
				"type": "offer",
			},
			"iceServers": event.ICEServers,
		}))

	case voicelive.EventAvatarICE:
		if event.Candidate == "" {
			return
		}
		data := map[string]any{"candidate": event.Candidate}
		if event.SDPMid != nil {
			data["sdpMid"] = *event.SDPMid
		}
		if event.SDPMLineIndex != nil {
			data["sdpMLineIndex"] = *event.SDPMLineIndex
		}
		cs.queueMessage(messages.NewEventMessage(messages.EventAvatarICECandidate, data))

	case voicelive.EventError:
		message := "remote error"
		if event.Error != nil && event.Error.Message != "" {
			message = event.Error.Message
		}
		log.Printf("❌ [%s] Remote error: %s", cs.ID[:8], message)
		cs.queueMessage(messages.NewErrorMessage(message))

	default:
		log.Printf("⚠️ [%s] Unhandled remote event: %s", cs.ID[:8], event.Type)
	}
}

// handleClientOffer runs the avatar SDP exchange for a client-initiated offer.
// A timeout leaves the audio session usable; only the avatar track is lost.
func (cs *ClientSession) handleClientOffer(msg *messages.ClientMessage) {
	if cs.State() != StateActive {
		cs.queueMessage(messages.NewErrorMessage("session not configured"))
		return
	}

	payload, err := msg.ClientOfferPayload()
	if err != nil {
		cs.queueMessage(messages.NewErrorMessage("invalid offer payload: " + err.Error()))
		return
	}

	answer, err := cs.Remote.RequestAvatarAnswer(cs.ctx, payload.Offer.SDP)
	if err != nil {
		log.Printf("❌ [%s] Avatar negotiation failed: %v", cs.ID[:8], err)
		cs.queueMessage(messages.NewErrorMessage("avatar negotiation failed: " + err.Error()))
		return
	}

	cs.queueMessage(messages.NewEventMessage(messages.EventAvatarAnswer, map[string]any{
		"sdp":  answer,
		"type": "answer",
	}))
}

func (cs *ClientSession) handleAvatarAnswer(msg *messages.ClientMessage) {
	if cs.State() != StateActive {
		cs.queueMessage(messages.NewErrorMessage("session not configured"))
		return
	}
	if err := cs.Remote.SendAvatarAnswer(msg.SDP, msg.DescriptionType); err != nil {
		cs.queueMessage(messages.NewErrorMessage("failed to forward answer: " + err.Error()))
	}
}

func (cs *ClientSession) handleStop() {
	log.Printf("👋 [%s] Client requested stop", cs.ID[:8])
	cs.queueMessage(messages.NewLogMessage("session stopping"))

	cs.mu.RLock()
	remote := cs.Remote
	cs.mu.RUnlock()
	if remote != nil {
		remote.CancelResponse()
	}
	cs.Close()
}

// Close terminates the session and cleans up resources
func (cs *ClientSession) Close() error {
	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		return nil
	}
	cs.closed = true
	cs.state = StateClosing
	remote := cs.Remote
	relayDone := cs.relayDone
	pumpDone := cs.pumpDone
	cs.mu.Unlock()

	cs.cancel()

	// Wait for the relay to drain before tearing down its sink
	if relayDone != nil {
		<-relayDone
	}

	if remote != nil {
		remote.Close()
	}

	// Close the write channel first to stop writePump
	close(cs.writeChan)

	// Signal close (for other goroutines waiting on this)
	close(cs.CloseChan)

	// Let writePump flush the queue before the connection goes away,
	// otherwise a final session.error races the TCP close.
	if pumpDone != nil {
		<-pumpDone
	}

	if cs.ClientConn != nil {
		cs.ClientConn.Close()
	}

	cs.setState(StateClosed)
	return nil
}

// IsClosed returns whether the session is closed
func (cs *ClientSession) IsClosed() bool {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.closed
}
