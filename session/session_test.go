package session

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"voicelive-gateway/config"
	"voicelive-gateway/voicelive"

	"github.com/gorilla/websocket"
)

// fakeRemote stands in for the Voice Live client.
type fakeRemote struct {
	mu          sync.Mutex
	events      chan voicelive.ServerEvent
	eventsOnce  sync.Once
	openCfg     voicelive.SessionConfig
	opened      bool
	audio       [][]byte
	cancels     int
	closes      int
	openErr     error
	answerSDP   string
	answerErr   error
	sentAnswers []string
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{events: make(chan voicelive.ServerEvent, 16)}
}

func (f *fakeRemote) Open(_ context.Context, cfg voicelive.SessionConfig) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.openErr != nil {
		return f.openErr
	}
	f.opened = true
	f.openCfg = cfg
	return nil
}

func (f *fakeRemote) Events() (<-chan voicelive.ServerEvent, error) {
	return f.events, nil
}

func (f *fakeRemote) SendAudioChunk(chunk []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	buf := make([]byte, len(chunk))
	copy(buf, chunk)
	f.audio = append(f.audio, buf)
	return nil
}

func (f *fakeRemote) CancelResponse() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
}

func (f *fakeRemote) SendAvatarAnswer(sdp, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sentAnswers = append(f.sentAnswers, sdp)
	return nil
}

func (f *fakeRemote) RequestAvatarAnswer(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.answerErr != nil {
		return "", f.answerErr
	}
	return f.answerSDP, nil
}

func (f *fakeRemote) Close() error {
	f.mu.Lock()
	f.closes++
	f.mu.Unlock()
	f.eventsOnce.Do(func() { close(f.events) })
	return nil
}

func (f *fakeRemote) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closes
}

func (f *fakeRemote) audioChunks() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.audio))
	copy(out, f.audio)
	return out
}

func testConfig() *config.Config {
	return &config.Config{
		AvatarDefaultCharacter: "lisa-casual-sitting",
		MaxSessions:            10,
		SessionTimeout:         time.Minute,
	}
}

// startGateway serves one client session over a test WebSocket server and
// returns a connected client.
func startGateway(t *testing.T, cfg *config.Config, remote *fakeRemote) *websocket.Conn {
	t.Helper()
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		cs := NewClientSession("deadbeef-test-session", conn, cfg, func() RemoteSession { return remote })
		cs.Start()
		<-cs.CloseChan
	}))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

type gatewayFrame struct {
	Type    string          `json:"type"`
	Message string          `json:"message,omitempty"`
	Event   string          `json:"event,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`

	binary []byte
}

func readFrame(t *testing.T, conn *websocket.Conn) gatewayFrame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	mt, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read frame: %v", err)
	}
	if mt == websocket.BinaryMessage {
		return gatewayFrame{binary: data}
	}
	var frame gatewayFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		t.Fatalf("decode frame: %v (%s)", err, data)
	}
	return frame
}

// readFrameOfType skips advisory logs until a frame of the wanted type shows up.
func readFrameOfType(t *testing.T, conn *websocket.Conn, wantType string) gatewayFrame {
	t.Helper()
	for i := 0; i < 10; i++ {
		frame := readFrame(t, conn)
		if frame.binary != nil {
			continue
		}
		if frame.Type == wantType {
			return frame
		}
		if frame.Type == "session.log" {
			continue
		}
		t.Fatalf("unexpected frame type %q while waiting for %q (message=%q)", frame.Type, wantType, frame.Message)
	}
	t.Fatalf("no %s frame received", wantType)
	return gatewayFrame{}
}

func configure(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	err := conn.WriteJSON(map[string]any{
		"type": "session.configure",
		"payload": map[string]any{
			"modelId": "gpt-realtime",
			"voiceId": "en-US-JennyNeural",
		},
	})
	if err != nil {
		t.Fatalf("send configure: %v", err)
	}
	readFrameOfType(t, conn, "session.ready")
}

func TestConfigureLifecycle(t *testing.T) {
	remote := newFakeRemote()
	conn := startGateway(t, testConfig(), remote)

	configure(t, conn)

	remote.mu.Lock()
	cfg := remote.openCfg
	remote.mu.Unlock()
	if cfg.ModelID != "gpt-realtime" || cfg.VoiceID != "en-US-JennyNeural" {
		t.Fatalf("remote opened with %+v", cfg)
	}
	if !cfg.EnableEOU {
		t.Fatal("EnableEOU should default to true")
	}

	// A second configure is a protocol error, not a reconfiguration.
	err := conn.WriteJSON(map[string]any{
		"type":    "session.configure",
		"payload": map[string]any{"modelId": "gpt-realtime", "voiceId": "alloy"},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	frame := readFrameOfType(t, conn, "session.error")
	if !strings.Contains(frame.Message, "already configured") {
		t.Fatalf("error message = %q", frame.Message)
	}
}

func TestAudioBeforeConfigure(t *testing.T) {
	remote := newFakeRemote()
	conn := startGateway(t, testConfig(), remote)

	if err := conn.WriteMessage(websocket.BinaryMessage, make([]byte, 3200)); err != nil {
		t.Fatalf("send: %v", err)
	}
	frame := readFrameOfType(t, conn, "session.error")
	if !strings.Contains(frame.Message, "not configured") {
		t.Fatalf("error message = %q", frame.Message)
	}
}

func TestModelNotAllowed(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedModels = []string{"gpt-4o"}
	remote := newFakeRemote()
	conn := startGateway(t, cfg, remote)

	err := conn.WriteJSON(map[string]any{
		"type":    "session.configure",
		"payload": map[string]any{"modelId": "gpt-realtime", "voiceId": "alloy"},
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	frame := readFrameOfType(t, conn, "session.error")
	if !strings.Contains(frame.Message, "model not allowed") {
		t.Fatalf("error message = %q", frame.Message)
	}
}

func TestResolveAvatar(t *testing.T) {
	cs := &ClientSession{ID: "deadbeef-test", config: testConfig()}

	tests := []struct {
		name     string
		avatarID string
		want     *voicelive.AvatarSelection
	}{
		{
			name:     "known id",
			avatarID: "meg-formal",
			want:     &voicelive.AvatarSelection{Character: "meg", Style: "formal"},
		},
		{
			name:     "empty id falls back to default",
			avatarID: "",
			want:     &voicelive.AvatarSelection{Character: "lisa", Style: "casual-sitting"},
		},
		{
			name:     "unknown id falls back to default",
			avatarID: "nobody",
			want:     &voicelive.AvatarSelection{Character: "lisa", Style: "casual-sitting"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cs.resolveAvatar(tt.avatarID)
			if got == nil || *got != *tt.want {
				t.Fatalf("resolveAvatar(%q) = %+v, want %+v", tt.avatarID, got, tt.want)
			}
		})
	}

	// No resolvable entry at all: the session stays audio/text only.
	noDefault := &ClientSession{ID: "deadbeef-test", config: &config.Config{AvatarDefaultCharacter: "ghost"}}
	if got := noDefault.resolveAvatar("nobody"); got != nil {
		t.Fatalf("resolveAvatar with no fallback = %+v, want nil", got)
	}
}

func TestOpenFailureClosesSession(t *testing.T) {
	remote := newFakeRemote()
	remote.openErr = errors.New("endpoint unreachable")
	conn := startGateway(t, testConfig(), remote)

	err := conn.WriteJSON(map[string]any{
		"type":    "session.configure",
		"payload": map[string]any{"modelId": "gpt-realtime", "voiceId": "alloy"},
	})
	if err != nil {
		t.Fatalf("send configure: %v", err)
	}

	// The gateway reports the failure and/or closes; it must not stay open
	// waiting for another configure.
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	if remote.closeCount() == 0 {
		t.Fatal("remote never closed after failed open")
	}
}

func TestAudioRelay(t *testing.T) {
	remote := newFakeRemote()
	conn := startGateway(t, testConfig(), remote)
	configure(t, conn)

	// Client to remote: binary frames pass through unmodified.
	chunk := bytes.Repeat([]byte{0x7f, 0x00}, 1600) // 3200 bytes, 100ms at 16kHz
	if err := conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
		t.Fatalf("send audio: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		chunks := remote.audioChunks()
		if len(chunks) == 1 {
			if !bytes.Equal(chunks[0], chunk) {
				t.Fatal("forwarded audio differs from sent audio")
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("audio never reached remote, got %d chunks", len(chunks))
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Remote to client: delta payload is decoded and emitted as one binary frame.
	pcm := bytes.Repeat([]byte{0x01, 0x02}, 800) // 1600 bytes
	remote.events <- voicelive.ServerEvent{
		Type:  voicelive.EventAudioDelta,
		Delta: base64.StdEncoding.EncodeToString(pcm),
	}

	frame := readFrame(t, conn)
	if frame.binary == nil {
		t.Fatalf("expected binary frame, got %q", frame.Type)
	}
	if !bytes.Equal(frame.binary, pcm) {
		t.Fatal("relayed audio differs from delta payload")
	}

	// Lifecycle events become session.event frames.
	remote.events <- voicelive.ServerEvent{Type: voicelive.EventSpeechStarted}
	evFrame := readFrameOfType(t, conn, "session.event")
	if evFrame.Event != "speech.started" {
		t.Fatalf("event = %q, want speech.started", evFrame.Event)
	}
}

func TestRelayedEventShapes(t *testing.T) {
	remote := newFakeRemote()
	conn := startGateway(t, testConfig(), remote)
	configure(t, conn)

	// session.updated carries the remote session id, with the avatar resource
	// only when the remote reported one.
	remote.events <- voicelive.ServerEvent{
		Type: voicelive.EventSessionUpdated,
		Session: &voicelive.SessionResource{
			ID:     "sess_123",
			Avatar: &voicelive.AvatarResource{Character: "lisa", Style: "casual-sitting"},
		},
	}
	frame := readFrameOfType(t, conn, "session.event")
	if frame.Event != "session.updated" {
		t.Fatalf("event = %q, want session.updated", frame.Event)
	}
	var updated map[string]json.RawMessage
	if err := json.Unmarshal(frame.Data, &updated); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if string(updated["sessionId"]) != `"sess_123"` {
		t.Fatalf("sessionId = %s, want sess_123", updated["sessionId"])
	}
	if _, ok := updated["avatar"]; !ok {
		t.Fatal("avatar missing from session.updated data")
	}

	// No avatar resource: the key is omitted rather than nulled.
	remote.events <- voicelive.ServerEvent{
		Type:    voicelive.EventSessionUpdated,
		Session: &voicelive.SessionResource{ID: "sess_456"},
	}
	frame = readFrameOfType(t, conn, "session.event")
	updated = nil
	if err := json.Unmarshal(frame.Data, &updated); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if _, ok := updated["avatar"]; ok {
		t.Fatal("avatar present in session.updated data without an avatar resource")
	}

	// avatar.offer nests the SDP under offer and lists ICE servers alongside.
	remote.events <- voicelive.ServerEvent{
		Type:      voicelive.EventAvatarOffer,
		ServerSDP: "v=0\r\noffer",
	}
	frame = readFrameOfType(t, conn, "session.event")
	if frame.Event != "avatar.offer" {
		t.Fatalf("event = %q, want avatar.offer", frame.Event)
	}
	var offer struct {
		Offer struct {
			SDP  string `json:"sdp"`
			Type string `json:"type"`
		} `json:"offer"`
	}
	if err := json.Unmarshal(frame.Data, &offer); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if offer.Offer.SDP != "v=0\r\noffer" || offer.Offer.Type != "offer" {
		t.Fatalf("offer data = %+v", offer)
	}
	var offerKeys map[string]json.RawMessage
	if err := json.Unmarshal(frame.Data, &offerKeys); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if _, ok := offerKeys["iceServers"]; !ok {
		t.Fatal("iceServers missing from avatar.offer data")
	}

	// avatar.ice_candidate uses WebRTC field names.
	mid := "0"
	var mline uint16 = 1
	remote.events <- voicelive.ServerEvent{
		Type:          voicelive.EventAvatarICE,
		Candidate:     "candidate:1 1 udp 2130706431 10.0.0.1 3478 typ host",
		SDPMid:        &mid,
		SDPMLineIndex: &mline,
	}
	frame = readFrameOfType(t, conn, "session.event")
	if frame.Event != "avatar.ice_candidate" {
		t.Fatalf("event = %q, want avatar.ice_candidate", frame.Event)
	}
	var candidate struct {
		Candidate     string  `json:"candidate"`
		SDPMid        *string `json:"sdpMid"`
		SDPMLineIndex *uint16 `json:"sdpMLineIndex"`
	}
	if err := json.Unmarshal(frame.Data, &candidate); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if !strings.HasPrefix(candidate.Candidate, "candidate:1") {
		t.Fatalf("candidate = %q", candidate.Candidate)
	}
	if candidate.SDPMid == nil || *candidate.SDPMid != "0" {
		t.Fatalf("sdpMid = %v, want 0", candidate.SDPMid)
	}
	if candidate.SDPMLineIndex == nil || *candidate.SDPMLineIndex != 1 {
		t.Fatalf("sdpMLineIndex = %v, want 1", candidate.SDPMLineIndex)
	}
}

func TestClientOfferProducesAnswer(t *testing.T) {
	remote := newFakeRemote()
	remote.answerSDP = "v=0\r\nanswer"
	conn := startGateway(t, testConfig(), remote)
	configure(t, conn)

	err := conn.WriteJSON(map[string]any{
		"type":    "avatar.client_offer",
		"payload": map[string]any{"offer": map[string]any{"sdp": "v=0\r\noffer"}},
	})
	if err != nil {
		t.Fatalf("send offer: %v", err)
	}

	frame := readFrameOfType(t, conn, "session.event")
	if frame.Event != "avatar.answer" {
		t.Fatalf("event = %q, want avatar.answer", frame.Event)
	}
	var data struct {
		SDP  string `json:"sdp"`
		Type string `json:"type"`
	}
	if err := json.Unmarshal(frame.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.SDP != remote.answerSDP || data.Type != "answer" {
		t.Fatalf("answer data = %+v", data)
	}
}

func TestAvatarTimeoutKeepsSessionUsable(t *testing.T) {
	remote := newFakeRemote()
	remote.answerErr = voicelive.ErrAvatarAnswerTimeout
	conn := startGateway(t, testConfig(), remote)
	configure(t, conn)

	err := conn.WriteJSON(map[string]any{
		"type":    "avatar.client_offer",
		"payload": map[string]any{"offer": map[string]any{"sdp": "v=0\r\noffer"}},
	})
	if err != nil {
		t.Fatalf("send offer: %v", err)
	}
	frame := readFrameOfType(t, conn, "session.error")
	if !strings.Contains(frame.Message, "avatar negotiation failed") {
		t.Fatalf("error message = %q", frame.Message)
	}

	// Audio still flows after the failed negotiation.
	remote.events <- voicelive.ServerEvent{Type: voicelive.EventSpeechStopped}
	evFrame := readFrameOfType(t, conn, "session.event")
	if evFrame.Event != "speech.stopped" {
		t.Fatalf("event = %q, want speech.stopped", evFrame.Event)
	}
}

func TestStopClosesRemoteOnce(t *testing.T) {
	remote := newFakeRemote()
	conn := startGateway(t, testConfig(), remote)
	configure(t, conn)

	if err := conn.WriteJSON(map[string]any{"type": "session.stop"}); err != nil {
		t.Fatalf("send stop: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for remote.closeCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("remote never closed")
		}
		time.Sleep(10 * time.Millisecond)
	}
	// Teardown must not double-close even with the server also cleaning up.
	time.Sleep(50 * time.Millisecond)
	if got := remote.closeCount(); got != 1 {
		t.Fatalf("remote closed %d times, want 1", got)
	}

	remote.mu.Lock()
	cancels := remote.cancels
	remote.mu.Unlock()
	if cancels != 1 {
		t.Fatalf("cancels = %d, want 1", cancels)
	}
}

func TestRemoteClosureEndsSession(t *testing.T) {
	remote := newFakeRemote()
	conn := startGateway(t, testConfig(), remote)
	configure(t, conn)

	remote.eventsOnce.Do(func() { close(remote.events) })

	frame := readFrameOfType(t, conn, "session.error")
	if !strings.Contains(frame.Message, "remote session closed") {
		t.Fatalf("error message = %q", frame.Message)
	}

	// The gateway then closes the client connection.
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
