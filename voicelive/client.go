package voicelive

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	maxMessageSize = 10 * 1024 * 1024
	pingPeriod     = 20 * time.Second
	dialTimeout    = 30 * time.Second

	defaultAvatarAnswerTimeout = 60 * time.Second
)

// Options configures a Voice Live client.
type Options struct {
	// Endpoint is the resource endpoint, e.g. https://myresource.cognitiveservices.azure.com
	Endpoint   string
	APIVersion string
	Model      string
	AgentID    string

	// APIKey authenticates with a subscription key. When empty, the Entra ID
	// triple below is used instead.
	APIKey       string
	TenantID     string
	ClientID     string
	ClientSecret string

	// AvatarAnswerTimeout bounds RequestAvatarAnswer. Zero means the default
	// of one minute.
	AvatarAnswerTimeout time.Duration

	// KeepAlivePeriod is the ping interval on the upstream connection. Zero
	// means the default of twenty seconds.
	KeepAlivePeriod time.Duration
}

// Client is a single-shot connection to the Voice Live realtime endpoint.
// Open once, consume Events until it closes, then discard the client.
type Client struct {
	opts Options
	caps Capabilities

	conn   *websocket.Conn
	sendMu sync.Mutex

	events        chan ServerEvent
	avatarAnswers chan AvatarAnswerEvent

	cred credential
	// stop is closed by Close. It ends the ping loop and unblocks the read
	// loop if nobody is draining events.
	stop chan struct{}

	mu     sync.Mutex
	opened bool
	closed bool
}

// NewClient creates an unopened client.
func NewClient(opts Options) *Client {
	if opts.AvatarAnswerTimeout <= 0 {
		opts.AvatarAnswerTimeout = defaultAvatarAnswerTimeout
	}
	if opts.KeepAlivePeriod <= 0 {
		opts.KeepAlivePeriod = pingPeriod
	}
	return &Client{
		opts:          opts,
		caps:          capabilitiesFor(opts.APIVersion),
		events:        make(chan ServerEvent, 64),
		avatarAnswers: make(chan AvatarAnswerEvent, 1),
		stop:          make(chan struct{}),
	}
}

// Open dials the realtime endpoint, authenticates and sends the initial
// session.update derived from cfg. It can be called at most once.
func (c *Client) Open(ctx context.Context, cfg SessionConfig) error {
	c.mu.Lock()
	if c.opened {
		c.mu.Unlock()
		return ErrAlreadyOpen
	}
	c.opened = true
	c.mu.Unlock()

	wsURL, err := c.buildURL(cfg)
	if err != nil {
		return &ConnectError{Cause: err}
	}

	cred, err := c.buildCredential()
	if err != nil {
		return &ConnectError{Cause: err}
	}

	header := http.Header{}
	if err := cred.authorize(ctx, header); err != nil {
		cred.close()
		return &ConnectError{Cause: err}
	}

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, _, err := dialer.DialContext(ctx, wsURL, header)
	if err != nil {
		cred.close()
		return &ConnectError{Cause: err}
	}
	conn.SetReadLimit(maxMessageSize)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		cred.close()
		conn.Close()
		return ErrNotConnected
	}
	c.conn = conn
	c.cred = cred
	c.mu.Unlock()

	if err := c.sendSessionUpdate(cfg); err != nil {
		c.Close()
		return &ConnectError{Cause: err}
	}

	go c.readLoop()
	go c.pingLoop()
	return nil
}

// buildURL converts the HTTPS endpoint into the realtime WebSocket URL.
func (c *Client) buildURL(cfg SessionConfig) (string, error) {
	base, err := url.Parse(strings.TrimRight(c.opts.Endpoint, "/"))
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	switch base.Scheme {
	case "https", "wss":
		base.Scheme = "wss"
	case "http", "ws":
		base.Scheme = "ws"
	default:
		return "", fmt.Errorf("unsupported endpoint scheme %q", base.Scheme)
	}
	base.Path += "/voice-live/realtime"

	query := url.Values{}
	query.Set("api-version", c.opts.APIVersion)
	agentID := cfg.AgentID
	if agentID == "" {
		agentID = c.opts.AgentID
	}
	if agentID != "" {
		query.Set("agent_id", agentID)
	} else {
		model := cfg.ModelID
		if model == "" {
			model = c.opts.Model
		}
		query.Set("model", model)
	}
	base.RawQuery = query.Encode()
	return base.String(), nil
}

func (c *Client) buildCredential() (credential, error) {
	if c.opts.APIKey != "" {
		return &apiKeyCredential{key: c.opts.APIKey}, nil
	}
	if c.opts.TenantID != "" && c.opts.ClientID != "" && c.opts.ClientSecret != "" {
		return newTokenCredential(c.opts.TenantID, c.opts.ClientID, c.opts.ClientSecret), nil
	}
	return nil, fmt.Errorf("no credential configured")
}

// sendSessionUpdate pushes the session configuration. Fields the negotiated
// api version does not understand are skipped with a log line.
func (c *Client) sendSessionUpdate(cfg SessionConfig) error {
	modalities := []string{"text", "audio"}
	if cfg.Avatar != nil && c.caps.Avatar {
		modalities = append(modalities, "avatar")
	}
	session := map[string]any{
		"modalities":          modalities,
		"input_audio_format":  "pcm16",
		"output_audio_format": "pcm16",
		"voice":               resolveVoice(cfg.VoiceID),
	}
	if cfg.Instructions != "" {
		session["instructions"] = cfg.Instructions
	}
	if td := resolveTurnDetection(cfg); td != nil {
		session["turn_detection"] = td
	}
	if cfg.Language != "" {
		if c.caps.Language {
			session["input_audio_transcription"] = map[string]any{
				"model":    "azure-speech",
				"language": cfg.Language,
			}
		} else {
			log.Printf("⚠️ api version %s does not support language hints, skipping", c.opts.APIVersion)
		}
	}
	if phrases := NormalizePhraseList(cfg.PhraseList); len(phrases) > 0 {
		if c.caps.PhraseList {
			session["input_audio_transcription_phrase_list"] = phrases
		} else {
			log.Printf("⚠️ api version %s does not support phrase lists, skipping", c.opts.APIVersion)
		}
	}
	if cfg.CustomSpeechEndpoint != "" {
		session["input_audio_transcription_custom_speech_endpoint"] = cfg.CustomSpeechEndpoint
	}
	if cfg.Avatar != nil {
		if c.caps.Avatar {
			avatar := map[string]any{"character": cfg.Avatar.Character}
			if cfg.Avatar.Style != "" {
				avatar["style"] = cfg.Avatar.Style
			}
			session["avatar"] = avatar
		} else {
			log.Printf("⚠️ api version %s does not support avatars, skipping", c.opts.APIVersion)
		}
	}

	return c.send(map[string]any{
		"type":     "session.update",
		"event_id": newEventID(),
		"session":  session,
	})
}

// send serializes v and writes it as one text frame. All writers funnel
// through here; gorilla connections allow only one concurrent writer.
func (c *Client) send(v any) error {
	c.mu.Lock()
	conn := c.conn
	closed := c.closed
	c.mu.Unlock()
	if conn == nil || closed {
		return ErrNotConnected
	}

	data, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}

	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Events returns the channel of remote events. The channel closes when the
// connection drops or Close is called.
func (c *Client) Events() (<-chan ServerEvent, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.opened || c.conn == nil {
		return nil, ErrNotConnected
	}
	return c.events, nil
}

// SendAudioChunk forwards one chunk of PCM16 audio. Empty chunks are ignored.
func (c *Client) SendAudioChunk(chunk []byte) error {
	if len(chunk) == 0 {
		return nil
	}
	return c.send(map[string]any{
		"type":  "input_audio_buffer.append",
		"audio": base64.StdEncoding.EncodeToString(chunk),
	})
}

// CancelResponse interrupts any in-flight response. Best effort; a failure
// only means there was nothing to cancel or the connection is already gone.
func (c *Client) CancelResponse() {
	if err := c.send(map[string]any{"type": "response.cancel"}); err != nil {
		log.Printf("⚠️ cancel response: %v", err)
	}
}

// RequestAvatarAnswer performs the avatar SDP exchange: it submits the
// client's offer and blocks until the service produces an answer, the timeout
// elapses or ctx is cancelled.
func (c *Client) RequestAvatarAnswer(ctx context.Context, offerSDP string) (string, error) {
	encoded, err := EncodeClientSDP(offerSDP)
	if err != nil {
		return "", fmt.Errorf("encode client sdp: %w", err)
	}

	// Drop any stale answer from a previous negotiation.
	select {
	case <-c.avatarAnswers:
	default:
	}

	err = c.send(map[string]any{
		"type":       "session.avatar.connect",
		"event_id":   newEventID(),
		"client_sdp": encoded,
		"rtc_configuration": map[string]any{
			"bundle_policy": "max-bundle",
		},
	})
	if err != nil {
		return "", err
	}

	timer := time.NewTimer(c.opts.AvatarAnswerTimeout)
	defer timer.Stop()
	select {
	case answer := <-c.avatarAnswers:
		return answer.SDP, nil
	case <-timer.C:
		return "", ErrAvatarAnswerTimeout
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// SendAvatarAnswer forwards the client's SDP answer for a service-initiated
// offer.
func (c *Client) SendAvatarAnswer(sdp, descriptionType string) error {
	if descriptionType == "" {
		descriptionType = "answer"
	}
	payload, err := sonic.Marshal(sdpEnvelope{Type: descriptionType, SDP: sdp})
	if err != nil {
		return fmt.Errorf("encode answer sdp: %w", err)
	}
	return c.send(map[string]any{
		"type":       "session.avatar.answer",
		"event_id":   newEventID(),
		"client_sdp": base64.StdEncoding.EncodeToString(payload),
	})
}

// readLoop decodes incoming frames. Avatar answers are routed to the
// rendezvous channel; everything else goes to the events channel for the
// relay to translate.
func (c *Client) readLoop() {
	defer func() {
		close(c.events)
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("❌ voice live read: %v", err)
			}
			return
		}

		var event ServerEvent
		if err := sonic.Unmarshal(data, &event); err != nil {
			log.Printf("⚠️ undecodable voice live frame: %v", err)
			continue
		}

		switch event.Type {
		case EventAvatarConnecting:
			sdp := event.ServerSDP
			if sdp == "" && event.Session != nil && event.Session.Avatar != nil {
				sdp = event.Session.Avatar.SDPOffer
			}
			deliverAvatarAnswer(c.avatarAnswers, AvatarAnswerEvent{
				SDP:             DecodeServerSDP(sdp),
				DescriptionType: "answer",
			})
		case EventAvatarAnswer:
			sdp := event.ServerSDP
			if sdp == "" {
				sdp = event.SDP
			}
			deliverAvatarAnswer(c.avatarAnswers, AvatarAnswerEvent{
				SDP:             DecodeServerSDP(sdp),
				DescriptionType: "answer",
			})
		default:
			select {
			case c.events <- event:
			case <-c.stop:
				return
			}
		}
	}
}

// pingLoop keeps the connection alive across idle stretches.
func (c *Client) pingLoop() {
	ticker := time.NewTicker(c.opts.KeepAlivePeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sendMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
			c.sendMu.Unlock()
			if err != nil {
				return
			}
		case <-c.stop:
			return
		}
	}
}

// Close tears the connection down. Safe to call multiple times and
// concurrently with in-flight operations.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	conn := c.conn
	cred := c.cred
	c.mu.Unlock()

	close(c.stop)

	// The connection goes down first; the credential is only released once
	// nothing can authorize with it anymore.
	var err error
	if conn != nil {
		c.sendMu.Lock()
		deadline := time.Now().Add(time.Second)
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
		c.sendMu.Unlock()
		err = conn.Close()
	}

	if cred != nil {
		cred.close()
	}
	return err
}

func newEventID() string {
	return "evt_" + uuid.NewString()
}
