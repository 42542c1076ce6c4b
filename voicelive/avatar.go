package voicelive

import (
	"encoding/base64"
	"strings"

	"github.com/bytedance/sonic"
)

// sdpEnvelope is the JSON wrapper the service expects around a client SDP
// offer, and one of the shapes it may use for the answer.
type sdpEnvelope struct {
	Type string `json:"type"`
	SDP  string `json:"sdp"`
}

// EncodeClientSDP wraps a raw SDP offer in its JSON envelope and base64
// encodes it for the session.avatar.connect call.
func EncodeClientSDP(offerSDP string) (string, error) {
	payload, err := sonic.Marshal(sdpEnvelope{Type: "offer", SDP: offerSDP})
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(payload), nil
}

// DecodeServerSDP extracts the raw SDP answer from whatever shape the service
// sent. Observed variants: raw SDP text, base64 of raw SDP, and base64 of a
// JSON envelope. Raw SDP is returned byte for byte; the line endings matter
// to WebRTC stacks. Anything undecodable is also passed through unchanged so
// the browser gets a chance to reject it with a real error.
func DecodeServerSDP(serverSDP string) string {
	trimmed := strings.TrimSpace(serverSDP)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "v=0") {
		return serverSDP
	}

	decoded, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		return serverSDP
	}

	var envelope sdpEnvelope
	if err := sonic.Unmarshal(decoded, &envelope); err == nil && envelope.SDP != "" {
		return envelope.SDP
	}
	return string(decoded)
}

// deliverAvatarAnswer hands an answer to the rendezvous channel. The channel
// has capacity one; if a stale answer is already queued it is replaced so a
// renegotiation always observes the latest answer.
func deliverAvatarAnswer(ch chan AvatarAnswerEvent, answer AvatarAnswerEvent) {
	for {
		select {
		case ch <- answer:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}
