package messages

import (
	"strings"
	"testing"
)

func TestParseClientMessage(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantType string
		wantErr  string
	}{
		{
			name:     "configure",
			data:     `{"type":"session.configure","payload":{"modelId":"gpt-realtime","voiceId":"alloy"}}`,
			wantType: TypeSessionConfigure,
		},
		{
			name:     "stop",
			data:     `{"type":"session.stop"}`,
			wantType: TypeSessionStop,
		},
		{
			name:     "avatar answer with top level fields",
			data:     `{"type":"avatar.answer","sdp":"v=0","descriptionType":"answer"}`,
			wantType: TypeAvatarAnswer,
		},
		{
			name:     "client offer",
			data:     `{"type":"avatar.client_offer","payload":{"offer":{"sdp":"v=0"}}}`,
			wantType: TypeAvatarClientOffer,
		},
		{
			name:    "missing type",
			data:    `{"payload":{}}`,
			wantErr: "missing type",
		},
		{
			name:    "unknown type",
			data:    `{"type":"session.bogus"}`,
			wantErr: "unknown message type",
		},
		{
			name:    "not json",
			data:    `{{{`,
			wantErr: "invalid message JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ParseClientMessage([]byte(tt.data))
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if msg.Type != tt.wantType {
				t.Fatalf("type = %q, want %q", msg.Type, tt.wantType)
			}
		})
	}
}

func TestConfigurePayload(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name: "full payload",
			data: `{"type":"session.configure","payload":{"modelId":"gpt-realtime","voiceId":"en-US-JennyNeural","instructions":"be brief","phraseList":["Kubernetes"],"semanticVad":"semantic_vad","enableEou":true,"avatarId":"lisa-casual-sitting"}}`,
		},
		{
			name:    "missing modelId",
			data:    `{"type":"session.configure","payload":{"voiceId":"alloy"}}`,
			wantErr: "failed validation",
		},
		{
			name:    "empty modelId",
			data:    `{"type":"session.configure","payload":{"modelId":"","voiceId":"alloy"}}`,
			wantErr: "failed validation",
		},
		{
			name:    "wrong phraseList type",
			data:    `{"type":"session.configure","payload":{"modelId":"gpt-realtime","voiceId":"alloy","phraseList":"oops"}}`,
			wantErr: "failed validation",
		},
		{
			name:    "missing payload",
			data:    `{"type":"session.configure"}`,
			wantErr: "missing payload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := ParseClientMessage([]byte(tt.data))
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			payload, err := msg.ConfigurePayload()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if payload.ModelID != "gpt-realtime" {
				t.Fatalf("modelId = %q", payload.ModelID)
			}
			if payload.EnableEOU == nil || !*payload.EnableEOU {
				t.Fatalf("enableEou not decoded: %v", payload.EnableEOU)
			}
		})
	}
}

func TestClientOfferPayload(t *testing.T) {
	msg, err := ParseClientMessage([]byte(`{"type":"avatar.client_offer","payload":{"offer":{"sdp":"v=0\r\no=- 1 1 IN IP4 0.0.0.0"}}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	payload, err := msg.ClientOfferPayload()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(payload.Offer.SDP, "v=0") {
		t.Fatalf("sdp = %q", payload.Offer.SDP)
	}

	msg, err = ParseClientMessage([]byte(`{"type":"avatar.client_offer","payload":{"offer":{"sdp":"  "}}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := msg.ClientOfferPayload(); err == nil {
		t.Fatal("expected error for blank offer sdp")
	}
}
