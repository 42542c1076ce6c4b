// Command probe is a manual test client for the gateway. It connects,
// configures a session, streams a PCM file at real-time pace and plays the
// returned audio through sox.
package main

import (
	"encoding/json"
	"flag"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type clientMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type serverMessage struct {
	Type    string          `json:"type"`
	Message string          `json:"message,omitempty"`
	Event   string          `json:"event,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// AudioPlayer streams audio via sox
type AudioPlayer struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	mu     sync.Mutex
	closed bool
}

func NewAudioPlayer() *AudioPlayer {
	cmd := exec.Command("sox",
		"-t", "raw",
		"-r", "24000",
		"-b", "16",
		"-c", "1",
		"-e", "signed-integer",
		"-",
		"-d",
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		log.Println("sox stdin error:", err)
		return nil
	}

	if err := cmd.Start(); err != nil {
		log.Println("sox start error:", err)
		return nil
	}

	return &AudioPlayer{cmd: cmd, stdin: stdin}
}

func (p *AudioPlayer) Play(audioData []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.stdin == nil {
		return
	}
	p.stdin.Write(audioData)
}

func (p *AudioPlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	if p.stdin != nil {
		p.stdin.Close()
	}
	if p.cmd != nil && p.cmd.Process != nil {
		p.cmd.Wait()
	}
}

func main() {
	serverURL := flag.String("server", "ws://localhost:8080/ws", "Gateway WebSocket URL")
	apiKey := flag.String("api-key", "", "Application API key")
	audioFile := flag.String("file", "examples/user.pcm", "Audio file to send (PCM or WAV)")
	modelID := flag.String("model", "gpt-realtime", "Model to request")
	voiceID := flag.String("voice", "en-US-JennyNeural", "Voice to request")
	instructions := flag.String("instructions", "You are a helpful assistant. Keep answers short.", "System instructions")
	flag.Parse()

	url := *serverURL
	if *apiKey != "" {
		sep := "?"
		if strings.Contains(url, "?") {
			sep = "&"
		}
		url += sep + "api_key=" + *apiKey
	}

	log.Printf("🔌 Connecting to %s...", *serverURL)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close()

	log.Println("✅ Connected!")

	player := NewAudioPlayer()
	if player == nil {
		log.Fatal("Failed to create audio player (is sox installed?)")
	}
	defer player.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	ready := make(chan struct{})
	done := make(chan struct{})

	// Read responses from the gateway
	go func() {
		defer close(done)
		var readyOnce sync.Once
		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}

			// Binary frames are raw PCM from the assistant
			if messageType == websocket.BinaryMessage {
				log.Printf("🔊 Playing audio: %d bytes", len(message))
				player.Play(message)
				continue
			}

			var msg serverMessage
			if err := json.Unmarshal(message, &msg); err != nil {
				log.Println("Parse error:", err)
				continue
			}

			switch msg.Type {
			case "session.ready":
				log.Println("📊 Session ready")
				readyOnce.Do(func() { close(ready) })

			case "session.log":
				log.Printf("📊 %s", msg.Message)

			case "session.event":
				log.Printf("📨 Event: %s %s", msg.Event, string(msg.Data))
				if msg.Event == "response.done" {
					log.Println("--- Turn complete ---")
				}

			case "session.error":
				log.Printf("❌ Error: %s", msg.Message)
			}
		}
	}()

	// Configure the session
	configure := clientMessage{
		Type: "session.configure",
		Payload: map[string]any{
			"modelId":      *modelID,
			"voiceId":      *voiceID,
			"instructions": *instructions,
		},
	}
	if err := conn.WriteJSON(configure); err != nil {
		log.Fatalf("Failed to send configure: %v", err)
	}

	select {
	case <-ready:
	case <-done:
		log.Fatal("Connection closed before session became ready")
	case <-time.After(15 * time.Second):
		log.Fatal("⏰ Timeout waiting for session.ready")
	}

	log.Printf("📤 Sending audio file: %s", *audioFile)

	audioData, err := loadAudioFile(*audioFile)
	if err != nil {
		log.Fatalf("Failed to load audio: %v", err)
	}

	// Send audio in chunks (simulating real-time streaming)
	chunkSize := 3200 // 100ms at 16kHz
	for i := 0; i < len(audioData); i += chunkSize {
		end := i + chunkSize
		if end > len(audioData) {
			end = len(audioData)
		}
		chunk := audioData[i:end]

		if err := conn.WriteMessage(websocket.BinaryMessage, chunk); err != nil {
			log.Printf("Send error: %v", err)
			break
		}

		time.Sleep(100 * time.Millisecond)
	}

	log.Println("✅ Audio sent, waiting for response...")

	select {
	case <-done:
		log.Println("Connection closed")
	case <-interrupt:
		log.Println("\n👋 Interrupted, closing...")
		conn.WriteJSON(clientMessage{Type: "session.stop"})
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	case <-time.After(60 * time.Second):
		log.Println("⏰ Timeout waiting for response")
	}
}

// loadAudioFile loads PCM or WAV file and returns raw PCM bytes
func loadAudioFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Check if it's a WAV file (starts with "RIFF")
	if len(data) > 44 && string(data[0:4]) == "RIFF" {
		// Skip WAV header (44 bytes for standard WAV)
		log.Println("📁 Detected WAV file, skipping header")
		return data[44:], nil
	}

	// Assume raw PCM
	log.Println("📁 Detected raw PCM file")
	return data, nil
}
