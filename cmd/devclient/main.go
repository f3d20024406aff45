// Command devclient is a local microphone/speaker client for a running
// cmd/server: it captures audio with gen2brain/malgo, frames it as
// InboundAudioFrames per §6.1, and speaks the wire protocol over
// coder/websocket instead of driving the orchestrator in-process (the
// way the original single-process voice agent did).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/gen2brain/malgo"

	"github.com/chicogong/realtime-duplex/pkg/wire"
)

const (
	SampleRate = 16000
	Channels   = 1
)

func main() {
	serverURL := flag.String("server", "ws://localhost:8080/ws", "cmd/server WebSocket URL")
	flag.Parse()

	u, err := url.Parse(*serverURL)
	if err != nil {
		log.Fatalf("invalid -server URL: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, _, err := websocket.Dial(ctx, u.String(), nil)
	if err != nil {
		log.Fatalf("connect to %s: %v", u.String(), err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "client exiting")

	client := newClient(conn)
	if err := client.sendCommand(ctx, wire.CommandStart); err != nil {
		log.Fatalf("send start command: %v", err)
	}

	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer mctx.Uninit()

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Duplex)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = Channels
	deviceConfig.Playback.Format = malgo.FormatS16
	deviceConfig.Playback.Channels = Channels
	deviceConfig.SampleRate = SampleRate
	deviceConfig.Alsa.NoMMap = 1 // better compatibility on some systems

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: client.onSamples(ctx),
	})
	if err != nil {
		log.Fatal(err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		log.Fatal(err)
	}

	go client.readLoop(ctx)
	go client.meter()

	fmt.Printf("Connected to %s\n", u.String())
	fmt.Println("Voice client started! Listening to microphone...")
	fmt.Println("Press Ctrl+C to exit")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	fmt.Println("\nShutting down...")
	_ = client.sendCommand(ctx, wire.CommandStop)
}

// client owns the one WebSocket connection's read/write halves plus the
// playback buffer malgo drains from on each output callback.
type client struct {
	conn *websocket.Conn

	playbackMu    sync.Mutex
	playbackBytes []byte

	rmsMu   sync.Mutex
	lastRMS float64

	firstChunkSent bool
}

func newClient(conn *websocket.Conn) *client {
	return &client{conn: conn}
}

func (c *client) sendCommand(ctx context.Context, cmd wire.Command) error {
	data, err := json.Marshal(wire.ClientMessage{Command: cmd})
	if err != nil {
		return err
	}
	return c.conn.Write(ctx, websocket.MessageText, data)
}

// onSamples is malgo's full-duplex callback: pInput holds captured mic
// audio, pOutput is where playback audio must be written.
func (c *client) onSamples(ctx context.Context) func(pOutput, pInput []byte, frameCount uint32) {
	return func(pOutput, pInput []byte, frameCount uint32) {
		if pInput != nil {
			c.sendAudioFrame(ctx, pInput)
		}
		if pOutput != nil {
			c.playbackMu.Lock()
			n := copy(pOutput, c.playbackBytes)
			c.playbackBytes = c.playbackBytes[n:]
			c.playbackMu.Unlock()
			for i := n; i < len(pOutput); i++ {
				pOutput[i] = 0
			}
		}
	}
}

// meter prints a crude mic-level bar every 100ms, the way the original
// single-process agent did.
func (c *client) meter() {
	for {
		c.rmsMu.Lock()
		level := c.lastRMS
		c.rmsMu.Unlock()

		meter := ""
		dots := int(level * 500)
		if dots > 40 {
			dots = 40
		}
		for i := 0; i < dots; i++ {
			meter += "|"
		}
		fmt.Printf("\r[MIC ENERGY: %-40s] RMS: %.5f", meter, level)
		time.Sleep(100 * time.Millisecond)
	}
}

func (c *client) sendAudioFrame(ctx context.Context, pcm []byte) {
	rms := rms16(pcm)
	c.rmsMu.Lock()
	c.lastRMS = rms
	c.rmsMu.Unlock()

	energy := uint8(math.Min(rms*255*4, 255))
	frame := wire.InboundAudioFrame{
		TimestampMS: uint32(time.Now().UnixMilli()),
		Energy:      energy,
		SilenceHint: energy < 2,
		FirstChunk:  !c.firstChunkSent,
		PCM:         pcm,
	}
	c.firstChunkSent = true

	encoded, err := wire.EncodeInboundAudioFrame(frame)
	if err != nil {
		return
	}
	_ = c.conn.Write(ctx, websocket.MessageBinary, encoded)
}

// rms16 computes RMS over a little-endian int16 PCM buffer, scaled to 0..1.
func rms16(pcm []byte) float64 {
	if len(pcm) < 2 {
		return 0
	}
	var sum float64
	n := len(pcm) / 2
	for i := 0; i < n; i++ {
		sample := int16(pcm[i*2]) | int16(pcm[i*2+1])<<8
		f := float64(sample) / 32768.0
		sum += f * f
	}
	return math.Sqrt(sum / float64(n))
}

func (c *client) readLoop(ctx context.Context) {
	for {
		msgType, data, err := c.conn.Read(ctx)
		if err != nil {
			fmt.Printf("\r\033[Kconnection closed: %v\n", err)
			return
		}
		switch msgType {
		case websocket.MessageBinary:
			c.playbackMu.Lock()
			c.playbackBytes = append(c.playbackBytes, data...)
			c.playbackMu.Unlock()
		case websocket.MessageText:
			c.handleFrame(data)
		}
	}
}

func (c *client) handleFrame(data []byte) {
	frame, err := wire.DecodeFrame(data)
	if err != nil {
		fmt.Printf("\r\033[Kmalformed frame: %v\n", err)
		return
	}
	switch frame.Type {
	case wire.FrameStatus:
		if frame.Status == wire.StatusListening {
			fmt.Printf("\r\033[K🎤 [USER] Speaking...\n")
		}
	case wire.FramePartialTranscript:
		fmt.Printf("\r\033[K... %s\n", frame.Content)
	case wire.FrameFinalTranscript:
		fmt.Printf("\r\033[K📝 [TRANSCRIPT] %s\n", frame.Content)
	case wire.FrameLLMStatus:
		fmt.Printf("\r\033[K🧠 [LLM] Thinking...\n")
	case wire.FrameLLMResponse:
		fmt.Printf("\r\033[K💬 [LLM] %s\n", frame.Content)
	case wire.FrameTTSStart:
		fmt.Printf("\r\033[K🔊 [TTS] Speaking...\n")
	case wire.FrameTTSEnd:
		// nothing to print, next status/transcript frame carries the cue
	case wire.FrameTTSStop:
		fmt.Printf("\r\033[K🛑 [INTERRUPTED] User started talking.\n")
		c.playbackMu.Lock()
		c.playbackBytes = nil
		c.playbackMu.Unlock()
	case wire.FrameInterruptAcknowledged, wire.FrameStopAcknowledged:
		// acknowledgements are silent; TTSStop already printed the cue
	case wire.FrameError:
		fmt.Printf("\r\033[K❌ [ERROR] %s\n", frame.Message)
	}
}
