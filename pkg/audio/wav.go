package audio

import (
	"encoding/binary"
	"io"

	audiopkg "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// NewWavBuffer wraps raw 16-bit PCM in a WAV container using go-audio/wav's
// encoder, for adapters (GroqSTT, OpenAI Whisper) whose HTTP API expects a
// file upload rather than a raw stream.
func NewWavBuffer(pcm []byte, sampleRate int) []byte {
	sink := &seekBuffer{}
	enc := wav.NewEncoder(sink, sampleRate, 16, 1, 1)

	intBuf := &audiopkg.IntBuffer{
		Format: &audiopkg.Format{SampleRate: sampleRate, NumChannels: 1},
		Data:   pcm16ToInt(pcm),
	}
	if err := enc.Write(intBuf); err != nil {
		return nil
	}
	if err := enc.Close(); err != nil {
		return nil
	}
	return sink.data
}

func pcm16ToInt(pcm []byte) []int {
	n := len(pcm) / 2
	out := make([]int, n)
	for i := 0; i < n; i++ {
		out[i] = int(int16(binary.LittleEndian.Uint16(pcm[2*i : 2*i+2])))
	}
	return out
}

// seekBuffer is a growable in-memory io.WriteSeeker: wav.Encoder.Close seeks
// back to the start to patch the RIFF/data chunk sizes once the final
// length is known, which bytes.Buffer alone can't support.
type seekBuffer struct {
	data []byte
	pos  int
}

func (s *seekBuffer) Write(p []byte) (int, error) {
	end := s.pos + len(p)
	if end > len(s.data) {
		grown := make([]byte, end)
		copy(grown, s.data)
		s.data = grown
	}
	copy(s.data[s.pos:end], p)
	s.pos = end
	return len(p), nil
}

func (s *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var base int
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = s.pos
	case io.SeekEnd:
		base = len(s.data)
	}
	s.pos = base + int(offset)
	return int64(s.pos), nil
}
