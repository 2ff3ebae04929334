package tts

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"azspeak/internal/audio"

	"github.com/gopxl/beep"
)

func pcm(values ...int16) []byte {
	b := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(b[2*i:], uint16(v))
	}
	return b
}

func TestStreamerMono(t *testing.T) {
	s := NewPCMStreamer(pcm(0, 16384, -32768), beep.SampleRate(24000), 1)

	samples := make([][2]float64, 8)
	n, ok := s.Stream(samples)
	if !ok || n != 3 {
		t.Fatalf("unexpected stream result n=%d ok=%v", n, ok)
	}
	want := []float64{0, 0.5, -1}
	for i, w := range want {
		if math.Abs(samples[i][0]-w) > 1e-9 || samples[i][0] != samples[i][1] {
			t.Fatalf("sample %d: got=%v want=%v", i, samples[i], w)
		}
	}

	if n, ok := s.Stream(samples); ok || n != 0 {
		t.Fatalf("expected end of stream, got n=%d ok=%v", n, ok)
	}
	if s.Err() != nil {
		t.Fatalf("closed stream should not report an error: %v", s.Err())
	}
}

func TestStreamerStereoAndPartialSamples(t *testing.T) {
	s := NewStreamer(beep.SampleRate(16000), 2)
	// 一个完整的立体声采样加半个
	s.AppendAudio(pcm(16384, -16384, 100))

	samples := make([][2]float64, 4)
	n, ok := s.Stream(samples)
	if !ok || n != 1 {
		t.Fatalf("unexpected stream result n=%d ok=%v", n, ok)
	}
	if samples[0][0] != 0.5 || samples[0][1] != -0.5 {
		t.Fatalf("unexpected stereo sample %v", samples[0])
	}

	// 还没 Close，数据不足时继续轮询
	if n, ok := s.Stream(samples); !ok || n != 0 {
		t.Fatalf("expected (0, true) while waiting, got n=%d ok=%v", n, ok)
	}

	s.Close()
	if _, ok := s.Stream(samples); ok {
		t.Fatalf("expected end of stream after close")
	}
	if s.Err() != nil {
		t.Fatalf("closed stream must not report an error, got %v", s.Err())
	}
	s.AppendAudio(pcm(5, 6))
	if _, ok := s.Stream(samples); ok {
		t.Fatalf("audio appended after close must be dropped")
	}
}

func TestDecodeUnsupportedFormat(t *testing.T) {
	_, _, err := Decode([]byte{1, 2, 3}, audio.Ogg24Khz16BitMonoOpus)
	if !errors.Is(err, ErrUnsupportedPlayback) {
		t.Fatalf("expected ErrUnsupportedPlayback, got %v", err)
	}
}

func TestDecodeRawPCM(t *testing.T) {
	s, f, err := Decode(pcm(1, 2), audio.Raw16Khz16BitMonoPcm)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.SampleRate != 16000 || f.NumChannels != 1 {
		t.Fatalf("unexpected format %+v", f)
	}
	n, _ := s.Stream(make([][2]float64, 4))
	if n != 2 {
		t.Fatalf("unexpected samples %d", n)
	}
}
