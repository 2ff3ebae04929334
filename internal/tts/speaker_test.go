package tts

import (
	"context"
	"sync"
	"testing"

	"azspeak/internal/audio"

	"github.com/gopxl/beep"
)

// fakeSpeaker 替换扬声器，同步消费全部采样
func fakeSpeaker(t *testing.T) *int {
	t.Helper()
	origInit, origPlay, origClear := initSpeaker, playStreamer, clearSpeaker
	speakerOnce, speakerErr = sync.Once{}, nil

	inits := 0
	initSpeaker = func(sr beep.SampleRate, bufferSize int) error {
		if sr != playbackRate {
			t.Errorf("speaker initialised at %d Hz, want %d", sr, playbackRate)
		}
		inits++
		return nil
	}
	playStreamer = func(streamers ...beep.Streamer) {
		buf := make([][2]float64, 512)
		for _, s := range streamers {
			for {
				if _, ok := s.Stream(buf); !ok {
					break
				}
			}
		}
	}
	clearSpeaker = func() {}

	t.Cleanup(func() {
		initSpeaker, playStreamer, clearSpeaker = origInit, origPlay, origClear
		speakerOnce, speakerErr = sync.Once{}, nil
	})
	return &inits
}

func TestPlayInitialisesSpeakerOnce(t *testing.T) {
	inits := fakeSpeaker(t)

	tests := []struct {
		format audio.Format
		data   []byte
	}{
		{audio.Raw16Khz16BitMonoPcm, pcm(1, 2, 3, 4)},
		{audio.Raw24Khz16BitMonoPcm, pcm(5, 6)},
		{audio.Raw48Khz16BitMonoPcm, pcm(7, 8)},
	}
	for _, tt := range tests {
		// 每次新建 Player，扬声器仍然只初始化一次
		if err := NewPlayer().Play(context.Background(), tt.data, tt.format); err != nil {
			t.Fatalf("Play(%s) error = %v", tt.format, err)
		}
	}
	if *inits != 1 {
		t.Fatalf("speaker initialised %d times, want 1", *inits)
	}
}

func TestResampled(t *testing.T) {
	s := NewPCMStreamer(pcm(1, 2), playbackRate, 1)
	if got := resampled(s, s.Format()); got != beep.Streamer(s) {
		t.Fatalf("matching sample rate must not be resampled, got %T", got)
	}

	s = NewPCMStreamer(pcm(1, 2), beep.SampleRate(16000), 1)
	if _, ok := resampled(s, s.Format()).(*beep.Resampler); !ok {
		t.Fatal("16 kHz audio must be resampled")
	}
}
