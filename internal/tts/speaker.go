package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"azspeak/internal/audio"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
	"github.com/sirupsen/logrus"
)

// ErrUnsupportedPlayback 该格式无法本地播放（opus/amr/silk/alaw/mulaw）
var ErrUnsupportedPlayback = errors.New("tts: playback not supported for this format")

// playbackRate 扬声器只能初始化一次，所有音频重采样到这个采样率
const playbackRate = beep.SampleRate(48000)

var (
	speakerOnce sync.Once
	speakerErr  error

	// 测试中替换，避免打开真实的音频设备
	initSpeaker  = speaker.Init
	playStreamer = speaker.Play
	clearSpeaker = speaker.Clear
)

// Player 播放合成好的完整音频，多个 Player 共享同一个扬声器
type Player struct{}

func NewPlayer() *Player {
	return &Player{}
}

// Decode 把合成结果解码为 beep.Streamer
func Decode(data []byte, format audio.Format) (beep.Streamer, beep.Format, error) {
	switch {
	case format.IsRIFF():
		s, f, err := wav.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("tts: decode wav: %w", err)
		}
		return s, f, nil
	case format.IsMP3():
		s, f, err := mp3.Decode(io.NopCloser(bytes.NewReader(data)))
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("tts: decode mp3: %w", err)
		}
		return s, f, nil
	case format.IsRawPCM():
		codec := format.Codec()
		s := NewPCMStreamer(data, beep.SampleRate(codec.SampleRate), codec.Channels)
		return s, s.Format(), nil
	default:
		return nil, beep.Format{}, fmt.Errorf("%w: %s", ErrUnsupportedPlayback, format)
	}
}

// Play 阻塞直到播放结束或 ctx 被取消
func (p *Player) Play(ctx context.Context, data []byte, format audio.Format) error {
	streamer, f, err := Decode(data, format)
	if err != nil {
		return err
	}
	if c, ok := streamer.(io.Closer); ok {
		defer c.Close()
	}

	if err := openSpeaker(); err != nil {
		return err
	}

	done := make(chan struct{})
	playStreamer(beep.Seq(resampled(streamer, f), beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		logrus.Debug("speaker: playback finished")
		return nil
	case <-ctx.Done():
		clearSpeaker()
		return ctx.Err()
	}
}

func openSpeaker() error {
	speakerOnce.Do(func() {
		if err := initSpeaker(playbackRate, playbackRate.N(time.Second/10)); err != nil {
			speakerErr = fmt.Errorf("tts: init speaker: %w", err)
		}
	})
	return speakerErr
}

func resampled(s beep.Streamer, f beep.Format) beep.Streamer {
	if f.SampleRate == playbackRate {
		return s
	}
	logrus.Debugf("speaker: resampling %d Hz to %d Hz", f.SampleRate, playbackRate)
	return beep.Resample(4, f.SampleRate, playbackRate, s)
}
