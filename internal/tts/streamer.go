package tts

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"sync"

	"github.com/gopxl/beep"
	"github.com/sirupsen/logrus"
)

// Streamer 把 16bit 小端 PCM 转成 beep.Streamer
type Streamer struct {
	format beep.Format

	buf *bytes.Buffer
	mu  sync.Mutex

	err error
	eos bool
}

func NewStreamer(sampleRate beep.SampleRate, channels int) *Streamer {
	return &Streamer{
		format: beep.Format{
			SampleRate:  sampleRate,
			NumChannels: channels,
			Precision:   2,
		},
		buf: bytes.NewBuffer(make([]byte, 0, 8192)),
	}
}

// NewPCMStreamer 用一段完整的 PCM 数据创建已结束写入的 Streamer
func NewPCMStreamer(pcm []byte, sampleRate beep.SampleRate, channels int) *Streamer {
	s := NewStreamer(sampleRate, channels)
	s.AppendAudio(pcm)
	s.Close()
	return s
}

func (s *Streamer) Format() beep.Format {
	return s.format
}

func (s *Streamer) AppendAudio(p []byte) {
	if len(p) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil || s.eos {
		return
	}

	if _, err := s.buf.Write(p); err != nil {
		s.err = err
		logrus.Errorf("streamer: failed to write to buffer: %v", err)
	}
}

func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bytesPerSample := s.format.NumChannels * s.format.Precision
	required := len(samples) * bytesPerSample

	// beep 期望 Stream 非阻塞：没有数据但还没结束时返回 (0, true)
	if s.buf.Len() < bytesPerSample {
		if s.eos || (s.err != nil && !errors.Is(s.err, io.EOF)) {
			return 0, false
		}
		return 0, true
	}

	readSize := min(required, s.buf.Len()-s.buf.Len()%bytesPerSample)
	chunk := make([]byte, readSize)
	n, err := s.buf.Read(chunk)
	if err != nil && err != io.EOF {
		s.err = err
		logrus.Errorf("streamer: failed to read from buffer: %v", err)
		return 0, false
	}

	samplesRead := n / bytesPerSample
	for i := 0; i < samplesRead; i++ {
		offset := i * bytesPerSample
		if s.format.NumChannels == 1 {
			v := pcm16ToFloat(chunk[offset:])
			samples[i][0] = v
			samples[i][1] = v
		} else {
			samples[i][0] = pcm16ToFloat(chunk[offset:])
			samples[i][1] = pcm16ToFloat(chunk[offset+2:])
		}
	}

	return samplesRead, true
}

func pcm16ToFloat(b []byte) float64 {
	if len(b) < 2 {
		return 0
	}
	v := int16(binary.LittleEndian.Uint16(b))
	return float64(v) / 32768.0
}

func (s *Streamer) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if errors.Is(s.err, io.EOF) {
		return nil
	}
	return s.err
}

// Close 标记写入结束，剩余数据播完后 Stream() 返回 (0, false)
func (s *Streamer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eos = true
	if s.err == nil {
		s.err = io.EOF
	}
	return nil
}
