package audio

import (
	"strconv"
	"strings"
)

// CodecOption 从格式标识中解析出的编码信息
type CodecOption struct {
	Codec      string `json:"codec"`
	Container  string `json:"container"`
	SampleRate int    `json:"sampleRate"`
	Channels   int    `json:"channels"`
	BitDepth   int    `json:"bitDepth"`
	// BitRate 单位 kbps，仅压缩格式有值
	BitRate int `json:"bitRate,omitempty"`
}

// Codec 解析格式标识，例如 riff-24khz-16bit-mono-pcm
func (f Format) Codec() CodecOption {
	parts := strings.Split(string(f), "-")
	opt := CodecOption{Channels: 1}
	if len(parts) == 0 {
		return opt
	}

	opt.Codec = parts[len(parts)-1]
	opt.Container = parts[0]

	// amr-wb-16000hz 没有编码后缀
	if opt.Container == "amr" {
		opt.Codec = "amr-wb"
		opt.Container = "amr"
	}
	if opt.Container == "audio" {
		opt.Container = opt.Codec
	}

	for _, p := range parts[1:] {
		switch {
		case strings.HasSuffix(p, "khz"):
			if v, err := strconv.Atoi(strings.TrimSuffix(p, "khz")); err == nil {
				opt.SampleRate = v * 1000
			}
		case strings.HasSuffix(p, "hz"):
			if v, err := strconv.Atoi(strings.TrimSuffix(p, "hz")); err == nil {
				opt.SampleRate = v
			}
		case strings.HasSuffix(p, "bit"):
			if v, err := strconv.Atoi(strings.TrimSuffix(p, "bit")); err == nil {
				opt.BitDepth = v
			}
		case strings.HasSuffix(p, "kbitrate"):
			if v, err := strconv.Atoi(strings.TrimSuffix(p, "kbitrate")); err == nil {
				opt.BitRate = v
			}
		case strings.HasSuffix(p, "kbps"):
			if v, err := strconv.Atoi(strings.TrimSuffix(p, "kbps")); err == nil {
				opt.BitRate = v
			}
		case p == "stereo":
			opt.Channels = 2
		}
	}
	return opt
}

// IsRIFF 带 WAV 头
func (f Format) IsRIFF() bool {
	return strings.HasPrefix(string(f), "riff-")
}

// IsRawPCM 无文件头的 16bit PCM
func (f Format) IsRawPCM() bool {
	return strings.HasPrefix(string(f), "raw-") && strings.HasSuffix(string(f), "-pcm")
}

// IsMP3 mp3 编码
func (f Format) IsMP3() bool {
	return strings.HasSuffix(string(f), "-mp3")
}
