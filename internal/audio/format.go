package audio

import (
	"fmt"
	"sort"
)

// Format 服务端支持的输出格式标识
type Format string

const (
	AmrWb16000Hz                  Format = "amr-wb-16000hz"
	Audio16Khz128KBitRateMonoMp3  Format = "audio-16khz-128kbitrate-mono-mp3"
	Audio16Khz16Bit32KbpsMonoOpus Format = "audio-16khz-16bit-32kbps-mono-opus"
	Audio16Khz32KBitRateMonoMp3   Format = "audio-16khz-32kbitrate-mono-mp3"
	Audio16Khz64KBitRateMonoMp3   Format = "audio-16khz-64kbitrate-mono-mp3"
	Audio24Khz160KBitRateMonoMp3  Format = "audio-24khz-160kbitrate-mono-mp3"
	Audio24Khz16Bit24KbpsMonoOpus Format = "audio-24khz-16bit-24kbps-mono-opus"
	Audio24Khz16Bit48KbpsMonoOpus Format = "audio-24khz-16bit-48kbps-mono-opus"
	Audio24Khz48KBitRateMonoMp3   Format = "audio-24khz-48kbitrate-mono-mp3"
	Audio24Khz96KBitRateMonoMp3   Format = "audio-24khz-96kbitrate-mono-mp3"
	Audio48Khz192KBitRateMonoMp3  Format = "audio-48khz-192kbitrate-mono-mp3"
	Audio48Khz96KBitRateMonoMp3   Format = "audio-48khz-96kbitrate-mono-mp3"
	Ogg16Khz16BitMonoOpus         Format = "ogg-16khz-16bit-mono-opus"
	Ogg24Khz16BitMonoOpus         Format = "ogg-24khz-16bit-mono-opus"
	Ogg48Khz16BitMonoOpus         Format = "ogg-48khz-16bit-mono-opus"
	Raw16Khz16BitMonoPcm          Format = "raw-16khz-16bit-mono-pcm"
	Raw16Khz16BitMonoTrueSilk     Format = "raw-16khz-16bit-mono-truesilk"
	Raw22050Hz16BitMonoPcm        Format = "raw-22050hz-16bit-mono-pcm"
	Raw24Khz16BitMonoPcm          Format = "raw-24khz-16bit-mono-pcm"
	Raw24Khz16BitMonoTrueSilk     Format = "raw-24khz-16bit-mono-truesilk"
	Raw44100Hz16BitMonoPcm        Format = "raw-44100hz-16bit-mono-pcm"
	Raw48Khz16BitMonoPcm          Format = "raw-48khz-16bit-mono-pcm"
	Raw8Khz16BitMonoPcm           Format = "raw-8khz-16bit-mono-pcm"
	Raw8Khz8BitMonoALaw           Format = "raw-8khz-8bit-mono-alaw"
	Raw8Khz8BitMonoMULaw          Format = "raw-8khz-8bit-mono-mulaw"
	Riff16Khz16BitMonoPcm         Format = "riff-16khz-16bit-mono-pcm"
	Riff22050Hz16BitMonoPcm       Format = "riff-22050hz-16bit-mono-pcm"
	Riff24Khz16BitMonoPcm         Format = "riff-24khz-16bit-mono-pcm"
	Riff44100Hz16BitMonoPcm       Format = "riff-44100hz-16bit-mono-pcm"
	Riff48Khz16BitMonoPcm         Format = "riff-48khz-16bit-mono-pcm"
	Riff8Khz16BitMonoPcm          Format = "riff-8khz-16bit-mono-pcm"
	// 服务端就是这样拼写的
	Riff8Khz8BitMonoALaw          Format = "riff-8khz-8bit-mono-alow"
	Riff8Khz8BitMonoMULaw         Format = "riff-8khz-8bit-mono-mulaw"
	Webm16Khz16BitMonoOpus        Format = "webm-16khz-16bit-mono-opus"
	Webm24Khz16Bit24KbpsMonoOpus  Format = "webm-24khz-16bit-24kbps-mono-opus"
	Webm24Khz16BitMonoOpus        Format = "webm-24khz-16bit-mono-opus"
)

// DefaultFormat 未指定时使用的格式
const DefaultFormat = Riff24Khz16BitMonoPcm

var allFormats = []Format{
	AmrWb16000Hz,
	Audio16Khz128KBitRateMonoMp3,
	Audio16Khz16Bit32KbpsMonoOpus,
	Audio16Khz32KBitRateMonoMp3,
	Audio16Khz64KBitRateMonoMp3,
	Audio24Khz160KBitRateMonoMp3,
	Audio24Khz16Bit24KbpsMonoOpus,
	Audio24Khz16Bit48KbpsMonoOpus,
	Audio24Khz48KBitRateMonoMp3,
	Audio24Khz96KBitRateMonoMp3,
	Audio48Khz192KBitRateMonoMp3,
	Audio48Khz96KBitRateMonoMp3,
	Ogg16Khz16BitMonoOpus,
	Ogg24Khz16BitMonoOpus,
	Ogg48Khz16BitMonoOpus,
	Raw16Khz16BitMonoPcm,
	Raw16Khz16BitMonoTrueSilk,
	Raw22050Hz16BitMonoPcm,
	Raw24Khz16BitMonoPcm,
	Raw24Khz16BitMonoTrueSilk,
	Raw44100Hz16BitMonoPcm,
	Raw48Khz16BitMonoPcm,
	Raw8Khz16BitMonoPcm,
	Raw8Khz8BitMonoALaw,
	Raw8Khz8BitMonoMULaw,
	Riff16Khz16BitMonoPcm,
	Riff22050Hz16BitMonoPcm,
	Riff24Khz16BitMonoPcm,
	Riff44100Hz16BitMonoPcm,
	Riff48Khz16BitMonoPcm,
	Riff8Khz16BitMonoPcm,
	Riff8Khz8BitMonoALaw,
	Riff8Khz8BitMonoMULaw,
	Webm16Khz16BitMonoOpus,
	Webm24Khz16Bit24KbpsMonoOpus,
	Webm24Khz16BitMonoOpus,
}

var formatSet = func() map[Format]struct{} {
	m := make(map[Format]struct{}, len(allFormats))
	for _, f := range allFormats {
		m[f] = struct{}{}
	}
	return m
}()

// Formats 返回全部格式（按字典序）
func Formats() []Format {
	out := make([]Format, len(allFormats))
	copy(out, allFormats)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseFormat 校验格式标识
func ParseFormat(s string) (Format, error) {
	f := Format(s)
	if _, ok := formatSet[f]; !ok {
		return "", fmt.Errorf("audio: unknown format %q", s)
	}
	return f, nil
}

func (f Format) String() string {
	return string(f)
}

// UnmarshalText 让 yaml/flag 等可以直接解析 Format
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := ParseFormat(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func (f Format) MarshalText() ([]byte, error) {
	return []byte(f), nil
}
