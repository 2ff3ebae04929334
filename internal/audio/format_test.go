package audio

import (
	"testing"
)

func TestFormats(t *testing.T) {
	formats := Formats()
	if len(formats) != 36 {
		t.Fatalf("unexpected number of formats: %d", len(formats))
	}
	for i := 1; i < len(formats); i++ {
		if formats[i-1] >= formats[i] {
			t.Fatalf("formats should be sorted and unique: %s >= %s", formats[i-1], formats[i])
		}
	}
	if DefaultFormat != "riff-24khz-16bit-mono-pcm" {
		t.Fatalf("unexpected default format %s", DefaultFormat)
	}
}

func TestParseFormat(t *testing.T) {
	if _, err := ParseFormat("riff-8khz-8bit-mono-alow"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseFormat("riff-8khz-8bit-mono-alaw"); err == nil {
		t.Fatalf("expected error for misspelt token")
	}

	var f Format
	if err := f.UnmarshalText([]byte("ogg-48khz-16bit-mono-opus")); err != nil || f != Ogg48Khz16BitMonoOpus {
		t.Fatalf("unexpected unmarshal result: %s %v", f, err)
	}
}

func TestCodec(t *testing.T) {
	tests := []struct {
		format Format
		want   CodecOption
	}{
		{Riff24Khz16BitMonoPcm, CodecOption{Codec: "pcm", Container: "riff", SampleRate: 24000, Channels: 1, BitDepth: 16}},
		{Raw22050Hz16BitMonoPcm, CodecOption{Codec: "pcm", Container: "raw", SampleRate: 22050, Channels: 1, BitDepth: 16}},
		{Audio48Khz192KBitRateMonoMp3, CodecOption{Codec: "mp3", Container: "mp3", SampleRate: 48000, Channels: 1, BitRate: 192}},
		{Webm24Khz16Bit24KbpsMonoOpus, CodecOption{Codec: "opus", Container: "webm", SampleRate: 24000, Channels: 1, BitDepth: 16, BitRate: 24}},
		{AmrWb16000Hz, CodecOption{Codec: "amr-wb", Container: "amr", SampleRate: 16000, Channels: 1}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			if got := tt.format.Codec(); got != tt.want {
				t.Fatalf("unexpected codec, got=%+v want=%+v", got, tt.want)
			}
		})
	}
}

func TestFromContainerAndQuality(t *testing.T) {
	tests := []struct {
		container  string
		quality    int
		useClosest bool
		want       Format
		wantErr    bool
	}{
		{container: "wav", quality: -2, want: Riff8Khz16BitMonoPcm},
		{container: "wav", quality: 1, want: Riff24Khz16BitMonoPcm},
		{container: "mp3", quality: -4, want: Audio16Khz32KBitRateMonoMp3},
		{container: "mp3", quality: 3, want: Audio48Khz192KBitRateMonoMp3},
		{container: "ogg", quality: 0, want: Ogg24Khz16BitMonoOpus},
		{container: "webm", quality: 1, want: Webm24Khz16Bit24KbpsMonoOpus},
		{container: "mp3", quality: 9, wantErr: true},
		{container: "mp3", quality: 9, useClosest: true, want: Audio48Khz192KBitRateMonoMp3},
		{container: "wav", quality: -7, useClosest: true, want: Riff8Khz16BitMonoPcm},
		{container: "flac", quality: 0, useClosest: true, wantErr: true},
	}

	for _, tt := range tests {
		got, err := FromContainerAndQuality(tt.container, tt.quality, tt.useClosest)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("%s/%d: expected error, got %s", tt.container, tt.quality, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%s/%d: unexpected error: %v", tt.container, tt.quality, err)
		}
		if got != tt.want {
			t.Fatalf("%s/%d: got=%s want=%s", tt.container, tt.quality, got, tt.want)
		}
	}
}

func TestQualityTablesCoverRanges(t *testing.T) {
	for _, c := range Containers() {
		min, max, ok := QualityRange(c)
		if !ok {
			t.Fatalf("missing range for %s", c)
		}
		m, _ := Qualities(c)
		if len(m) != max-min+1 {
			t.Fatalf("%s: table size %d does not match range [%d,%d]", c, len(m), min, max)
		}
		for q := min; q <= max; q++ {
			if _, ok := m[q]; !ok {
				t.Fatalf("%s: quality %d missing", c, q)
			}
		}
	}
}
