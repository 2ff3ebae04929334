package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"azspeak/internal/config"
	"azspeak/internal/tts"
	"azspeak/internal/tts/azure"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: exitOK},
		{name: "usage", err: usageErrorf("bad"), want: exitUsage},
		{name: "help", err: flag.ErrHelp, want: exitUsage},
		{name: "connect", err: &azure.SynthesizerError{Kind: azure.KindConnect}, want: exitConnect},
		{name: "remote closed", err: &azure.SynthesizerError{Kind: azure.KindWebsocketConnectionClosed}, want: exitRemoteClosed},
		{name: "invalid message", err: &azure.SynthesizerError{Kind: azure.KindInvalidMessage}, want: exitInvalidMessage},
		{name: "ssml", err: &azure.SynthesizerError{Kind: azure.KindSSML}, want: exitUsage},
		{name: "stream ended", err: &azure.SynthesizerError{Kind: azure.KindStreamEnded}, want: exitFailure},
		{name: "wrapped connect", err: fmt.Errorf("speak: %w", &azure.SynthesizerError{Kind: azure.KindConnect}), want: exitConnect},
		{name: "rest connect", err: &azure.RestError{Kind: azure.RestKindConnect}, want: exitConnect},
		{name: "rest unauthorized", err: &azure.RestError{Kind: azure.RestKindUnauthorized, Status: 401}, want: exitFailure},
		{name: "other", err: errors.New("boom"), want: exitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCode(tt.err); got != tt.want {
				t.Fatalf("exitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestHeaderFlag(t *testing.T) {
	var h headerFlag
	for _, s := range []string{"X-Custom:  value ", "X-Other: 1", "X-Custom: again"} {
		if err := h.Set(s); err != nil {
			t.Fatalf("Set(%q) error = %v", s, err)
		}
	}
	want := headerFlag{{Name: "X-Custom", Value: "value"}, {Name: "X-Other", Value: "1"}, {Name: "X-Custom", Value: "again"}}
	if len(h) != len(want) {
		t.Fatalf("headers = %v, want %v", h, want)
	}
	for i := range want {
		if h[i] != want[i] {
			t.Fatalf("header %d = %+v, want %+v", i, h[i], want[i])
		}
	}
	for _, bad := range []string{"novalue", ": value"} {
		if err := h.Set(bad); err == nil {
			t.Fatalf("Set(%q) should fail", bad)
		}
	}
}

func TestInputRead(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		stdin   string
		want    string
		wantErr bool
	}{
		{name: "argument", args: []string{"hello", "world"}, want: "hello world"},
		{name: "stdin", stdin: "from stdin", want: "from stdin"},
		{name: "dash reads stdin", args: []string{"-f", "-"}, stdin: "dash", want: "dash"},
		{name: "argument and file", args: []string{"-f", "x.txt", "hello"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			var in inputFlags
			in.bind(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			got, err := in.read(fs, strings.NewReader(tt.stdin))
			if tt.wantErr {
				if err == nil {
					t.Fatal("read() should fail")
				}
				return
			}
			if err != nil {
				t.Fatalf("read() error = %v", err)
			}
			if got != tt.want {
				t.Fatalf("read() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAuthFlagsOverrideProfile(t *testing.T) {
	for _, key := range []string{"AZSPEAK_PROXY", "HTTPS_PROXY", "https_proxy", "ALL_PROXY", "all_proxy"} {
		t.Setenv(key, "")
	}

	cfg := config.Default()
	cfg.Auth.Endpoint = "wss://profile.example.com/ws"
	cfg.Auth.Key = "profile-key"
	cfg.Auth.Proxy = "http://profile:8080"

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var a authFlags
	a.bind(fs)
	if err := fs.Parse([]string{"-region", "westus", "-H", "X-A: 1", "-H", "X-B: 2", "-ca-file", "/etc/ca.pem", "-proxy", "socks5://flag:1080"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	a.apply(&cfg)

	if cfg.Auth.Endpoint != "" || cfg.Auth.WebsocketEndpoint() != azure.WebsocketEndpointByRegion("westus") {
		t.Fatalf("region must replace the profile endpoint, got %+v", cfg.Auth)
	}
	if cfg.Auth.Key != "profile-key" {
		t.Fatalf("unset flags must keep profile values, got key %q", cfg.Auth.Key)
	}
	if len(cfg.Auth.Headers) != 2 || cfg.Auth.Headers[0].Name != "X-A" || cfg.Auth.Headers[1].Name != "X-B" {
		t.Fatalf("headers = %v", cfg.Auth.Headers)
	}
	if cfg.Auth.CAFile != "/etc/ca.pem" {
		t.Fatalf("ca file = %q", cfg.Auth.CAFile)
	}
	if cfg.Auth.Proxy != "socks5://flag:1080" {
		t.Fatalf("proxy = %q", cfg.Auth.Proxy)
	}
}

func TestOutputFlagsApply(t *testing.T) {
	tests := []struct {
		name    string
		profile config.OutputConfig
		args    []string
		want    string
	}{
		{
			name:    "container replaces profile format",
			profile: config.OutputConfig{Format: "riff-16khz-16bit-mono-pcm"},
			args:    []string{"-c", "mp3"},
			want:    "audio-24khz-96kbitrate-mono-mp3",
		},
		{
			name:    "quality applies to profile container",
			profile: config.OutputConfig{Container: "wav"},
			args:    []string{"-q", "-1"},
			want:    "riff-16khz-16bit-mono-pcm",
		},
		{
			name:    "explicit format wins",
			profile: config.OutputConfig{Container: "wav"},
			args:    []string{"-F", "ogg-48khz-16bit-mono-opus", "-q", "1"},
			want:    "ogg-48khz-16bit-mono-opus",
		},
		{
			name:    "nothing set keeps profile",
			profile: config.OutputConfig{Format: "webm-16khz-16bit-mono-opus"},
			want:    "webm-16khz-16bit-mono-opus",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Output = tt.profile

			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			var o outputFlags
			o.bind(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			o.apply(fs, &cfg)

			got, err := cfg.Output.OutputFormat()
			if err != nil {
				t.Fatalf("OutputFormat() error = %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("OutputFormat() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestTextFlagsApply(t *testing.T) {
	cfg := config.Default()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	var tf textFlags
	tf.bind(fs)
	if err := fs.Parse([]string{"-l", "zh-CN", "-d", "1.2", "-R", "Girl"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if err := tf.apply(&cfg); err != nil {
		t.Fatalf("apply() error = %v", err)
	}
	opts, err := cfg.Text.TextOptions()
	if err != nil {
		t.Fatalf("TextOptions() error = %v", err)
	}
	if opts.Voice != "zh-CN-XiaoxiaoNeural" || opts.Rich == nil || opts.Rich.Role != "Girl" {
		t.Fatalf("opts = %+v", opts)
	}

	tf = textFlags{styleDegree: "5"}
	if err := tf.apply(&cfg); exitCode(err) != exitUsage {
		t.Fatalf("out of range style degree error = %v", err)
	}
}

func TestPrintQualities(t *testing.T) {
	var buf bytes.Buffer
	printQualities(&buf)
	out := buf.String()
	for _, want := range []string{"Qualities for MP3:", " -4: audio-16khz-32kbitrate-mono-mp3", "Qualities for WAV:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunUnknownCommand(t *testing.T) {
	if err := run(context.Background(), []string{"frobnicate"}); exitCode(err) != exitUsage {
		t.Fatalf("run() error = %v", err)
	}
}

func TestCheckOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.wav")

	if err := checkOutput(path, false); err != nil {
		t.Fatalf("checkOutput() error = %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("checkOutput must not create the file, stat err = %v", err)
	}

	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	var ue *usageError
	if err := checkOutput(path, false); !errors.As(err, &ue) {
		t.Fatalf("existing file without -overwrite must be a usage error, got %v", err)
	}
	if err := checkOutput(path, true); err != nil {
		t.Fatalf("checkOutput(overwrite) error = %v", err)
	}
	if err := checkOutput(dir, true); !errors.As(err, &ue) {
		t.Fatalf("directory must be rejected, got %v", err)
	}
}

func TestWriteOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.wav")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var ue *usageError
	if err := writeOutput(path, []byte("new"), false); !errors.As(err, &ue) {
		t.Fatalf("existing file without -overwrite must be a usage error, got %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "old" {
		t.Fatalf("existing file must be kept, got %q", data)
	}

	if err := writeOutput(path, []byte("new"), true); err != nil {
		t.Fatalf("writeOutput(overwrite) error = %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "new" {
		t.Fatalf("file must be replaced, got %q", data)
	}

	fresh := filepath.Join(dir, "fresh.wav")
	if err := writeOutput(fresh, []byte("audio"), false); err != nil {
		t.Fatalf("writeOutput() error = %v", err)
	}
	if data, _ := os.ReadFile(fresh); string(data) != "audio" {
		t.Fatalf("fresh file = %q", data)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestSpeakFailureKeepsExistingOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	if err := os.WriteFile(path, []byte("old"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg := config.Default()
	cfg.Auth.Mode = config.ModeRest
	cfg.Auth.Endpoint = "https://example.invalid/tts"
	out := outputFlags{output: path, overwrite: true}
	failed := errors.New("synthesis failed")
	err := speak(context.Background(), cfg, out, func(tts.Synthesizer) ([]byte, error) {
		return nil, failed
	})
	if !errors.Is(err, failed) {
		t.Fatalf("speak() error = %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "old" {
		t.Fatalf("failed synthesis must not touch the output, got %q", data)
	}
}
