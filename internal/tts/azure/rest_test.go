package azure

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"azspeak/internal/audio"
	"azspeak/internal/tts"
)

func TestRestSynthesizer(t *testing.T) {
	var gotHeader http.Header
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeader = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		_, _ = w.Write([]byte("ID3audio"))
	}))
	defer srv.Close()

	auth := NewAuthOptionsBuilder(srv.URL).WithKey("secret").WithToken("tok").Build()
	r, err := NewSynthesizerConfig(auth, audio.Audio24Khz48KBitRateMonoMp3).RestSynthesizer()
	if err != nil {
		t.Fatalf("RestSynthesizer() error = %v", err)
	}
	defer r.Close()

	opts := tts.NewTextOptionsBuilder("en-US-JennyNeural").Build()
	data, err := r.SynthesizeText(context.Background(), "a < b", opts)
	if err != nil {
		t.Fatalf("SynthesizeText() error = %v", err)
	}
	if string(data) != "ID3audio" {
		t.Fatalf("SynthesizeText() = %q", data)
	}

	want := map[string]string{
		"X-Microsoft-OutputFormat":  "audio-24khz-48kbitrate-mono-mp3",
		"Content-Type":              "application/ssml+xml",
		"User-Agent":                "azspeak",
		"Ocp-Apim-Subscription-Key": "secret",
		"Authorization":             "Bearer tok",
	}
	for k, v := range want {
		if gotHeader.Get(k) != v {
			t.Fatalf("header[%s] = %q, want %q", k, gotHeader.Get(k), v)
		}
	}
	if !containsAll(gotBody, `name="en-US-JennyNeural"`, "a &lt; b") {
		t.Fatalf("body = %s", gotBody)
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func TestRestSynthesizerStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   RestErrorKind
	}{
		{http.StatusBadRequest, RestKindInvalidRequest},
		{http.StatusUnauthorized, RestKindUnauthorized},
		{http.StatusUnsupportedMediaType, RestKindUnsupportedMediaType},
		{http.StatusTooManyRequests, RestKindTooManyRequests},
		{http.StatusBadGateway, RestKindOtherHTTP},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			}))
			defer srv.Close()

			r, err := NewSynthesizerConfig(NewAuthOptionsBuilder(srv.URL).Build(), "").RestSynthesizer()
			if err != nil {
				t.Fatalf("RestSynthesizer() error = %v", err)
			}
			_, err = r.SynthesizeSSML(context.Background(), "<speak/>")
			var re *RestError
			if !errors.As(err, &re) {
				t.Fatalf("SynthesizeSSML() error = %v, want *RestError", err)
			}
			if re.Kind != tt.want || re.Status != tt.status || re.Body != "nope" {
				t.Fatalf("RestError = %+v, want kind %s status %d", re, tt.want, tt.status)
			}
		})
	}
}

func TestRestSynthesizerConstruction(t *testing.T) {
	tests := []struct {
		name string
		auth AuthOptions
	}{
		{name: "websocket endpoint", auth: NewAuthOptionsBuilder(DefaultEndpoint).Build()},
		{name: "bad proxy scheme", auth: NewAuthOptionsBuilder("https://example.com").WithProxy("ftp://p:21").Build()},
		{name: "bad header", auth: NewAuthOptionsBuilder("https://example.com").WithHeader("a b", "c").Build()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSynthesizerConfig(tt.auth, "").RestSynthesizer()
			var re *RestError
			if !errors.As(err, &re) || re.Kind != RestKindInvalidRequest {
				t.Fatalf("RestSynthesizer() error = %v, want RestKindInvalidRequest", err)
			}
		})
	}
}

func TestRestSynthesizerConnectError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	r, err := NewSynthesizerConfig(NewAuthOptionsBuilder(endpoint).Build(), "").RestSynthesizer()
	if err != nil {
		t.Fatalf("RestSynthesizer() error = %v", err)
	}
	_, err = r.SynthesizeSSML(context.Background(), "<speak/>")
	var re *RestError
	if !errors.As(err, &re) || re.Kind != RestKindConnect {
		t.Fatalf("SynthesizeSSML() error = %v, want RestKindConnect", err)
	}
}

func TestRestSynthesizerTLSConfig(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ID3"))
	}))
	defer srv.Close()

	auth := NewAuthOptionsBuilder(srv.URL).Build()
	opts := tts.NewTextOptionsBuilder("en-US-JennyNeural").Build()

	// 自签名证书不在系统根证书中
	r, err := NewSynthesizerConfig(auth, audio.DefaultFormat).RestSynthesizer()
	if err != nil {
		t.Fatalf("RestSynthesizer() error = %v", err)
	}
	if _, err := r.SynthesizeText(context.Background(), "hi", opts); err == nil {
		t.Fatal("untrusted certificate must fail")
	}

	pool := x509.NewCertPool()
	pool.AddCert(srv.Certificate())
	r, err = NewSynthesizerConfig(auth, audio.DefaultFormat, WithTLSConfig(&tls.Config{RootCAs: pool})).RestSynthesizer()
	if err != nil {
		t.Fatalf("RestSynthesizer() error = %v", err)
	}
	data, err := r.SynthesizeText(context.Background(), "hi", opts)
	if err != nil {
		t.Fatalf("SynthesizeText() error = %v", err)
	}
	if string(data) != "ID3" {
		t.Fatalf("SynthesizeText() = %q", data)
	}
}
