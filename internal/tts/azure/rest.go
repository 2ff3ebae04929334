package azure

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"azspeak/internal/audio"
	"azspeak/internal/protocols"
	"azspeak/internal/tts"
	"azspeak/pkg/ws"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const userAgent = "azspeak"

// RestSynthesizer 每次合成一个 HTTP POST
type RestSynthesizer struct {
	client   *http.Client
	endpoint string
	format   audio.Format
	header   http.Header
}

var _ tts.Synthesizer = (*RestSynthesizer)(nil)

// RestSynthesizer 用同一份配置创建 REST 合成器，endpoint 需为 http(s)
func (c *SynthesizerConfig) RestSynthesizer() (*RestSynthesizer, error) {
	u, err := url.Parse(c.auth.Endpoint)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return nil, &RestError{Kind: RestKindInvalidRequest, Err: fmt.Errorf("invalid rest endpoint %q", c.auth.Endpoint)}
	}

	header, err := authHeader(c.auth, false)
	if err != nil {
		return nil, &RestError{Kind: RestKindInvalidRequest, Err: err}
	}
	if c.auth.Token != "" {
		header.Set("Authorization", bearer(c.auth.Token))
	}
	header.Set("Content-Type", protocols.ContentTypeSSML)
	header.Set("X-Microsoft-OutputFormat", string(c.format))
	header.Set("User-Agent", userAgent)

	client, err := newHTTPClient(c.auth.Proxy, c.transport)
	if err != nil {
		return nil, &RestError{Kind: RestKindInvalidRequest, Err: err}
	}

	return &RestSynthesizer{
		client:   client,
		endpoint: u.String(),
		format:   c.format,
		header:   header,
	}, nil
}

// newHTTPClient 带 otel 埋点的 HTTP 客户端，proxy 为空时不读取环境变量。
// TLS 配置与握手超时沿用 WebSocket 连接的设置
func newHTTPClient(proxy string, cfg ws.Config) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	if cfg.TLSConfig != nil {
		transport.TLSClientConfig = cfg.TLSConfig.Clone()
	}
	if proxy != "" {
		p, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("parse proxy: %w", err)
		}
		switch strings.ToLower(p.Scheme) {
		case "http", "https", "socks5":
		default:
			return nil, fmt.Errorf("unsupported proxy scheme %q", p.Scheme)
		}
		transport.Proxy = http.ProxyURL(p)
	}
	if cfg.HandshakeTimeout > 0 {
		transport.TLSHandshakeTimeout = cfg.HandshakeTimeout
	}

	return &http.Client{
		Transport: otelhttp.NewTransport(transport,
			otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
				return operation + " " + r.URL.Path
			}),
		),
	}, nil
}

func (r *RestSynthesizer) Format() audio.Format {
	return r.format
}

// SynthesizeSSML 合成一段 SSML，返回完整音频
func (r *RestSynthesizer) SynthesizeSSML(ctx context.Context, ssml string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "synthesize ssml via rest", trace.WithAttributes(
		attribute.String("audio.format", string(r.format)),
		attribute.Int("request.ssml_length", len(ssml)),
	))
	defer span.End()

	start := time.Now()
	data, err := r.do(ctx, ssml)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	attrs := metric.WithAttributes(attribute.String("transport", "rest"))
	audioBytesCounter.Add(ctx, int64(len(data)), attrs)
	synthesisDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	span.SetAttributes(attribute.Int("response.audio_bytes", len(data)))
	return data, nil
}

func (r *RestSynthesizer) do(ctx context.Context, ssml string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, strings.NewReader(ssml))
	if err != nil {
		return nil, &RestError{Kind: RestKindInvalidRequest, Err: err}
	}
	req.Header = r.header.Clone()

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &RestError{Kind: RestKindConnect, Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RestError{Kind: RestKindConnection, Err: err}
	}
	return data, nil
}

// checkStatus 非 2xx 响应按状态码归类
func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	err := &RestError{
		Kind:   restStatusKind(resp.StatusCode),
		Status: resp.StatusCode,
		Body:   strings.TrimSpace(string(body)),
	}
	logrus.Warnf("azure: %s %s returned %s", resp.Request.Method, resp.Request.URL.Path, resp.Status)
	return err
}

// SynthesizeText 先生成 SSML 再合成
func (r *RestSynthesizer) SynthesizeText(ctx context.Context, text string, opts *tts.TextOptions) ([]byte, error) {
	logrus.Debugf("azure: synthesizing text: %s", text)
	ssml, err := tts.InterpolateSSML(text, opts)
	if err != nil {
		return nil, &RestError{Kind: RestKindSSML, Err: err}
	}
	return r.SynthesizeSSML(ctx, ssml)
}

func (r *RestSynthesizer) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
