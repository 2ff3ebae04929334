package azure

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"time"

	"azspeak/internal/audio"
	"azspeak/pkg/ws"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/http/httpguts"
)

const (
	// DefaultEndpoint 试用端点，不需要 key，但必须带 Origin 头
	DefaultEndpoint = "wss://eastus.api.speech.microsoft.com/cognitiveservices/websocket/v1?TrafficType=AzureDemo"
	// TrialVoiceListEndpoint 试用端点对应的音色列表
	TrialVoiceListEndpoint = "https://eastus.api.speech.microsoft.com/cognitiveservices/voices/list"
	// Origin 试用端点要求的 Origin
	Origin = "https://azure.microsoft.com"

	defaultReceiveTimeout = 60 * time.Second
	defaultWriteTimeout   = 10 * time.Second
)

// WebsocketEndpointByRegion 按区域生成 WebSocket 端点
func WebsocketEndpointByRegion(region string) string {
	return fmt.Sprintf("wss://%s.tts.speech.microsoft.com/cognitiveservices/websocket/v1", region)
}

// RestEndpointByRegion 按区域生成 REST 端点
func RestEndpointByRegion(region string) string {
	return fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", region)
}

// VoiceListEndpointByRegion 按区域生成音色列表端点
func VoiceListEndpointByRegion(region string) string {
	return fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/voices/list", region)
}

// Header 自定义请求头，保持添加顺序
type Header struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

// AuthOptions 认证与连接参数
type AuthOptions struct {
	Endpoint string
	// Token 以查询参数 Authorization 传递
	Token string
	// Key 以 Ocp-Apim-Subscription-Key 头传递
	Key string
	// Headers 非空时不再自动添加 Origin
	Headers []Header
	// Proxy 代理地址（socks5/http/https），为空表示直连
	Proxy string
}

type AuthOptionsBuilder struct {
	opts AuthOptions
}

func NewAuthOptionsBuilder(endpoint string) *AuthOptionsBuilder {
	return &AuthOptionsBuilder{opts: AuthOptions{Endpoint: endpoint}}
}

func (b *AuthOptionsBuilder) WithToken(token string) *AuthOptionsBuilder {
	b.opts.Token = token
	return b
}

func (b *AuthOptionsBuilder) WithKey(key string) *AuthOptionsBuilder {
	b.opts.Key = key
	return b
}

func (b *AuthOptionsBuilder) WithHeader(name, value string) *AuthOptionsBuilder {
	b.opts.Headers = append(b.opts.Headers, Header{Name: name, Value: value})
	return b
}

func (b *AuthOptionsBuilder) WithHeaders(headers []Header) *AuthOptionsBuilder {
	b.opts.Headers = append(b.opts.Headers, headers...)
	return b
}

func (b *AuthOptionsBuilder) WithProxy(proxy string) *AuthOptionsBuilder {
	b.opts.Proxy = proxy
	return b
}

func (b *AuthOptionsBuilder) Build() AuthOptions {
	return b.opts.clone()
}

func (a AuthOptions) clone() AuthOptions {
	a.Headers = slices.Clone(a.Headers)
	return a
}

// ------------------------ Synthesizer Config ------------------------

// Dialer 建立已握手的 WebSocket 连接，测试中可替换
type Dialer interface {
	Dial(ctx context.Context, target string, header http.Header, cfg ws.Config) (ws.Conn, error)
}

// DialerFunc 函数形式的 Dialer
type DialerFunc func(ctx context.Context, target string, header http.Header, cfg ws.Config) (ws.Conn, error)

func (f DialerFunc) Dial(ctx context.Context, target string, header http.Header, cfg ws.Config) (ws.Conn, error) {
	return f(ctx, target, header, cfg)
}

// SynthesizerConfig 构造后只读，可以被多次 Connect 复用
type SynthesizerConfig struct {
	auth           AuthOptions
	format         audio.Format
	dialer         Dialer
	transport      ws.Config
	receiveTimeout time.Duration
}

type Option func(*SynthesizerConfig)

// WithDialer 替换底层连接方式
func WithDialer(d Dialer) Option {
	return func(c *SynthesizerConfig) {
		c.dialer = d
	}
}

// WithReceiveTimeout 单次合成等待 turn.end 的最长时间（默认 60 秒）
func WithReceiveTimeout(d time.Duration) Option {
	return func(c *SynthesizerConfig) {
		c.receiveTimeout = d
	}
}

// WithTimeouts 建立连接与握手的超时
func WithTimeouts(dial, handshake time.Duration) Option {
	return func(c *SynthesizerConfig) {
		c.transport.DialTimeout = dial
		c.transport.HandshakeTimeout = handshake
	}
}

// WithTLSConfig 自定义根证书等 TLS 设置，同时作用于 WebSocket 与 REST
func WithTLSConfig(cfg *tls.Config) Option {
	return func(c *SynthesizerConfig) {
		c.transport.TLSConfig = cfg
	}
}

func NewSynthesizerConfig(auth AuthOptions, format audio.Format, opts ...Option) *SynthesizerConfig {
	if format == "" {
		format = audio.DefaultFormat
	}
	c := &SynthesizerConfig{
		auth:           auth.clone(),
		format:         format,
		dialer:         DialerFunc(ws.Dial),
		receiveTimeout: defaultReceiveTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	logrus.Debugf("azure: synthesizer config created, endpoint=%s format=%s", c.auth.Endpoint, c.format)
	return c
}

func (c *SynthesizerConfig) Format() audio.Format {
	return c.format
}

func (c *SynthesizerConfig) Auth() AuthOptions {
	return c.auth.clone()
}

// upgradeRequest 构造握手请求的 URL 与请求头
func (c *SynthesizerConfig) upgradeRequest(connectionID string) (string, http.Header, error) {
	u, err := url.Parse(c.auth.Endpoint)
	if err != nil {
		return "", nil, newError(KindInvalidRequest, fmt.Errorf("parse endpoint: %w", err))
	}
	if u.Host == "" {
		return "", nil, newError(KindInvalidRequest, fmt.Errorf("endpoint %q has no host", c.auth.Endpoint))
	}

	// 服务端要求 token 以查询参数而非请求头传递
	query := "X-ConnectionId=" + url.QueryEscape(connectionID)
	if c.auth.Token != "" {
		query += "&Authorization=" + url.QueryEscape(c.auth.Token)
	}
	if u.RawQuery != "" {
		u.RawQuery += "&" + query
	} else {
		u.RawQuery = query
	}

	header, err := authHeader(c.auth, c.auth.Endpoint == DefaultEndpoint)
	if err != nil {
		return "", nil, newError(KindInvalidRequest, err)
	}
	return u.String(), header, nil
}

// authHeader key、自定义头，或者在试用端点上补 Origin
func authHeader(auth AuthOptions, trial bool) (http.Header, error) {
	header := http.Header{}
	if auth.Key != "" {
		if !httpguts.ValidHeaderFieldValue(auth.Key) {
			return nil, errors.New("invalid subscription key")
		}
		header.Set("Ocp-Apim-Subscription-Key", auth.Key)
	}
	if len(auth.Headers) > 0 {
		for _, h := range auth.Headers {
			if !httpguts.ValidHeaderFieldName(h.Name) {
				return nil, fmt.Errorf("invalid header name %q", h.Name)
			}
			if !httpguts.ValidHeaderFieldValue(h.Value) {
				return nil, fmt.Errorf("invalid value for header %q", h.Name)
			}
			header.Add(h.Name, h.Value)
		}
	} else if trial {
		header.Set("Origin", Origin)
	}
	return header, nil
}

func (c *SynthesizerConfig) proxyURL() (*url.URL, error) {
	if c.auth.Proxy == "" {
		return nil, nil
	}
	p, err := url.Parse(c.auth.Proxy)
	if err != nil {
		return nil, &ws.ConnectError{Kind: ws.KindBadURL, URL: c.auth.Proxy, Err: err}
	}
	return p, nil
}
