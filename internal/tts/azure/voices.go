package azure

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"azspeak/internal/tts"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// VoiceListClient 查询可用音色
type VoiceListClient struct {
	client   *http.Client
	endpoint string
	header   http.Header
}

// NewVoiceListClient auth.Endpoint 为空时使用试用端点；opts 中只有 TLS 与超时设置生效
func NewVoiceListClient(auth AuthOptions, opts ...Option) (*VoiceListClient, error) {
	endpoint := auth.Endpoint
	if endpoint == "" {
		endpoint = TrialVoiceListEndpoint
	}

	header, err := authHeader(auth, endpoint == TrialVoiceListEndpoint)
	if err != nil {
		return nil, &RestError{Kind: RestKindInvalidRequest, Err: err}
	}
	if auth.Token != "" {
		header.Set("Authorization", bearer(auth.Token))
	}
	header.Set("User-Agent", userAgent)

	var cfg SynthesizerConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	client, err := newHTTPClient(auth.Proxy, cfg.transport)
	if err != nil {
		return nil, &RestError{Kind: RestKindInvalidRequest, Err: err}
	}

	return &VoiceListClient{client: client, endpoint: endpoint, header: header}, nil
}

// List 返回全部音色
func (c *VoiceListClient) List(ctx context.Context) ([]tts.Voice, error) {
	ctx, span := tracer.Start(ctx, "list voices")
	defer span.End()

	voices, err := c.list(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("response.voices", len(voices)))
	logrus.Debugf("azure: fetched %d voices", len(voices))
	return voices, nil
}

func (c *VoiceListClient) list(ctx context.Context) ([]tts.Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, &RestError{Kind: RestKindInvalidRequest, Err: err}
	}
	req.Header = c.header.Clone()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &RestError{Kind: RestKindConnect, Err: err}
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var voices []tts.Voice
	if err := json.NewDecoder(resp.Body).Decode(&voices); err != nil {
		return nil, &RestError{Kind: RestKindConnection, Err: fmt.Errorf("decode voice list: %w", err)}
	}
	return voices, nil
}
