package config

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"azspeak/internal/audio"
	"azspeak/internal/tts"
	"azspeak/internal/tts/azure"

	"gopkg.in/yaml.v3"
)

const (
	ModeWebsocket = "websocket"
	ModeRest      = "rest"
)

// 代理环境变量，按优先级排列
var proxyEnvKeys = []string{"AZSPEAK_PROXY", "HTTPS_PROXY", "https_proxy", "ALL_PROXY", "all_proxy"}

type AuthConfig struct {
	// Mode websocket 或 rest
	Mode     string `yaml:"mode"`
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`
	Key      string `yaml:"key"`
	Token    string `yaml:"token"`
	// Headers 按书写顺序发送，同名头可以出现多次
	Headers []azure.Header `yaml:"headers"`
	Proxy   string         `yaml:"proxy"`
	// CAFile 额外信任的 PEM 根证书，用于自建网关或 TLS 拦截代理
	CAFile string `yaml:"ca_file"`
}

type TextConfig struct {
	Voice       string   `yaml:"voice"`
	Locale      string   `yaml:"locale"`
	Rate        string   `yaml:"rate"`
	Pitch       string   `yaml:"pitch"`
	Style       string   `yaml:"style"`
	Role        string   `yaml:"role"`
	StyleDegree *float32 `yaml:"style_degree"`
	// DefaultVoices 补充或覆盖语言区域的默认音色
	DefaultVoices map[string]string `yaml:"default_voices"`
}

type OutputConfig struct {
	// Format 优先于 Container/Quality
	Format    string `yaml:"format"`
	Container string `yaml:"container"`
	Quality   int    `yaml:"quality"`
}

type Config struct {
	LogLevel string       `yaml:"log_level"`
	Auth     AuthConfig   `yaml:"auth"`
	Text     TextConfig   `yaml:"text"`
	Output   OutputConfig `yaml:"output"`
}

func Default() Config {
	return Config{
		LogLevel: "warn",
		Auth: AuthConfig{
			Mode: ModeWebsocket,
		},
		Text: TextConfig{
			Locale: tts.DefaultLocale,
		},
		Output: OutputConfig{
			Container: "wav",
		},
	}
}

// DefaultPath 返回 $XDG_CONFIG_HOME/azspeak/profile.yaml（各平台对应目录）
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate config dir: %w", err)
	}
	return filepath.Join(dir, "azspeak", "profile.yaml"), nil
}

// Load 读取 profile，path 为空时只使用默认值与环境变量
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return cfg, fmt.Errorf("config file not found: %w", err)
			}
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	if err := validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// LoadOptional 同 Load，但文件不存在时不报错
func LoadOptional(path string) (Config, error) {
	if path != "" {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			path = ""
		}
	}
	return Load(path)
}

// Save 写出 profile，目录不存在时创建
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.LogLevel, "AZSPEAK_LOG_LEVEL")
	overrideString(&cfg.Auth.Mode, "AZSPEAK_MODE")
	overrideString(&cfg.Auth.Endpoint, "AZSPEAK_ENDPOINT")
	overrideString(&cfg.Auth.Region, "AZSPEAK_REGION")
	overrideString(&cfg.Auth.Key, "AZSPEAK_KEY")
	overrideString(&cfg.Auth.Token, "AZSPEAK_TOKEN")
	overrideString(&cfg.Auth.CAFile, "AZSPEAK_CA_FILE")
	overrideString(&cfg.Text.Voice, "AZSPEAK_VOICE")
	overrideString(&cfg.Text.Locale, "AZSPEAK_LOCALE")
	overrideString(&cfg.Text.Rate, "AZSPEAK_RATE")
	overrideString(&cfg.Text.Pitch, "AZSPEAK_PITCH")
	overrideString(&cfg.Text.Style, "AZSPEAK_STYLE")
	overrideString(&cfg.Text.Role, "AZSPEAK_ROLE")
	overrideFloat32(&cfg.Text.StyleDegree, "AZSPEAK_STYLE_DEGREE")
	overrideString(&cfg.Output.Format, "AZSPEAK_FORMAT")
	overrideString(&cfg.Output.Container, "AZSPEAK_CONTAINER")
	overrideInt(&cfg.Output.Quality, "AZSPEAK_QUALITY")
}

func overrideString(target *string, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok && strings.TrimSpace(value) != "" {
		*target = value
	}
}

func overrideInt(target *int, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			*target = parsed
		}
	}
}

func overrideFloat32(target **float32, envKey string) {
	if value, ok := os.LookupEnv(envKey); ok {
		if parsed, err := strconv.ParseFloat(value, 32); err == nil {
			f := float32(parsed)
			*target = &f
		}
	}
}

// Validate 命令行覆盖 profile 之后再次校验
func (c Config) Validate() error {
	return validate(c)
}

func validate(cfg Config) error {
	switch cfg.Auth.Mode {
	case ModeWebsocket, ModeRest:
	default:
		return errors.New("auth.mode must be one of websocket|rest")
	}
	if cfg.Auth.Mode == ModeRest && cfg.Auth.Endpoint == "" && cfg.Auth.Region == "" {
		return errors.New("auth.endpoint or auth.region must be set when mode=rest")
	}
	if cfg.Output.Format != "" {
		if _, err := audio.ParseFormat(cfg.Output.Format); err != nil {
			return fmt.Errorf("output.format: %w", err)
		}
	} else if _, ok := audio.Qualities(cfg.Output.Container); !ok {
		return fmt.Errorf("output.container must be one of %s", strings.Join(audio.Containers(), "|"))
	}
	if cfg.Text.Role != "" {
		if _, err := tts.ParseRole(cfg.Text.Role); err != nil {
			return fmt.Errorf("text.role: %w", err)
		}
	}
	if cfg.Text.StyleDegree != nil && !tts.ValidStyleDegree(*cfg.Text.StyleDegree) {
		return errors.New("text.style_degree must be between 0.01 and 2")
	}
	return nil
}

// ResolveProxy 代理优先级：显式参数 > 环境变量 > profile
func ResolveProxy(explicit string, cfg Config) string {
	if explicit != "" {
		return explicit
	}
	for _, key := range proxyEnvKeys {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return cfg.Auth.Proxy
}

// WebsocketEndpoint endpoint > region > 试用端点
func (a AuthConfig) WebsocketEndpoint() string {
	switch {
	case a.Endpoint != "":
		return a.Endpoint
	case a.Region != "":
		return azure.WebsocketEndpointByRegion(a.Region)
	default:
		return azure.DefaultEndpoint
	}
}

func (a AuthConfig) RestEndpoint() string {
	if a.Endpoint != "" {
		return a.Endpoint
	}
	return azure.RestEndpointByRegion(a.Region)
}

// VoiceListEndpoint 为空表示试用端点
func (a AuthConfig) VoiceListEndpoint() string {
	if a.Region != "" {
		return azure.VoiceListEndpointByRegion(a.Region)
	}
	return ""
}

// AuthOptions 构造认证参数，自定义头保持 profile 中的顺序
func (a AuthConfig) AuthOptions(endpoint, proxy string) azure.AuthOptions {
	return azure.NewAuthOptionsBuilder(endpoint).
		WithKey(a.Key).
		WithToken(a.Token).
		WithHeaders(a.Headers).
		WithProxy(proxy).
		Build()
}

// TLSConfig 未配置 ca_file 时返回 nil，使用系统根证书
func (a AuthConfig) TLSConfig() (*tls.Config, error) {
	if a.CAFile == "" {
		return nil, nil
	}
	data, err := os.ReadFile(a.CAFile)
	if err != nil {
		return nil, fmt.Errorf("read ca file: %w", err)
	}
	pool, err := x509.SystemCertPool()
	if err != nil {
		pool = x509.NewCertPool()
	}
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("no PEM certificates found in %s", a.CAFile)
	}
	return &tls.Config{RootCAs: pool, MinVersion: tls.VersionTLS12}, nil
}

// ClientOptions 合成器与音色列表共用的连接选项
func (a AuthConfig) ClientOptions() ([]azure.Option, error) {
	tlsConfig, err := a.TLSConfig()
	if err != nil {
		return nil, err
	}
	if tlsConfig == nil {
		return nil, nil
	}
	return []azure.Option{azure.WithTLSConfig(tlsConfig)}, nil
}

// OutputFormat format 优先，否则按容器与质量选择
func (o OutputConfig) OutputFormat() (audio.Format, error) {
	if o.Format != "" {
		return audio.ParseFormat(o.Format)
	}
	return audio.FromContainerAndQuality(o.Container, o.Quality, true)
}

// RegisterDefaultVoices 把 default_voices 注册到全局默认音色表
func (t TextConfig) RegisterDefaultVoices() {
	for locale, voice := range t.DefaultVoices {
		if locale == "" || voice == "" {
			continue
		}
		tts.RegisterDefaultVoice(locale, voice)
	}
}

// TextOptions 把 profile 中的文本参数转换为合成参数，voice 为空时按 locale 取默认音色
func (t TextConfig) TextOptions() (*tts.TextOptions, error) {
	voice, ok := tts.ResolveVoice(t.Voice, t.Locale)
	if !ok {
		return nil, fmt.Errorf("no default voice for locale %q, known locales: %s",
			t.Locale, strings.Join(tts.ListLocales(), ", "))
	}
	b := tts.NewTextOptionsBuilder(voice)

	if t.Pitch != "" {
		pitch, err := tts.ParsePitch(t.Pitch)
		if err != nil {
			return nil, err
		}
		b.WithPitch(pitch)
	}
	if t.Rate != "" {
		rate, err := tts.ParseRate(t.Rate)
		if err != nil {
			return nil, err
		}
		b.WithRate(rate)
	}
	if t.Style != "" {
		b.WithStyle(t.Style)
	}
	if t.Role != "" {
		role, err := tts.ParseRole(t.Role)
		if err != nil {
			return nil, err
		}
		b.WithRole(role)
	}
	if t.StyleDegree != nil {
		b.WithStyleDegree(*t.StyleDegree)
	}
	return b.Build(), nil
}
