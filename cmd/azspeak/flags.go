package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"azspeak/internal/config"
	"azspeak/internal/tts"
	"azspeak/internal/tts/azure"
)

// headerFlag 可重复的 -H "Name: Value"，按出现顺序保留
type headerFlag []azure.Header

func (h *headerFlag) String() string {
	if h == nil {
		return ""
	}
	parts := make([]string, 0, len(*h))
	for _, header := range *h {
		parts = append(parts, header.Name+": "+header.Value)
	}
	return strings.Join(parts, ", ")
}

func (h *headerFlag) Set(s string) error {
	name, value, ok := strings.Cut(s, ":")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return fmt.Errorf("invalid header %q, expected \"Name: Value\"", s)
	}
	*h = append(*h, azure.Header{Name: name, Value: strings.TrimSpace(value)})
	return nil
}

type profileFlags struct {
	path      string
	noProfile bool
	logLevel  string
	verbose   bool
}

func (p *profileFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&p.path, "profile", "", "profile to use, default to the profile in the user config dir")
	fs.BoolVar(&p.noProfile, "no-profile", false, "do not load any profile")
	fs.StringVar(&p.logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	fs.BoolVar(&p.verbose, "v", false, "verbose output, same as -log-level debug")
}

// load 读取 profile，显式指定的 profile 必须存在
func (p *profileFlags) load() (config.Config, error) {
	if p.noProfile {
		if p.path != "" {
			return config.Config{}, usageErrorf("-profile and -no-profile are mutually exclusive")
		}
		return config.Load("")
	}
	if p.path != "" {
		return config.Load(p.path)
	}
	path, err := config.DefaultPath()
	if err != nil {
		return config.Load("")
	}
	return config.LoadOptional(path)
}

func (p *profileFlags) setup(cfg config.Config) {
	level := cfg.LogLevel
	if p.logLevel != "" {
		level = p.logLevel
	}
	setupLogging(level, p.verbose)
}

type authFlags struct {
	mode     string
	endpoint string
	region   string
	token    string
	key      string
	proxy    string
	caFile   string
	headers  headerFlag
}

func (a *authFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&a.mode, "mode", "", "transport: websocket or rest")
	fs.StringVar(&a.endpoint, "endpoint", "", "endpoint of the TTS API")
	fs.StringVar(&a.region, "region", "", "region of an official endpoint, instead of a full endpoint url")
	fs.StringVar(&a.token, "token", "", "auth token for the speech service")
	fs.StringVar(&a.key, "key", "", "speech resource key")
	fs.StringVar(&a.proxy, "proxy", "", "proxy url (socks5, http or https)")
	fs.StringVar(&a.caFile, "ca-file", "", "extra PEM root certificates to trust")
	fs.Var(&a.headers, "H", "additional request header \"Name: Value\", repeatable")
}

// apply 命令行参数覆盖 profile
func (a *authFlags) apply(cfg *config.Config) {
	if a.mode != "" {
		cfg.Auth.Mode = a.mode
	}
	if a.endpoint != "" {
		cfg.Auth.Endpoint = a.endpoint
		cfg.Auth.Region = ""
	}
	if a.region != "" {
		cfg.Auth.Region = a.region
		cfg.Auth.Endpoint = ""
	}
	if a.token != "" {
		cfg.Auth.Token = a.token
	}
	if a.key != "" {
		cfg.Auth.Key = a.key
	}
	if len(a.headers) > 0 {
		cfg.Auth.Headers = a.headers
	}
	if a.caFile != "" {
		cfg.Auth.CAFile = a.caFile
	}
	cfg.Auth.Proxy = config.ResolveProxy(a.proxy, *cfg)
}

type inputFlags struct {
	file string
}

func (i *inputFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&i.file, "f", "", "text/SSML file to speak, default to stdin")
}

// read 位置参数优先，其次是文件，最后是标准输入
func (i *inputFlags) read(fs *flag.FlagSet, stdin io.Reader) (string, error) {
	if fs.NArg() > 0 {
		if i.file != "" {
			return "", usageErrorf("an argument and -f are mutually exclusive")
		}
		return strings.Join(fs.Args(), " "), nil
	}

	r := stdin
	if i.file != "" && i.file != "-" {
		f, err := os.Open(i.file)
		if err != nil {
			return "", fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read input: %w", err)
	}
	return string(data), nil
}

type outputFlags struct {
	output    string
	format    string
	container string
	quality   int
	overwrite bool
}

func (o *outputFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&o.output, "o", "", "output file path, default to playing the audio")
	fs.StringVar(&o.format, "F", "", "output audio format (experts only), see list-formats")
	fs.StringVar(&o.container, "c", "", "container format: wav, mp3, ogg, webm")
	fs.IntVar(&o.quality, "q", 0, "output quality, see list-qualities")
	fs.BoolVar(&o.overwrite, "overwrite", false, "overwrite an existing output file")
}

func (o *outputFlags) apply(fs *flag.FlagSet, cfg *config.Config) {
	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if o.format != "" {
		cfg.Output.Format = o.format
	}
	if o.container != "" {
		cfg.Output.Container = o.container
		cfg.Output.Format = ""
	}
	if set["q"] {
		cfg.Output.Quality = o.quality
		if o.format == "" {
			cfg.Output.Format = ""
		}
	}
}

type textFlags struct {
	voice       string
	locale      string
	pitch       string
	rate        string
	style       string
	role        string
	styleDegree string
}

func (t *textFlags) bind(fs *flag.FlagSet) {
	fs.StringVar(&t.voice, "voice", "", "voice to use")
	fs.StringVar(&t.locale, "l", "", "locale to use, default to en-US")
	fs.StringVar(&t.pitch, "p", "", "pitch: Hz, %, +/-st, a keyword or a relative float")
	fs.StringVar(&t.rate, "r", "", "rate: %, a keyword, a float or a raw multiplier ending in f")
	fs.StringVar(&t.style, "S", "", "speaking style, default to general")
	fs.StringVar(&t.role, "R", "", "role play, only works for some Chinese voices")
	fs.StringVar(&t.styleDegree, "d", "", "intensity of the speaking style, in [0.01, 2]")
}

func (t *textFlags) apply(cfg *config.Config) error {
	if t.voice != "" && t.locale != "" {
		return usageErrorf("-voice and -l are mutually exclusive")
	}
	if t.voice != "" {
		cfg.Text.Voice = t.voice
	}
	if t.locale != "" {
		cfg.Text.Locale = t.locale
		cfg.Text.Voice = ""
	}
	if t.pitch != "" {
		cfg.Text.Pitch = t.pitch
	}
	if t.rate != "" {
		cfg.Text.Rate = t.rate
	}
	if t.style != "" {
		cfg.Text.Style = t.style
	}
	if t.role != "" {
		cfg.Text.Role = t.role
	}
	if t.styleDegree != "" {
		degree, err := tts.ParseStyleDegree(t.styleDegree)
		if err != nil {
			return &usageError{msg: err.Error()}
		}
		cfg.Text.StyleDegree = &degree
	}
	return nil
}
