package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"azspeak/internal/audio"
	"azspeak/internal/config"
	"azspeak/internal/tts"
	"azspeak/internal/tts/azure"

	"github.com/sirupsen/logrus"
)

// speakOptions text 与 ssml 共用的参数
type speakOptions struct {
	profile profileFlags
	auth    authFlags
	input   inputFlags
	output  outputFlags
}

func (o *speakOptions) bind(fs *flag.FlagSet) {
	o.profile.bind(fs)
	o.auth.bind(fs)
	o.input.bind(fs)
	o.output.bind(fs)
}

func runText(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("text", flag.ContinueOnError)
	var opts speakOptions
	var text textFlags
	opts.bind(fs)
	text.bind(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := opts.load(fs)
	if err != nil {
		return err
	}
	if err := text.apply(&cfg); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return &usageError{msg: err.Error()}
	}

	cfg.Text.RegisterDefaultVoices()
	textOpts, err := cfg.Text.TextOptions()
	if err != nil {
		return &usageError{msg: err.Error()}
	}
	input, err := opts.input.read(fs, os.Stdin)
	if err != nil {
		return err
	}

	return speak(ctx, cfg, opts.output, func(s tts.Synthesizer) ([]byte, error) {
		return s.SynthesizeText(ctx, input, textOpts)
	})
}

func runSSML(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ssml", flag.ContinueOnError)
	var opts speakOptions
	opts.bind(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := opts.load(fs)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return &usageError{msg: err.Error()}
	}

	ssml, err := opts.input.read(fs, os.Stdin)
	if err != nil {
		return err
	}

	return speak(ctx, cfg, opts.output, func(s tts.Synthesizer) ([]byte, error) {
		return s.SynthesizeSSML(ctx, ssml)
	})
}

func (o *speakOptions) load(fs *flag.FlagSet) (config.Config, error) {
	cfg, err := o.profile.load()
	if err != nil {
		return cfg, err
	}
	o.profile.setup(cfg)
	o.auth.apply(&cfg)
	o.output.apply(fs, &cfg)
	logrus.Debugf("cli: effective config: mode=%s endpoint=%s region=%s", cfg.Auth.Mode, cfg.Auth.Endpoint, cfg.Auth.Region)
	return cfg, nil
}

// speak 建立合成器、合成并输出到文件或扬声器
func speak(ctx context.Context, cfg config.Config, out outputFlags, synthesize func(tts.Synthesizer) ([]byte, error)) error {
	format, err := cfg.Output.OutputFormat()
	if err != nil {
		return &usageError{msg: err.Error()}
	}

	if out.output != "" {
		if err := checkOutput(out.output, out.overwrite); err != nil {
			return err
		}
	}

	synthesizer, err := newSynthesizer(ctx, cfg, format)
	if err != nil {
		return err
	}
	defer synthesizer.Close()

	data, err := synthesize(synthesizer)
	if err != nil {
		var se *azure.SynthesizerError
		if errors.As(err, &se) && se.Kind == azure.KindWebsocketConnectionClosed && se.Code == "1006" {
			logrus.Warn("cli: the connection was reset, usually a poor network or the trial service rejecting a long input")
		}
		return err
	}

	if out.output != "" {
		if err := writeOutput(out.output, data, out.overwrite); err != nil {
			return err
		}
		logrus.Infof("cli: wrote %d bytes to %s", len(data), out.output)
		return nil
	}
	return tts.NewPlayer().Play(ctx, data, format)
}

// checkOutput 合成前检查输出路径，不创建也不修改任何文件
func checkOutput(path string, overwrite bool) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("check output: %w", err)
	case info.IsDir():
		return usageErrorf("output %s is a directory", path)
	case !overwrite:
		return usageErrorf("output file %s already exists, use -overwrite", path)
	}
	return nil
}

// writeOutput 合成成功后才落盘；覆盖时先写临时文件再 rename，失败不会留下半个文件
func writeOutput(path string, data []byte, overwrite bool) error {
	if !overwrite {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			return usageErrorf("output file %s already exists, use -overwrite", path)
		}
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		_, err = f.Write(data)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			_ = os.Remove(path)
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(data)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Chmod(tmp.Name(), 0o644)
	}
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace output: %w", err)
	}
	return nil
}

func newSynthesizer(ctx context.Context, cfg config.Config, format audio.Format) (tts.Synthesizer, error) {
	clientOpts, err := cfg.Auth.ClientOptions()
	if err != nil {
		return nil, &usageError{msg: err.Error()}
	}
	if cfg.Auth.Mode == config.ModeRest {
		auth := cfg.Auth.AuthOptions(cfg.Auth.RestEndpoint(), cfg.Auth.Proxy)
		s, err := azure.NewSynthesizerConfig(auth, format, clientOpts...).RestSynthesizer()
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	auth := cfg.Auth.AuthOptions(cfg.Auth.WebsocketEndpoint(), cfg.Auth.Proxy)
	s, err := azure.NewSynthesizerConfig(auth, format, clientOpts...).Connect(ctx)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func runListVoices(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list-voices", flag.ContinueOnError)
	var profile profileFlags
	var auth authFlags
	var voice, locale, gender string
	profile.bind(fs)
	auth.bind(fs)
	fs.StringVar(&voice, "voice", "", "voice to list, default to all voices")
	fs.StringVar(&locale, "l", "", "locale to list, default to all locales")
	fs.StringVar(&gender, "gender", "", "only list voices of this gender")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if voice != "" && locale != "" {
		return usageErrorf("-voice and -l are mutually exclusive")
	}

	cfg, err := profile.load()
	if err != nil {
		return err
	}
	profile.setup(cfg)
	auth.apply(&cfg)

	// 音色列表只认区域，自定义 endpoint 指向的是合成接口
	clientOpts, err := cfg.Auth.ClientOptions()
	if err != nil {
		return &usageError{msg: err.Error()}
	}
	client, err := azure.NewVoiceListClient(cfg.Auth.AuthOptions(cfg.Auth.VoiceListEndpoint(), cfg.Auth.Proxy), clientOpts...)
	if err != nil {
		return err
	}
	voices, err := client.List(ctx)
	if err != nil {
		return err
	}

	switch {
	case locale != "":
		voices = tts.FilterVoicesByLocale(voices, locale)
	case voice != "":
		voices = tts.FilterVoicesByName(voices, voice)
	}
	if gender != "" {
		voices = tts.FilterVoicesByGender(voices, gender)
	}
	for i := range voices {
		fmt.Println(voices[i].String())
	}
	return nil
}

func runListFormats(args []string) error {
	fs := flag.NewFlagSet("list-formats", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	printFormats(os.Stdout)
	return nil
}

func printFormats(w io.Writer) {
	for _, f := range audio.Formats() {
		fmt.Fprintln(w, f)
	}
}

func runListQualities(args []string) error {
	fs := flag.NewFlagSet("list-qualities", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	printQualities(os.Stdout)
	return nil
}

func printQualities(w io.Writer) {
	for _, container := range audio.Containers() {
		fmt.Fprintf(w, "Qualities for %s:\n", strings.ToUpper(container))
		qualities, _ := audio.Qualities(container)
		levels := make([]int, 0, len(qualities))
		for q := range qualities {
			levels = append(levels, q)
		}
		sort.Ints(levels)
		for _, q := range levels {
			fmt.Fprintf(w, "%3d: %s\n", q, qualities[q])
		}
		fmt.Fprintln(w)
	}
}

func runConfig(args []string) error {
	if len(args) == 0 {
		return usageErrorf("expected 'config init' or 'config where'")
	}

	switch args[0] {
	case "where":
		path, err := config.DefaultPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	case "init":
		fs := flag.NewFlagSet("config init", flag.ContinueOnError)
		var path string
		var overwrite bool
		fs.StringVar(&path, "path", "", "path to the new profile, default to the user config dir")
		fs.BoolVar(&overwrite, "overwrite", false, "overwrite an existing profile")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		return initProfile(path, overwrite)
	default:
		return usageErrorf("unknown config command %q", args[0])
	}
}

func initProfile(path string, overwrite bool) error {
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if _, err := os.Stat(path); err == nil && !overwrite {
		return usageErrorf("profile %s already exists, use -overwrite", path)
	}
	if err := config.Save(path, config.Default()); err != nil {
		return err
	}
	fmt.Println("profile created at", path)
	return nil
}
