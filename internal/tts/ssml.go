package tts

import (
	"bytes"
	"encoding/xml"
	"errors"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

const (
	nsSynthesis = "http://www.w3.org/2001/10/synthesis"
	nsMSTTS     = "http://www.w3.org/2001/mstts"
	nsEmotionML = "http://www.w3.org/2009/10/emotionml"

	defaultPitchRate = "0%"
	defaultStyle     = "general"
)

// SSMLError 生成 SSML 失败
type SSMLError struct {
	Err error
}

func (e *SSMLError) Error() string {
	return "tts: ssml error: " + e.Err.Error()
}

func (e *SSMLError) Unwrap() error {
	return e.Err
}

// InterpolateSSML 根据文本和参数生成完整的 SSML 文档
func InterpolateSSML(text string, opts *TextOptions) (string, error) {
	if opts == nil || strings.TrimSpace(opts.Voice) == "" {
		return "", &SSMLError{Err: errors.New("voice is required")}
	}

	var buf bytes.Buffer
	buf.WriteString(`<speak xmlns="` + nsSynthesis + `"`)
	if opts.Rich != nil {
		buf.WriteString(` xmlns:mstts="` + nsMSTTS + `"`)
	}
	buf.WriteString(` xmlns:emo="` + nsEmotionML + `" version="1.0" xml:lang="en-US">`)

	buf.WriteString(`<voice`)
	if err := writeAttr(&buf, "name", opts.Voice); err != nil {
		return "", err
	}
	buf.WriteString(`>`)

	if rich := opts.Rich; rich != nil {
		buf.WriteString(`<mstts:express-as`)
		if rich.Role != "" {
			if err := writeAttr(&buf, "role", string(rich.Role)); err != nil {
				return "", err
			}
		}
		if rich.StyleDegree != nil {
			degree := strconv.FormatFloat(float64(*rich.StyleDegree), 'f', -1, 32)
			if err := writeAttr(&buf, "styledegree", degree); err != nil {
				return "", err
			}
		}
		style := rich.Style
		if style == "" {
			style = defaultStyle
		}
		if err := writeAttr(&buf, "style", style); err != nil {
			return "", err
		}
		buf.WriteString(`>`)
	}

	buf.WriteString(`<prosody`)
	if err := writeAttr(&buf, "pitch", orDefault(opts.Pitch, defaultPitchRate)); err != nil {
		return "", err
	}
	if err := writeAttr(&buf, "rate", orDefault(opts.Rate, defaultPitchRate)); err != nil {
		return "", err
	}
	buf.WriteString(`>`)
	if err := xml.EscapeText(&buf, []byte(text)); err != nil {
		return "", &SSMLError{Err: err}
	}
	buf.WriteString(`</prosody>`)

	if opts.Rich != nil {
		buf.WriteString(`</mstts:express-as>`)
	}
	buf.WriteString(`</voice></speak>`)

	ssml := buf.String()
	logrus.Debugf("tts: created ssml: %s", ssml)
	return ssml, nil
}

func writeAttr(buf *bytes.Buffer, name, value string) error {
	buf.WriteString(` ` + name + `="`)
	if err := xml.EscapeText(buf, []byte(value)); err != nil {
		return &SSMLError{Err: err}
	}
	buf.WriteString(`"`)
	return nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
