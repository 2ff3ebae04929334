package tts

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Role 说话人扮演的角色，仅部分中文音色支持
type Role string

const (
	RoleGirl             Role = "Girl"
	RoleBoy              Role = "Boy"
	RoleYoungAdultFemale Role = "YoungAdultFemale"
	RoleYoungAdultMale   Role = "YoungAdultMale"
	RoleOlderAdultFemale Role = "OlderAdultFemale"
	RoleOlderAdultMale   Role = "OlderAdultMale"
	RoleSeniorFemale     Role = "SeniorFemale"
	RoleSeniorMale       Role = "SeniorMale"
)

var roles = []Role{
	RoleGirl, RoleBoy,
	RoleYoungAdultFemale, RoleYoungAdultMale,
	RoleOlderAdultFemale, RoleOlderAdultMale,
	RoleSeniorFemale, RoleSeniorMale,
}

// Roles 列出所有角色
func Roles() []Role {
	return slices.Clone(roles)
}

// ParseRole 解析角色名
func ParseRole(s string) (Role, error) {
	for _, r := range roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("tts: invalid role %q, expected one of %v", s, roles)
}

// RichSSMLOptions 非空时生成 mstts:express-as 元素
type RichSSMLOptions struct {
	Style       string
	Role        Role
	StyleDegree *float32
}

// TextOptions 文本合成参数
type TextOptions struct {
	Voice string
	// Pitch/Rate 为已经过 ParsePitch/ParseRate 处理的值，空字符串表示默认
	Pitch string
	Rate  string
	Rich  *RichSSMLOptions
}

type TextOptionsBuilder struct {
	opts TextOptions
}

func NewTextOptionsBuilder(voice string) *TextOptionsBuilder {
	return &TextOptionsBuilder{opts: TextOptions{Voice: voice}}
}

func (b *TextOptionsBuilder) WithPitch(pitch string) *TextOptionsBuilder {
	b.opts.Pitch = pitch
	return b
}

func (b *TextOptionsBuilder) WithRate(rate string) *TextOptionsBuilder {
	b.opts.Rate = rate
	return b
}

func (b *TextOptionsBuilder) WithStyle(style string) *TextOptionsBuilder {
	b.rich().Style = style
	return b
}

func (b *TextOptionsBuilder) WithRole(role Role) *TextOptionsBuilder {
	b.rich().Role = role
	return b
}

func (b *TextOptionsBuilder) WithStyleDegree(degree float32) *TextOptionsBuilder {
	b.rich().StyleDegree = &degree
	return b
}

func (b *TextOptionsBuilder) rich() *RichSSMLOptions {
	if b.opts.Rich == nil {
		b.opts.Rich = &RichSSMLOptions{}
	}
	return b.opts.Rich
}

func (b *TextOptionsBuilder) Build() *TextOptions {
	opts := b.opts
	if b.opts.Rich != nil {
		rich := *b.opts.Rich
		opts.Rich = &rich
	}
	return &opts
}

// ------------------------ Argument Parsing ------------------------

var (
	pitchKeywords = []string{"default", "x-low", "low", "medium", "high", "x-high"}
	rateKeywords  = []string{"default", "x-slow", "slow", "medium", "fast", "x-fast"}
)

func isFloat(s string) bool {
	_, err := strconv.ParseFloat(s, 32)
	return err == nil
}

// ParsePitch 接受 Hz、百分比、±st、关键字，或者小数（按百分比换算）
func ParsePitch(arg string) (string, error) {
	switch {
	case strings.HasSuffix(arg, "Hz") && isFloat(strings.TrimSuffix(arg, "Hz")),
		strings.HasSuffix(arg, "%") && isFloat(strings.TrimSuffix(arg, "%")),
		strings.HasSuffix(arg, "st") && (strings.HasPrefix(arg, "+") || strings.HasPrefix(arg, "-")) &&
			isFloat(strings.TrimSuffix(arg, "st")),
		slices.Contains(pitchKeywords, arg):
		return arg, nil
	}
	if v, err := strconv.ParseFloat(arg, 32); err == nil {
		return fmt.Sprintf("%.2f%%", float32(v)*100), nil
	}
	return "", fmt.Errorf("tts: invalid pitch %q", arg)
}

// ParseRate 接受百分比、关键字、以 f 结尾的原始倍率，或者小数（按百分比换算）
func ParseRate(arg string) (string, error) {
	switch {
	case strings.HasSuffix(arg, "%") && isFloat(strings.TrimSuffix(arg, "%")),
		slices.Contains(rateKeywords, arg):
		return arg, nil
	case strings.HasSuffix(arg, "f") && isFloat(strings.TrimSuffix(arg, "f")):
		return strings.TrimSuffix(arg, "f"), nil
	}
	if v, err := strconv.ParseFloat(arg, 32); err == nil {
		return fmt.Sprintf("%.2f%%", float32(v)*100), nil
	}
	return "", fmt.Errorf("tts: invalid rate %q", arg)
}

// ParseStyleDegree 解析风格强度，范围 [0.01, 2]
func ParseStyleDegree(arg string) (float32, error) {
	v, err := strconv.ParseFloat(arg, 32)
	if err != nil {
		return 0, fmt.Errorf("tts: invalid style degree %q: not a floating point number", arg)
	}
	degree := float32(v)
	if !ValidStyleDegree(degree) {
		return 0, fmt.Errorf("tts: invalid style degree %v: out of range [0.01, 2]", degree)
	}
	return degree, nil
}

func ValidStyleDegree(degree float32) bool {
	return degree >= 0.01 && degree <= 2.0
}
