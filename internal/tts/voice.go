package tts

import (
	"fmt"
	"slices"
	"strings"
)

// Voice 音色列表接口返回的单个音色
type Voice struct {
	DisplayName     string   `json:"DisplayName"`
	Gender          string   `json:"Gender"`
	LocalName       string   `json:"LocalName"`
	Locale          string   `json:"Locale"`
	LocaleName      string   `json:"LocaleName"`
	Name            string   `json:"Name"`
	SampleRateHertz string   `json:"SampleRateHertz"`
	ShortName       string   `json:"ShortName"`
	Status          string   `json:"Status"`
	VoiceType       string   `json:"VoiceType"`
	WordsPerMinute  string   `json:"WordsPerMinute,omitempty"`
	StyleList       []string `json:"StyleList,omitempty"`
	RolePlayList    []string `json:"RolePlayList,omitempty"`
}

// SupportsStyle 检查是否支持指定的风格
func (v *Voice) SupportsStyle(style string) bool {
	if style == "" || style == defaultStyle {
		return true
	}
	return slices.Contains(v.StyleList, style)
}

// SupportsRole 检查是否支持指定的角色
func (v *Voice) SupportsRole(role Role) bool {
	if role == "" {
		return true
	}
	return slices.Contains(v.RolePlayList, string(role))
}

func (v *Voice) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", v.ShortName)
	fmt.Fprintf(&b, "Display name: %s\n", v.DisplayName)
	if v.LocalName != v.DisplayName {
		fmt.Fprintf(&b, "Local name: %s @ %s\n", v.LocalName, v.LocaleName)
	}
	fmt.Fprintf(&b, "Locale: %s\n", v.Locale)
	fmt.Fprintf(&b, "Gender: %s\n", v.Gender)
	fmt.Fprintf(&b, "ID: %s\n", v.Name)
	fmt.Fprintf(&b, "Voice type: %s\n", v.VoiceType)
	fmt.Fprintf(&b, "Status: %s\n", v.Status)
	fmt.Fprintf(&b, "Sample rate: %sHz\n", v.SampleRateHertz)
	if v.WordsPerMinute != "" {
		fmt.Fprintf(&b, "Words per minute: %s\n", v.WordsPerMinute)
	}
	if len(v.StyleList) > 0 {
		fmt.Fprintf(&b, "Styles: %s\n", strings.Join(v.StyleList, ", "))
	}
	if len(v.RolePlayList) > 0 {
		fmt.Fprintf(&b, "Roles: %s\n", strings.Join(v.RolePlayList, ", "))
	}
	return b.String()
}

// FilterVoicesByLocale 按语言区域过滤
func FilterVoicesByLocale(voices []Voice, locale string) []Voice {
	var out []Voice
	for _, v := range voices {
		if v.Locale == locale {
			out = append(out, v)
		}
	}
	return out
}

// FilterVoicesByName 按短名称过滤
func FilterVoicesByName(voices []Voice, shortName string) []Voice {
	var out []Voice
	for _, v := range voices {
		if v.ShortName == shortName {
			out = append(out, v)
		}
	}
	return out
}

// FilterVoicesByGender 按性别过滤（不区分大小写）
func FilterVoicesByGender(voices []Voice, gender string) []Voice {
	var out []Voice
	for _, v := range voices {
		if strings.EqualFold(v.Gender, gender) {
			out = append(out, v)
		}
	}
	return out
}
