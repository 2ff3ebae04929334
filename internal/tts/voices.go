package tts

import (
	"sort"
	"strings"
	"sync"
)

// 每个语言区域的默认音色，仅在未指定音色时使用
var (
	defaultVoicesMu sync.RWMutex
	defaultVoices   = map[string]string{
		"ar-SA": "ar-SA-ZariyahNeural",
		"de-DE": "de-DE-KatjaNeural",
		"en-AU": "en-AU-NatashaNeural",
		"en-CA": "en-CA-ClaraNeural",
		"en-GB": "en-GB-SoniaNeural",
		"en-IN": "en-IN-NeerjaNeural",
		"en-US": "en-US-JennyNeural",
		"es-ES": "es-ES-ElviraNeural",
		"es-MX": "es-MX-DaliaNeural",
		"fr-CA": "fr-CA-SylvieNeural",
		"fr-FR": "fr-FR-DeniseNeural",
		"hi-IN": "hi-IN-SwaraNeural",
		"id-ID": "id-ID-GadisNeural",
		"it-IT": "it-IT-ElsaNeural",
		"ja-JP": "ja-JP-NanamiNeural",
		"ko-KR": "ko-KR-SunHiNeural",
		"nl-NL": "nl-NL-ColetteNeural",
		"pl-PL": "pl-PL-AgnieszkaNeural",
		"pt-BR": "pt-BR-FranciscaNeural",
		"pt-PT": "pt-PT-RaquelNeural",
		"ru-RU": "ru-RU-SvetlanaNeural",
		"sv-SE": "sv-SE-SofieNeural",
		"th-TH": "th-TH-PremwadeeNeural",
		"tr-TR": "tr-TR-EmelNeural",
		"uk-UA": "uk-UA-PolinaNeural",
		"vi-VN": "vi-VN-HoaiMyNeural",
		"zh-CN": "zh-CN-XiaoxiaoNeural",
		"zh-HK": "zh-HK-HiuMaanNeural",
		"zh-TW": "zh-TW-HsiaoChenNeural",
	}
)

// DefaultLocale 未指定语言区域时使用
const DefaultLocale = "en-US"

// GetDefaultVoice 根据语言区域获取默认音色，区域名不区分大小写
func GetDefaultVoice(locale string) (string, bool) {
	defaultVoicesMu.RLock()
	defer defaultVoicesMu.RUnlock()
	if v, ok := defaultVoices[locale]; ok {
		return v, true
	}
	for k, v := range defaultVoices {
		if strings.EqualFold(k, locale) {
			return v, true
		}
	}
	return "", false
}

// RegisterDefaultVoice 注册或覆盖某个语言区域的默认音色
func RegisterDefaultVoice(locale, voice string) {
	defaultVoicesMu.Lock()
	defer defaultVoicesMu.Unlock()
	defaultVoices[locale] = voice
}

// ListLocales 列出所有有默认音色的语言区域
func ListLocales() []string {
	defaultVoicesMu.RLock()
	defer defaultVoicesMu.RUnlock()
	locales := make([]string, 0, len(defaultVoices))
	for locale := range defaultVoices {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	return locales
}

// ResolveVoice 显式音色优先，其次是语言区域的默认音色，最后是 en-US 的默认音色
func ResolveVoice(voice, locale string) (string, bool) {
	if voice != "" {
		return voice, true
	}
	if locale == "" {
		locale = DefaultLocale
	}
	return GetDefaultVoice(locale)
}
