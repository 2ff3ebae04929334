package audio

import (
	"fmt"
	"sort"
)

// QualityMap 质量等级到格式的映射
type QualityMap map[int]Format

type qualityRange struct {
	min, max int
}

// 以下表只读
var (
	wavQualityMap = QualityMap{
		-2: Riff8Khz16BitMonoPcm,
		-1: Riff16Khz16BitMonoPcm,
		0:  Riff24Khz16BitMonoPcm,
		1:  Riff24Khz16BitMonoPcm,
	}

	mp3QualityMap = QualityMap{
		-4: Audio16Khz32KBitRateMonoMp3,
		-3: Audio16Khz64KBitRateMonoMp3,
		-2: Audio16Khz128KBitRateMonoMp3,
		-1: Audio24Khz48KBitRateMonoMp3,
		0:  Audio24Khz96KBitRateMonoMp3,
		1:  Audio24Khz160KBitRateMonoMp3,
		2:  Audio48Khz96KBitRateMonoMp3,
		3:  Audio48Khz192KBitRateMonoMp3,
	}

	oggQualityMap = QualityMap{
		-1: Ogg16Khz16BitMonoOpus,
		0:  Ogg24Khz16BitMonoOpus,
		1:  Ogg48Khz16BitMonoOpus,
	}

	webmQualityMap = QualityMap{
		-1: Webm16Khz16BitMonoOpus,
		0:  Webm24Khz16BitMonoOpus,
		1:  Webm24Khz16Bit24KbpsMonoOpus,
	}

	qualityMaps = map[string]QualityMap{
		"wav":  wavQualityMap,
		"mp3":  mp3QualityMap,
		"ogg":  oggQualityMap,
		"webm": webmQualityMap,
	}

	qualityRanges = map[string]qualityRange{
		"wav":  {-2, 1},
		"mp3":  {-4, 3},
		"ogg":  {-1, 1},
		"webm": {-1, 1},
	}
)

// Containers 支持按质量选择格式的容器
func Containers() []string {
	names := make([]string, 0, len(qualityMaps))
	for name := range qualityMaps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Qualities 返回容器的质量表（拷贝）
func Qualities(container string) (QualityMap, bool) {
	m, ok := qualityMaps[container]
	if !ok {
		return nil, false
	}
	out := make(QualityMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out, true
}

// QualityRange 返回容器的质量范围
func QualityRange(container string) (min, max int, ok bool) {
	r, ok := qualityRanges[container]
	return r.min, r.max, ok
}

// FromContainerAndQuality 按容器和质量等级选择格式。
// useClosest 为 true 时越界的质量会被钳到范围边界。
func FromContainerAndQuality(container string, quality int, useClosest bool) (Format, error) {
	m, ok := qualityMaps[container]
	if !ok {
		return "", fmt.Errorf("audio: no quality map found for container %q", container)
	}
	if f, ok := m[quality]; ok {
		return f, nil
	}
	if !useClosest {
		return "", fmt.Errorf("audio: invalid quality %d for container %q", quality, container)
	}
	r := qualityRanges[container]
	closest := r.max
	if quality < r.min {
		closest = r.min
	}
	return m[closest], nil
}
