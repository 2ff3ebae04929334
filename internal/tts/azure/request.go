package azure

import (
	"encoding/json"

	"azspeak/internal/audio"
)

// SynthesisContext synthesis.context 帧的 JSON 内容
type SynthesisContext struct {
	Synthesis Synthesis `json:"synthesis"`
}

type Synthesis struct {
	Audio AudioContext `json:"audio"`
}

type AudioContext struct {
	MetadataOptions MetadataOptions `json:"metadataOptions"`
	OutputFormat    audio.Format    `json:"outputFormat"`
}

// MetadataOptions 服务端是否额外推送边界/会话结束元数据；会话只处理音频，始终关闭
type MetadataOptions struct {
	SentenceBoundaryEnabled bool `json:"sentenceBoundaryEnabled"`
	WordBoundaryEnabled     bool `json:"wordBoundaryEnabled"`
	SessionEndEnabled       bool `json:"sessionEndEnabled"`
}

type SynthesisContextBuilder struct {
	ctx SynthesisContext
}

func NewSynthesisContextBuilder(format audio.Format) *SynthesisContextBuilder {
	return &SynthesisContextBuilder{
		ctx: SynthesisContext{
			Synthesis: Synthesis{
				Audio: AudioContext{OutputFormat: format},
			},
		},
	}
}

func (b *SynthesisContextBuilder) Build() *SynthesisContext {
	ctx := b.ctx
	return &ctx
}

func (c *SynthesisContext) Marshal() ([]byte, error) {
	return json.Marshal(c)
}
