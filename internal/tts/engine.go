package tts

import (
	"context"
)

// Synthesizer 统一的合成接口，WebSocket 与 REST 两种实现可以互换
type Synthesizer interface {
	SynthesizeSSML(ctx context.Context, ssml string) ([]byte, error)
	SynthesizeText(ctx context.Context, text string, opts *TextOptions) ([]byte, error)
	Close() error
}
