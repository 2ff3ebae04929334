package main

import (
	"bufio"
	"context"
	"log"
	"os"
	"os/signal"
	"strings"

	"azspeak/internal/audio"
	"azspeak/internal/tts"
	"azspeak/internal/tts/azure"
)

// 从标准输入逐行朗读，所有行复用同一个连接
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	auth := azure.NewAuthOptionsBuilder(azure.DefaultEndpoint).Build()
	config := azure.NewSynthesizerConfig(auth, audio.Audio24Khz48KBitRateMonoMp3)

	synthesizer, err := config.Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer func() { synthesizer.Close() }()

	player := tts.NewPlayer()
	opts := tts.NewTextOptionsBuilder("en-US-GuyNeural").Build()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		data, err := synthesizer.SynthesizeText(ctx, line, opts)
		if err != nil {
			// 失败后会话已关闭，重新连接
			log.Printf("Failed to synthesize %q: %v", line, err)
			if synthesizer, err = config.Connect(ctx); err != nil {
				log.Fatalf("Failed to reconnect: %v", err)
			}
			continue
		}

		if err := player.Play(ctx, data, config.Format()); err != nil {
			log.Fatalf("Failed to play: %v", err)
		}
	}
}
