package main

import (
	"context"
	"log"
	"time"

	"azspeak/internal/audio"
	"azspeak/internal/tts"
	"azspeak/internal/tts/azure"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// 试用端点，不需要 key
	auth := azure.NewAuthOptionsBuilder(azure.DefaultEndpoint).Build()
	synthesizer, err := azure.NewSynthesizerConfig(auth, audio.Riff24Khz16BitMonoPcm).Connect(ctx)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer synthesizer.Close()

	opts := tts.NewTextOptionsBuilder("en-US-JennyNeural").
		WithRate("fast").
		WithStyle("cheerful").
		Build()

	data, err := synthesizer.SynthesizeText(ctx, "Hello, world! This is a simple example.", opts)
	if err != nil {
		log.Fatalf("Failed to synthesize: %v", err)
	}

	if err := tts.NewPlayer().Play(ctx, data, synthesizer.Format()); err != nil {
		log.Fatalf("Failed to play: %v", err)
	}
}
