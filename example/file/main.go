package main

import (
	"context"
	"log"
	"os"
	"time"

	"azspeak/internal/audio"
	"azspeak/internal/tts"
	"azspeak/internal/tts/azure"

	"github.com/joho/godotenv"
)

// 通过 REST 接口合成并保存为 mp3，需要 AZURE_SPEECH_KEY 与 AZURE_SPEECH_REGION
func main() {
	godotenv.Load()

	key := os.Getenv("AZURE_SPEECH_KEY")
	region := os.Getenv("AZURE_SPEECH_REGION")
	if key == "" || region == "" {
		log.Fatal("AZURE_SPEECH_KEY and AZURE_SPEECH_REGION must be set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	format, err := audio.FromContainerAndQuality("mp3", 2, false)
	if err != nil {
		log.Fatalf("Failed to pick format: %v", err)
	}

	auth := azure.NewAuthOptionsBuilder(azure.RestEndpointByRegion(region)).WithKey(key).Build()
	synthesizer, err := azure.NewSynthesizerConfig(auth, format).RestSynthesizer()
	if err != nil {
		log.Fatalf("Failed to create synthesizer: %v", err)
	}
	defer synthesizer.Close()

	voice, _ := tts.GetDefaultVoice("zh-CN")
	opts := tts.NewTextOptionsBuilder(voice).
		WithRole(tts.RoleGirl).
		WithStyleDegree(1.5).
		Build()

	data, err := synthesizer.SynthesizeText(ctx, "你好，这段语音会被保存到文件里。", opts)
	if err != nil {
		log.Fatalf("Failed to synthesize: %v", err)
	}

	if err := os.WriteFile("output.mp3", data, 0o644); err != nil {
		log.Fatalf("Failed to write output: %v", err)
	}
	log.Printf("saved %d bytes to output.mp3", len(data))
}
