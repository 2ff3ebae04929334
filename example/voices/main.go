package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"azspeak/internal/tts"
	"azspeak/internal/tts/azure"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := azure.NewVoiceListClient(azure.AuthOptions{})
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	voices, err := client.List(ctx)
	if err != nil {
		log.Fatalf("Failed to list voices: %v", err)
	}

	for _, v := range tts.FilterVoicesByGender(tts.FilterVoicesByLocale(voices, "en-GB"), "female") {
		if v.SupportsStyle("cheerful") {
			fmt.Println(v.String())
		}
	}
}
