package azure

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const scopeName = "azspeak/internal/tts/azure"

var (
	tracer = otel.Tracer(scopeName)
	meter  = otel.Meter(scopeName)

	audioBytesCounter = mustInt64Counter("azspeak.synthesis.audio_bytes",
		metric.WithDescription("Audio bytes returned by the speech service"),
		metric.WithUnit("By"))
	synthesisDuration = mustFloat64Histogram("azspeak.synthesis.duration",
		metric.WithDescription("Time from sending the request to receiving the last audio chunk"),
		metric.WithUnit("s"))
)

func mustInt64Counter(name string, opts ...metric.Int64CounterOption) metric.Int64Counter {
	c, err := meter.Int64Counter(name, opts...)
	if err != nil {
		return noop.Int64Counter{}
	}
	return c
}

func mustFloat64Histogram(name string, opts ...metric.Float64HistogramOption) metric.Float64Histogram {
	h, err := meter.Float64Histogram(name, opts...)
	if err != nil {
		return noop.Float64Histogram{}
	}
	return h
}
