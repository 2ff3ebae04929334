package main

import (
	"errors"
	"flag"
	"fmt"

	"azspeak/internal/tts/azure"
)

const (
	exitOK             = 0
	exitFailure        = 1
	exitUsage          = 2
	exitConnect        = 3
	exitRemoteClosed   = 4
	exitInvalidMessage = 5
)

// usageError 参数错误
type usageError struct {
	msg string
}

func (e *usageError) Error() string {
	return e.msg
}

func usageErrorf(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var ue *usageError
	if errors.As(err, &ue) || errors.Is(err, flag.ErrHelp) {
		return exitUsage
	}

	var se *azure.SynthesizerError
	if errors.As(err, &se) {
		switch se.Kind {
		case azure.KindConnect:
			return exitConnect
		case azure.KindWebsocketConnectionClosed:
			return exitRemoteClosed
		case azure.KindInvalidMessage:
			return exitInvalidMessage
		case azure.KindSSML:
			return exitUsage
		}
		return exitFailure
	}

	var re *azure.RestError
	if errors.As(err, &re) {
		switch re.Kind {
		case azure.RestKindConnect:
			return exitConnect
		case azure.RestKindSSML:
			return exitUsage
		}
	}
	return exitFailure
}
