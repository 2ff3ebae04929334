package azure

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrSynthesizerBusy 同一个会话上已有一个合成请求在进行
	ErrSynthesizerBusy = errors.New("azure: synthesizer is busy with another request")
	// ErrSynthesizerClosed 会话已关闭（主动关闭，或上一次请求失败后自动关闭）
	ErrSynthesizerClosed = errors.New("azure: synthesizer is closed")
)

const (
	// 仅用于没有任何 close 负载的情况
	unknownCloseCode   = "Unknown"
	defaultCloseReason = "The server closed the connection without a reason"
)

// ErrorKind WebSocket 合成器的错误分类
type ErrorKind int

const (
	KindConnect ErrorKind = iota
	KindWebsocketConnectionClosed
	KindWebsocket
	KindInvalidRequest
	KindInvalidMessage
	KindSSML
	// KindStreamEnded 连接在 turn.end 之前结束且没有 close 帧
	KindStreamEnded
)

func (k ErrorKind) String() string {
	switch k {
	case KindConnect:
		return "connect"
	case KindWebsocketConnectionClosed:
		return "websocket connection closed"
	case KindWebsocket:
		return "websocket"
	case KindInvalidRequest:
		return "invalid request"
	case KindInvalidMessage:
		return "invalid message"
	case KindSSML:
		return "ssml"
	case KindStreamEnded:
		return "stream ended"
	default:
		return "unknown"
	}
}

// SynthesizerError WebSocket 合成器返回的错误
type SynthesizerError struct {
	Kind ErrorKind
	// Code/Reason 仅 KindWebsocketConnectionClosed 使用
	Code   string
	Reason string
	Err    error
}

func (e *SynthesizerError) Error() string {
	msg := "azure: websocket synthesizer error: "
	switch e.Kind {
	case KindConnect:
		msg += "error while connecting to the server"
	case KindWebsocketConnectionClosed:
		msg += fmt.Sprintf("the websocket connection was closed with code %s: %s", e.Code, e.Reason)
	case KindInvalidRequest:
		msg += "an invalid request was constructed"
	case KindInvalidMessage:
		msg += "the server sent a message that could not be parsed"
	case KindStreamEnded:
		msg += "the connection ended before the turn was complete"
	default:
		msg += e.Kind.String() + " error"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SynthesizerError) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, err error) *SynthesizerError {
	return &SynthesizerError{Kind: kind, Err: err}
}

// RestErrorKind REST 合成器与音色列表的错误分类
type RestErrorKind int

const (
	RestKindConnect RestErrorKind = iota
	RestKindInvalidRequest
	RestKindUnauthorized
	RestKindUnsupportedMediaType
	RestKindTooManyRequests
	RestKindOtherHTTP
	RestKindConnection
	RestKindSSML
)

func (k RestErrorKind) String() string {
	switch k {
	case RestKindConnect:
		return "connect"
	case RestKindInvalidRequest:
		return "invalid request"
	case RestKindUnauthorized:
		return "unauthorized"
	case RestKindUnsupportedMediaType:
		return "unsupported media type"
	case RestKindTooManyRequests:
		return "too many requests"
	case RestKindOtherHTTP:
		return "http"
	case RestKindConnection:
		return "connection"
	case RestKindSSML:
		return "ssml"
	default:
		return "unknown"
	}
}

// RestError REST 请求返回的错误
type RestError struct {
	Kind RestErrorKind
	// Status 仅 HTTP 状态错误时非零
	Status int
	Body   string
	Err    error
}

func (e *RestError) Error() string {
	msg := "azure: rest error: "
	switch e.Kind {
	case RestKindConnect:
		msg += "error while connecting to the server"
	case RestKindInvalidRequest:
		msg += "an invalid request was constructed or the server reported 400"
	case RestKindUnauthorized:
		msg += "unauthorized, check the auth key or token"
	default:
		msg += e.Kind.String() + " error"
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Body != "" {
		msg += ": " + e.Body
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RestError) Unwrap() error {
	return e.Err
}

func restStatusKind(status int) RestErrorKind {
	switch status {
	case http.StatusBadRequest:
		return RestKindInvalidRequest
	case http.StatusUnauthorized:
		return RestKindUnauthorized
	case http.StatusUnsupportedMediaType:
		return RestKindUnsupportedMediaType
	case http.StatusTooManyRequests:
		return RestKindTooManyRequests
	default:
		return RestKindOtherHTTP
	}
}
