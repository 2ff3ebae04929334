package ws

import (
	"fmt"
)

// ConnectErrorKind 连接阶段的错误分类
type ConnectErrorKind int

const (
	KindBadURL ConnectErrorKind = iota
	KindUnsupportedScheme
	KindRequestConstruction
	KindBadResponse
	KindConnection
)

func (k ConnectErrorKind) String() string {
	switch k {
	case KindBadURL:
		return "bad url"
	case KindUnsupportedScheme:
		return "unsupported scheme"
	case KindRequestConstruction:
		return "request construction"
	case KindBadResponse:
		return "bad response from proxy"
	case KindConnection:
		return "connection"
	default:
		return "unknown"
	}
}

// ConnectError 建立传输层（直连/代理/握手）时产生的错误，底层原因通过 Unwrap 保留
type ConnectError struct {
	Kind ConnectErrorKind
	// URL 仅在 KindBadURL 时有意义
	URL string
	// Scheme 仅在 KindUnsupportedScheme 时有意义，可能为空
	Scheme string
	Err    error
}

func (e *ConnectError) Error() string {
	msg := "ws: connect error: " + e.Kind.String()
	switch e.Kind {
	case KindBadURL:
		msg += fmt.Sprintf(" %q", e.URL)
	case KindUnsupportedScheme:
		if e.Scheme != "" {
			msg += fmt.Sprintf(" %q", e.Scheme)
		} else {
			msg += " (none)"
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

func connectErr(kind ConnectErrorKind, err error) *ConnectError {
	return &ConnectError{Kind: kind, Err: err}
}
