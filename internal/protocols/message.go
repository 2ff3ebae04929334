package protocols

import (
	"fmt"

	"azspeak/pkg/ws"
)

// Kind 入站消息类型
type Kind int

const (
	KindTurnStart Kind = iota
	KindResponse
	KindAudio
	KindTurnEnd
	KindClose
	KindPing
	KindPong
)

func (k Kind) String() string {
	switch k {
	case KindTurnStart:
		return "TurnStart"
	case KindResponse:
		return "Response"
	case KindAudio:
		return "Audio"
	case KindTurnEnd:
		return "TurnEnd"
	case KindClose:
		return "Close"
	case KindPing:
		return "Ping"
	case KindPong:
		return "Pong"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Message 解码后的协议消息
type Message struct {
	Kind Kind
	// Body 仅 KindResponse 使用
	Body string
	// Data 仅 KindAudio 使用
	Data []byte
	// Close 仅 KindClose 使用，对端未附带状态码时为 nil
	Close *ws.CloseInfo
}

func (m *Message) String() string {
	switch m.Kind {
	case KindAudio:
		return fmt.Sprintf("Audio(%d bytes)", len(m.Data))
	case KindResponse:
		return fmt.Sprintf("Response(%d bytes)", len(m.Body))
	case KindClose:
		if m.Close != nil {
			return fmt.Sprintf("Close(%d, %q)", m.Close.Code, m.Close.Reason)
		}
		return "Close"
	default:
		return m.Kind.String()
	}
}

// ParseError 入站帧无法解析
type ParseError struct {
	Reason string
	// Msg 原始内容，用于诊断
	Msg string
}

func (e *ParseError) Error() string {
	if e.Msg == "" {
		return "protocols: parse error: " + e.Reason
	}
	return fmt.Sprintf("protocols: parse error: %s: %q", e.Reason, e.Msg)
}
