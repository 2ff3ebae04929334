package protocols

import (
	"encoding/binary"
	"strings"
	"unicode/utf8"

	"azspeak/pkg/ws"

	"github.com/gorilla/websocket"
)

const (
	PathTurnStart = "turn.start"
	PathTurnEnd   = "turn.end"
	PathResponse  = "response"
	PathAudio     = "audio"

	headerSeparator = "\r\n\r\n"
	lineSeparator   = "\r\n"
)

const (
	reasonUnknownFrame = "neither binary nor text"
	reasonMalformed    = "unknown"
	reasonTruncated    = "truncated binary frame"
)

// Decode 将一帧原始数据解码为协议消息
func Decode(f ws.Frame) (*Message, error) {
	switch f.Type {
	case websocket.BinaryMessage:
		return decodeBinary(f.Data)
	case websocket.TextMessage:
		return decodeText(string(f.Data))
	case websocket.CloseMessage:
		return &Message{Kind: KindClose, Close: f.Close}, nil
	case websocket.PingMessage:
		return &Message{Kind: KindPing}, nil
	case websocket.PongMessage:
		return &Message{Kind: KindPong}, nil
	default:
		return nil, &ParseError{Reason: reasonUnknownFrame}
	}
}

// ReceiveMessage 读取并解码下一条消息
func ReceiveMessage(conn ws.Conn) (*Message, error) {
	f, err := ws.ReadFrame(conn)
	if err != nil {
		return nil, err
	}
	return Decode(f)
}

// 二进制帧: [u16 大端 header 长度][header][音频数据]
func decodeBinary(data []byte) (*Message, error) {
	if len(data) < 2 {
		return nil, &ParseError{Reason: reasonTruncated}
	}
	headerLen := int(binary.BigEndian.Uint16(data[:2]))
	if len(data) < 2+headerLen {
		return nil, &ParseError{Reason: reasonTruncated}
	}
	header := data[2 : 2+headerLen]
	if !utf8.Valid(header) {
		return nil, &ParseError{Reason: reasonMalformed, Msg: string(header)}
	}

	text := string(header)
	for _, line := range strings.Split(text, lineSeparator) {
		if strings.HasPrefix(line, "Path") && strings.HasSuffix(line, PathAudio) {
			return &Message{Kind: KindAudio, Data: data[2+headerLen:]}, nil
		}
	}
	return nil, &ParseError{Reason: reasonMalformed, Msg: text}
}

func decodeText(text string) (*Message, error) {
	head, body, ok := strings.Cut(text, headerSeparator)
	if !ok {
		return nil, &ParseError{Reason: reasonMalformed, Msg: text}
	}

	for _, line := range strings.Split(head, lineSeparator) {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, &ParseError{Reason: reasonMalformed, Msg: text}
		}
		if strings.TrimSpace(key) != "Path" {
			continue
		}
		switch strings.TrimSpace(value) {
		case PathTurnEnd:
			return &Message{Kind: KindTurnEnd}, nil
		case PathTurnStart:
			return &Message{Kind: KindTurnStart}, nil
		case PathResponse:
			return &Message{Kind: KindResponse, Body: body}, nil
		default:
			return nil, &ParseError{Reason: reasonMalformed, Msg: text}
		}
	}
	return nil, &ParseError{Reason: reasonMalformed, Msg: text}
}
