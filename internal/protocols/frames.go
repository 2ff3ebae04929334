package protocols

import (
	"strings"
	"time"

	"azspeak/pkg/ws"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	PathSpeechConfig     = "speech.config"
	PathSynthesisContext = "synthesis.context"
	PathSSML             = "ssml"

	ContentTypeJSON = "application/json"
	ContentTypeSSML = "application/ssml+xml"
)

// clientInfoPayload 服务端要求的客户端标识，必须逐字节保持不变
const clientInfoPayload = `{"context":{"system":{"version":"1.25.0","name":"SpeechSDK","build":"Windows-x64"},"os":{"platform":"Windows","name":"Client","version":"10"}}}`

// NewRequestID 生成 32 位十六进制、不带连字符的请求 ID
func NewRequestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// Timestamp 生成 X-Timestamp 头的值
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// SpeechConfigFrame 连接建立后的第一帧。
// 注意 X-Timestamp 与 Content-Type 之间没有 CRLF，服务端依赖这个格式。
func SpeechConfigFrame(requestID, ts string) []byte {
	return []byte("Path: " + PathSpeechConfig + "\r\nX-RequestId: " + requestID +
		"\r\nX-Timestamp: " + ts + "Content-Type: " + ContentTypeJSON + "\r\n\r\n" + clientInfoPayload)
}

// SynthesisContextFrame 每次合成的第一帧，与 speech.config 同样缺少 Content-Type 前的 CRLF
func SynthesisContextFrame(requestID, ts string, synthesisContext []byte) []byte {
	return []byte("Path: " + PathSynthesisContext + "\r\nX-RequestId: " + requestID +
		"\r\nX-Timestamp: " + ts + "Content-Type: " + ContentTypeJSON + "\r\n\r\n" + string(synthesisContext))
}

// SSMLFrame 每次合成的第二帧
func SSMLFrame(requestID, ts, ssml string) []byte {
	return []byte("Path: " + PathSSML + "\r\nX-RequestId: " + requestID +
		"\r\nX-Timestamp: " + ts + "\r\nContent-Type: " + ContentTypeSSML + "\r\n\r\n" + ssml)
}

// StartConnection 发送 speech.config，不等待服务端回应
func StartConnection(conn ws.Conn) error {
	return SendText(conn, SpeechConfigFrame(NewRequestID(), Timestamp(time.Now())))
}

func SendText(conn ws.Conn, frame []byte) error {
	return conn.WriteMessage(websocket.TextMessage, frame)
}
