package ws

import (
	"crypto/tls"
	"errors"
	"io"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// ErrStreamEnded 底层流在没有 close 帧的情况下结束
var ErrStreamEnded = errors.New("ws: stream ended")

// Conn 已完成握手的 WebSocket 连接，*websocket.Conn 直接满足该接口
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// Config 连接配置
type Config struct {
	// TLSConfig TLS 配置（用于 wss:// 连接），为 nil 时使用默认配置
	TLSConfig *tls.Config

	// DialTimeout 建立 TCP/代理隧道的超时时间（默认 5 秒）
	DialTimeout time.Duration

	// HandshakeTimeout 握手超时时间（默认 10 秒）
	HandshakeTimeout time.Duration

	// Proxy 代理地址，nil 表示直连。支持 socks5、http、https
	Proxy *url.URL
}

func (c Config) withDefaults() Config {
	if c.DialTimeout == 0 {
		c.DialTimeout = 5 * time.Second
	}
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = 10 * time.Second
	}
	return c
}

// CloseInfo close 帧携带的状态码与原因
type CloseInfo struct {
	Code   int
	Reason string
}

// Frame 一帧原始入站数据
type Frame struct {
	// Type 取 websocket.TextMessage / BinaryMessage / CloseMessage / PingMessage / PongMessage
	Type int
	Data []byte
	// Close 仅在 CloseMessage 且对端附带了状态码时非空
	Close *CloseInfo
}

// ReadFrame 读取下一帧。gorilla 把 close 帧作为 *websocket.CloseError 返回，
// 这里把它还原成 CloseMessage 帧，交给上层统一解码。
func ReadFrame(conn Conn) (Frame, error) {
	mt, data, err := conn.ReadMessage()
	if err != nil {
		var ce *websocket.CloseError
		if errors.As(err, &ce) {
			f := Frame{Type: websocket.CloseMessage}
			if ce.Code != websocket.CloseNoStatusReceived {
				f.Close = &CloseInfo{Code: ce.Code, Reason: ce.Text}
			}
			return f, nil
		}
		if errors.Is(err, io.EOF) {
			return Frame{}, ErrStreamEnded
		}
		return Frame{}, err
	}
	return Frame{Type: mt, Data: data}, nil
}
