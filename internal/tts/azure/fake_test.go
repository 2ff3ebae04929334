package azure

import (
	"context"
	"encoding/binary"
	"io"
	"net/http"
	"sync"
	"time"

	"azspeak/pkg/ws"

	"github.com/gorilla/websocket"
)

type inbound struct {
	mt   int
	data []byte
	err  error
}

// fakeConn 按脚本返回入站帧，记录所有出站帧
type fakeConn struct {
	mu      sync.Mutex
	script  []inbound
	written []inbound
	closed  bool
	// block 非空时，脚本耗尽后阻塞直到读超时被设置为过去的时间
	block    bool
	deadline chan struct{}
}

func newFakeConn(script ...inbound) *fakeConn {
	return &fakeConn{script: script, deadline: make(chan struct{}, 1)}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	c.mu.Lock()
	if len(c.script) == 0 {
		block := c.block
		c.mu.Unlock()
		if block {
			<-c.deadline
			return 0, nil, &timeoutError{}
		}
		return 0, nil, io.EOF
	}
	next := c.script[0]
	c.script = c.script[1:]
	c.mu.Unlock()
	return next.mt, next.data, next.err
}

func (c *fakeConn) WriteMessage(mt int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return websocket.ErrCloseSent
	}
	c.written = append(c.written, inbound{mt: mt, data: append([]byte(nil), data...)})
	return nil
}

func (c *fakeConn) SetReadDeadline(t time.Time) error {
	if !t.IsZero() && !t.After(time.Now()) {
		select {
		case c.deadline <- struct{}{}:
		default:
		}
	}
	return nil
}

func (c *fakeConn) SetWriteDeadline(time.Time) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) textFrames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, f := range c.written {
		if f.mt == websocket.TextMessage {
			out = append(out, string(f.data))
		}
	}
	return out
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func textMsg(path, body string) inbound {
	return inbound{
		mt:   websocket.TextMessage,
		data: []byte("X-RequestId:abc\r\nContent-Type:application/json\r\nPath:" + path + "\r\n\r\n" + body),
	}
}

func audioMsg(data ...byte) inbound {
	header := "X-RequestId:abc\r\nContent-Type:audio/x-wav\r\nPath:audio"
	buf := make([]byte, 2, 2+len(header)+len(data))
	binary.BigEndian.PutUint16(buf, uint16(len(header)))
	buf = append(buf, header...)
	return inbound{mt: websocket.BinaryMessage, data: append(buf, data...)}
}

func closeMsg(code int, reason string) inbound {
	return inbound{err: &websocket.CloseError{Code: code, Text: reason}}
}

// fakeDialer 记录握手参数并返回预置连接
type fakeDialer struct {
	conn   *fakeConn
	err    error
	target string
	header http.Header
	cfg    ws.Config
}

func (d *fakeDialer) Dial(_ context.Context, target string, header http.Header, cfg ws.Config) (ws.Conn, error) {
	d.target, d.header, d.cfg = target, header, cfg
	if d.err != nil {
		return nil, d.err
	}
	return d.conn, nil
}
