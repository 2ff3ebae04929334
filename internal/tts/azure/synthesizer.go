package azure

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"azspeak/internal/audio"
	"azspeak/internal/protocols"
	"azspeak/internal/tts"
	"azspeak/pkg/ws"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// 与 WAV 头大小一致，避免小音频的多次扩容
const minimalHeaderSize = 44

// WebsocketSynthesizer 持有一条已完成 speech.config 的连接。
// 同一时刻只允许一个合成请求，任何一次请求失败后连接会被关闭。
type WebsocketSynthesizer struct {
	format         audio.Format
	conn           ws.Conn
	receiveTimeout time.Duration

	writeMu   sync.Mutex
	busy      atomic.Bool
	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

var _ tts.Synthesizer = (*WebsocketSynthesizer)(nil)

// ------------------------ Constructor ------------------------

// Connect 建立连接并发送 speech.config，不等待服务端回应
func (c *SynthesizerConfig) Connect(ctx context.Context) (*WebsocketSynthesizer, error) {
	ctx, span := tracer.Start(ctx, "connect websocket synthesizer")
	defer span.End()

	s, err := c.connect(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return s, nil
}

func (c *SynthesizerConfig) connect(ctx context.Context) (*WebsocketSynthesizer, error) {
	warnIfTokenExpired(c.auth.Token, time.Now())

	target, header, err := c.upgradeRequest(protocols.NewRequestID())
	if err != nil {
		return nil, err
	}

	transport := c.transport
	transport.Proxy, err = c.proxyURL()
	if err != nil {
		return nil, newError(KindConnect, err)
	}

	conn, err := c.dialer.Dial(ctx, target, header, transport)
	if err != nil {
		return nil, newError(KindConnect, err)
	}

	s := &WebsocketSynthesizer{
		format:         c.format,
		conn:           conn,
		receiveTimeout: c.receiveTimeout,
	}

	if err := s.write(ctx, protocols.StartConnection); err != nil {
		_ = conn.Close()
		return nil, newError(KindWebsocket, err)
	}

	logrus.Info("azure: websocket synthesizer connected")
	return s, nil
}

func (s *WebsocketSynthesizer) Format() audio.Format {
	return s.format
}

// ------------------------ Synthesis ------------------------

// SynthesizeSSML 合成一段 SSML，返回完整音频
func (s *WebsocketSynthesizer) SynthesizeSSML(ctx context.Context, ssml string) ([]byte, error) {
	if s.closed.Load() {
		return nil, ErrSynthesizerClosed
	}
	if !s.busy.CompareAndSwap(false, true) {
		return nil, ErrSynthesizerBusy
	}
	defer s.busy.Store(false)

	ctx, span := tracer.Start(ctx, "synthesize ssml", trace.WithAttributes(
		attribute.String("audio.format", string(s.format)),
		attribute.Int("request.ssml_length", len(ssml)),
	))
	defer span.End()

	start := time.Now()
	data, err := s.synthesize(ctx, ssml)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		// 出错后连接状态不可信，直接关闭
		_ = s.Close()
		return nil, err
	}

	attrs := metric.WithAttributes(attribute.String("transport", "websocket"))
	audioBytesCounter.Add(ctx, int64(len(data)), attrs)
	synthesisDuration.Record(ctx, time.Since(start).Seconds(), attrs)
	span.SetAttributes(attribute.Int("response.audio_bytes", len(data)))
	return data, nil
}

// SynthesizeText 先生成 SSML 再合成
func (s *WebsocketSynthesizer) SynthesizeText(ctx context.Context, text string, opts *tts.TextOptions) ([]byte, error) {
	logrus.Debugf("azure: synthesizing text: %s", text)
	ssml, err := tts.InterpolateSSML(text, opts)
	if err != nil {
		return nil, newError(KindSSML, err)
	}
	return s.SynthesizeSSML(ctx, ssml)
}

func (s *WebsocketSynthesizer) synthesize(ctx context.Context, ssml string) ([]byte, error) {
	requestID := protocols.NewRequestID()
	ts := protocols.Timestamp(time.Now())

	synthesisContext, err := NewSynthesisContextBuilder(s.format).Build().Marshal()
	if err != nil {
		return nil, newError(KindInvalidRequest, err)
	}

	// synthesis.context 必须先于 ssml 发送
	if err := s.send(ctx, protocols.SynthesisContextFrame(requestID, ts, synthesisContext)); err != nil {
		return nil, newError(KindWebsocket, err)
	}
	if err := s.send(ctx, protocols.SSMLFrame(requestID, ts, ssml)); err != nil {
		return nil, newError(KindWebsocket, err)
	}
	logrus.Debugf("azure: request %s sent", requestID)

	return s.receive(ctx)
}

// receive 累积音频直到 turn.end
func (s *WebsocketSynthesizer) receive(ctx context.Context) ([]byte, error) {
	deadline := time.Now().Add(s.receiveTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.conn.SetReadDeadline(deadline); err != nil {
		return nil, newError(KindWebsocket, err)
	}
	defer s.conn.SetReadDeadline(time.Time{})

	// ctx 取消时让阻塞中的读立即返回
	stop := context.AfterFunc(ctx, func() {
		_ = s.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	buf := bytes.NewBuffer(make([]byte, 0, minimalHeaderSize))
	for {
		msg, err := protocols.ReceiveMessage(s.conn)
		if err != nil {
			return nil, classifyReceiveError(ctx, err)
		}

		switch msg.Kind {
		case protocols.KindTurnStart, protocols.KindResponse:
			logrus.Debugf("azure: recv %s", msg)
		case protocols.KindAudio:
			buf.Write(msg.Data)
		case protocols.KindTurnEnd:
			logrus.Debugf("azure: turn end, %d bytes", buf.Len())
			return buf.Bytes(), nil
		case protocols.KindClose:
			return nil, closedError(msg.Close)
		case protocols.KindPing, protocols.KindPong:
		}
	}
}

func classifyReceiveError(ctx context.Context, err error) error {
	var pe *protocols.ParseError
	switch {
	case errors.As(err, &pe):
		return newError(KindInvalidMessage, err)
	case errors.Is(err, ws.ErrStreamEnded):
		return newError(KindStreamEnded, err)
	case ctx.Err() != nil:
		return newError(KindWebsocket, ctx.Err())
	default:
		return newError(KindWebsocket, err)
	}
}

func closedError(info *ws.CloseInfo) error {
	e := &SynthesizerError{
		Kind:   KindWebsocketConnectionClosed,
		Code:   unknownCloseCode,
		Reason: defaultCloseReason,
	}
	if info != nil {
		e.Code = strconv.Itoa(info.Code)
		e.Reason = info.Reason
	}
	logrus.Warnf("azure: connection closed by server, code=%s reason=%s", e.Code, e.Reason)
	return e
}

func (s *WebsocketSynthesizer) send(ctx context.Context, frame []byte) error {
	return s.write(ctx, func(conn ws.Conn) error {
		return protocols.SendText(conn, frame)
	})
}

// write 在写锁与写超时内执行一次写操作
func (s *WebsocketSynthesizer) write(ctx context.Context, fn func(ws.Conn) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	deadline := time.Now().Add(defaultWriteTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := s.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return fn(s.conn)
}

// Close 发送 close 帧并关闭连接，可以安全地多次调用
func (s *WebsocketSynthesizer) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)

		s.writeMu.Lock()
		_ = s.conn.SetWriteDeadline(time.Now().Add(time.Second))
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		if err := s.conn.WriteMessage(websocket.CloseMessage, msg); err != nil {
			logrus.Debugf("azure: write close frame: %v", err)
		}
		s.writeMu.Unlock()

		s.closeErr = s.conn.Close()
		logrus.Info("azure: websocket synthesizer closed")
	})
	return s.closeErr
}
