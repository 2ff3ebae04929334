package ws

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// ParseTarget 解析目标地址，失败统一归类为 KindBadURL
func ParseTarget(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, &ConnectError{Kind: KindBadURL, URL: raw, Err: err}
	}
	return u, nil
}

// HostPort 从 URL 中提取主机和端口。
// 未显式指定端口时：wss/https 为 443，ws/http 为 80，其他 scheme 报 KindUnsupportedScheme。
func HostPort(u *url.URL) (string, int, error) {
	host := u.Hostname()
	if host == "" {
		return "", 0, &ConnectError{Kind: KindBadURL, URL: u.String()}
	}
	if p := u.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil || port <= 0 || port > 65535 {
			return "", 0, &ConnectError{Kind: KindBadURL, URL: u.String(), Err: err}
		}
		return host, port, nil
	}
	switch strings.ToLower(u.Scheme) {
	case "wss", "https":
		return host, 443, nil
	case "ws", "http":
		return host, 80, nil
	}
	return "", 0, &ConnectError{Kind: KindUnsupportedScheme, Scheme: u.Scheme}
}

// Dial 建立（可能经过代理的）TCP 连接，并在其上完成 WebSocket 握手。
// wss 的 TLS 由 gorilla 在隧道之上完成。
func Dial(ctx context.Context, target string, header http.Header, cfg Config) (Conn, error) {
	cfg = cfg.withDefaults()

	u, err := ParseTarget(target)
	if err != nil {
		return nil, err
	}
	host, port, err := HostPort(u)
	if err != nil {
		return nil, err
	}
	addr := net.JoinHostPort(host, strconv.Itoa(port))

	// 代理 scheme 在任何网络 I/O 之前校验
	t, err := newTunnel(cfg.Proxy, cfg.DialTimeout)
	if err != nil {
		return nil, err
	}

	wsURL := *u
	switch strings.ToLower(u.Scheme) {
	case "https":
		wsURL.Scheme = "wss"
	case "http":
		wsURL.Scheme = "ws"
	}

	var (
		dialed    bool
		tunnelErr error
	)
	dialer := websocket.Dialer{
		HandshakeTimeout: cfg.HandshakeTimeout,
		TLSClientConfig:  cfg.TLSConfig,
		NetDialContext: func(ctx context.Context, _, _ string) (net.Conn, error) {
			dialed = true
			dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
			defer cancel()
			conn, err := t.dial(dialCtx, addr)
			if err != nil {
				tunnelErr = err
			}
			return conn, err
		},
	}

	logrus.Debugf("ws: dialing %s via %s", addr, t.mode)
	conn, resp, err := dialer.DialContext(ctx, wsURL.String(), header)
	if err != nil {
		if conn != nil {
			_ = conn.Close()
		}
		if tunnelErr != nil {
			var ce *ConnectError
			if errors.As(tunnelErr, &ce) {
				return nil, ce
			}
			return nil, connectErr(KindConnection, tunnelErr)
		}
		if !dialed {
			return nil, connectErr(KindRequestConstruction, err)
		}
		if resp != nil {
			err = fmt.Errorf("%w (status %s)", err, resp.Status)
		}
		return nil, connectErr(KindConnection, err)
	}

	installPingHandler(conn)
	logrus.Infof("ws: connected to %s", u.Host)
	return conn, nil
}

// installPingHandler 收到 ping 时显式回复 pong，避免空闲断连
func installPingHandler(conn *websocket.Conn) {
	conn.SetPingHandler(func(appData string) error {
		logrus.Debug("ws: ping received")
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
		if errors.Is(err, websocket.ErrCloseSent) {
			return nil
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil
		}
		return err
	})
}
