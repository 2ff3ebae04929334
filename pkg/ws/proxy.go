package ws

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

type tunnelMode string

const (
	modeDirect      tunnelMode = "direct"
	modeSOCKS5      tunnelMode = "socks5"
	modeHTTPConnect tunnelMode = "http-connect"
)

const defaultSOCKS5Port = 1080

// tunnel 到目标 host:port 的原始字节流
type tunnel struct {
	mode tunnelMode
	dial func(ctx context.Context, addr string) (net.Conn, error)
}

// newTunnel 按代理 scheme 选择连接方式，不做任何网络 I/O
func newTunnel(proxyURL *url.URL, timeout time.Duration) (*tunnel, error) {
	base := &net.Dialer{Timeout: timeout}

	if proxyURL == nil {
		return &tunnel{
			mode: modeDirect,
			dial: func(ctx context.Context, addr string) (net.Conn, error) {
				conn, err := base.DialContext(ctx, "tcp", addr)
				if err != nil {
					return nil, connectErr(KindConnection, err)
				}
				return conn, nil
			},
		}, nil
	}

	switch strings.ToLower(proxyURL.Scheme) {
	case "socks5":
		return newSOCKS5Tunnel(proxyURL, base)
	case "http", "https":
		if proxyURL.Hostname() == "" {
			return nil, &ConnectError{Kind: KindBadURL, URL: proxyURL.String()}
		}
		return &tunnel{
			mode: modeHTTPConnect,
			dial: func(ctx context.Context, addr string) (net.Conn, error) {
				return dialConnect(ctx, base, proxyURL, addr)
			},
		}, nil
	default:
		return nil, &ConnectError{Kind: KindUnsupportedScheme, Scheme: proxyURL.Scheme}
	}
}

func newSOCKS5Tunnel(proxyURL *url.URL, base *net.Dialer) (*tunnel, error) {
	host := proxyURL.Hostname()
	if host == "" {
		return nil, &ConnectError{Kind: KindBadURL, URL: proxyURL.String()}
	}
	port := proxyURL.Port()
	if port == "" {
		port = strconv.Itoa(defaultSOCKS5Port)
	}

	var auth *proxy.Auth
	if u := proxyURL.User; u != nil {
		pw, _ := u.Password()
		auth = &proxy.Auth{User: u.Username(), Password: pw}
	}

	d, err := proxy.SOCKS5("tcp", net.JoinHostPort(host, port), auth, base)
	if err != nil {
		return nil, connectErr(KindRequestConstruction, err)
	}

	return &tunnel{
		mode: modeSOCKS5,
		dial: func(ctx context.Context, addr string) (net.Conn, error) {
			var (
				conn net.Conn
				err  error
			)
			if cd, ok := d.(proxy.ContextDialer); ok {
				conn, err = cd.DialContext(ctx, "tcp", addr)
			} else {
				conn, err = d.Dial("tcp", addr)
			}
			if err != nil {
				return nil, connectErr(KindConnection, fmt.Errorf("socks5: %w", err))
			}
			return conn, nil
		},
	}, nil
}

// dialConnect 通过 HTTP CONNECT 建立隧道，非 2xx 响应返回 KindBadResponse
func dialConnect(ctx context.Context, base *net.Dialer, proxyURL *url.URL, addr string) (net.Conn, error) {
	host, port, err := HostPort(proxyURL)
	if err != nil {
		return nil, err
	}

	conn, err := base.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return nil, connectErr(KindConnection, err)
	}

	if strings.EqualFold(proxyURL.Scheme, "https") {
		tlsConn := tls.Client(conn, &tls.Config{ServerName: host})
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			conn.Close()
			return nil, connectErr(KindConnection, err)
		}
		conn = tlsConn
	}

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
		defer conn.SetDeadline(time.Time{})
	}

	req := &http.Request{
		Method: http.MethodConnect,
		URL:    &url.URL{Opaque: addr},
		Host:   addr,
		Header: make(http.Header),
	}
	if u := proxyURL.User; u != nil {
		pw, _ := u.Password()
		cred := base64.StdEncoding.EncodeToString([]byte(u.Username() + ":" + pw))
		req.Header.Set("Proxy-Authorization", "Basic "+cred)
	}
	if err := req.Write(conn); err != nil {
		conn.Close()
		return nil, connectErr(KindConnection, err)
	}

	br := bufio.NewReader(conn)
	resp, err := http.ReadResponse(br, req)
	if err != nil {
		conn.Close()
		return nil, connectErr(KindConnection, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		conn.Close()
		return nil, connectErr(KindBadResponse, fmt.Errorf("proxy returned %s: %s", resp.Status, body))
	}

	if br.Buffered() > 0 {
		return &bufferedConn{Conn: conn, r: br}, nil
	}
	return conn, nil
}

// bufferedConn 保留 CONNECT 响应之后已读入缓冲区的字节
type bufferedConn struct {
	net.Conn
	r *bufio.Reader
}

func (c *bufferedConn) Read(p []byte) (int, error) {
	return c.r.Read(p)
}
