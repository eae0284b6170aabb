package network

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/vidlink-cli/vidlink/log"
	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

const dialTimeout = 30 * time.Second

// BrowserClient performs requests with a Chrome 120 TLS ClientHello.
//
// HTTP/2 is tried first. When the handshake or the h2 exchange fails the
// request is replayed over an HTTP/1.1 transport that only advertises http/1.1.
type BrowserClient struct {
	h2 *http.Client
	h1 *http.Client
}

var (
	browser     *BrowserClient
	browserOnce sync.Once
)

// Browser returns the shared fingerprinting client.
func Browser() *BrowserClient {
	browserOnce.Do(func() {
		browser = &BrowserClient{
			h2: &http.Client{
				Timeout: time.Minute,
				Transport: &http2.Transport{
					DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
						return dialChrome(ctx, network, addr, nil)
					},
				},
			},
			h1: &http.Client{
				Timeout: time.Minute,
				Transport: &http.Transport{
					DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
						return dialChrome(ctx, network, addr, []string{"http/1.1"})
					},
				},
			},
		}
	})
	return browser
}

// Do sends req over h2, falling back to http/1.1. Request bodies are buffered so they can be replayed.
func (b *BrowserClient) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("buffer body: %w", err)
		}
	}

	resp, err := b.h2.Do(withBody(req, body))
	if err == nil {
		return resp, nil
	}
	if ctxErr := req.Context().Err(); ctxErr != nil {
		return nil, ctxErr
	}

	log.Debugf("h2 request to %s failed, retrying over http/1.1: %s", req.URL.Host, err)
	resp, err = b.h1.Do(withBody(req, body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func withBody(req *http.Request, body []byte) *http.Request {
	clone := req.Clone(req.Context())
	if body == nil {
		return clone
	}
	clone.Body = io.NopCloser(bytes.NewReader(body))
	clone.ContentLength = int64(len(body))
	clone.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}
	return clone
}

func dialChrome(ctx context.Context, network, addr string, protos []string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
		NextProtos: protos,
	}, utls.HelloChrome_120)

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}
