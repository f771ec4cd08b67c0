package gate

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/tzander/parkfee-cli/internal/domain"
)

const (
	defaultConnectTimeout = 10 * time.Second
	defaultReadTimeout    = 10 * time.Second

	readChunkSize = 4096
)

// Transport performs one framed exchange against the gate backend.
// Implementations never retry; failure classification is left to the
// session layer.
type Transport interface {
	Send(ctx context.Context, req Request) (Response, error)
}

// TCPTransport opens a fresh TCP connection per call, writes the
// request as a single JSON line and reads until the accumulated bytes
// form a complete JSON document or the peer closes the stream. There is
// no connection reuse.
type TCPTransport struct {
	Addr           string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration

	// Logger traces every outbound and inbound payload. If nil,
	// slog.Default() is used.
	Logger *slog.Logger
}

var _ Transport = (*TCPTransport)(nil)

func (t *TCPTransport) Send(ctx context.Context, req Request) (Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return Response{}, &domain.ConnectionError{Op: "encode request", Err: err}
	}

	traceID := uuid.NewString()
	logger := t.logger().With("trace_id", traceID, "addr", t.Addr)
	logger.Debug("gate request", "method", req.head().Method, "order_id", req.head().OrderID, "payload", string(payload))

	dialer := net.Dialer{Timeout: t.connectTimeout()}
	conn, err := dialer.DialContext(ctx, "tcp", t.Addr)
	if err != nil {
		return Response{}, &domain.ConnectionError{Op: "connect", Err: err}
	}
	defer conn.Close()

	if err := conn.SetDeadline(time.Now().Add(t.readTimeout())); err != nil {
		return Response{}, &domain.ConnectionError{Op: "set deadline", Err: err}
	}

	if _, err := conn.Write(append(payload, '\n')); err != nil {
		return Response{}, &domain.ConnectionError{Op: "write request", Err: err}
	}

	raw, err := readDocument(conn)
	if err != nil {
		return Response{}, err
	}

	logger.Debug("gate response", "payload", string(raw))

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Response{}, &domain.ConnectionError{Op: "decode response", Err: err}
	}
	return resp, nil
}

// readDocument accumulates reads until the buffer parses as one JSON
// document. A clean close with a parsable buffer still succeeds; a
// timeout, an empty response or leftover garbage does not.
func readDocument(conn net.Conn) ([]byte, error) {
	var buf []byte
	chunk := make([]byte, readChunkSize)

	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if json.Valid(trimFrame(buf)) {
				return trimFrame(buf), nil
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(trimFrame(buf)) == 0 {
					return nil, &domain.ConnectionError{Op: "read response", Err: errors.New("empty response")}
				}
				if json.Valid(trimFrame(buf)) {
					return trimFrame(buf), nil
				}
				return nil, &domain.ConnectionError{Op: "read response", Err: errors.New("truncated response")}
			}
			return nil, &domain.ConnectionError{Op: "read response", Err: err}
		}
	}
}

// trimFrame drops the trailing newline frame terminator and any
// surrounding whitespace.
func trimFrame(buf []byte) []byte {
	start, end := 0, len(buf)
	for start < end && isFrameSpace(buf[start]) {
		start++
	}
	for end > start && isFrameSpace(buf[end-1]) {
		end--
	}
	return buf[start:end]
}

func isFrameSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func (t *TCPTransport) connectTimeout() time.Duration {
	if t.ConnectTimeout <= 0 {
		return defaultConnectTimeout
	}
	return t.ConnectTimeout
}

func (t *TCPTransport) readTimeout() time.Duration {
	if t.ReadTimeout <= 0 {
		return defaultReadTimeout
	}
	return t.ReadTimeout
}

func (t *TCPTransport) logger() *slog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	return slog.Default()
}
