package gate

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzander/parkfee-cli/internal/domain"
)

// fakeBackend accepts one connection, hands the received line to serve
// and closes the connection when serve returns.
func fakeBackend(t *testing.T, serve func(line []byte, conn net.Conn)) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		line, err := bufio.NewReader(conn).ReadBytes('\n')
		if err != nil {
			return
		}
		serve(line, conn)
	}()

	return ln.Addr().String()
}

func heartbeatRequest() *sessionRequest {
	req := &sessionRequest{}
	req.Method = MethodHeartBeat
	req.OrderID = 7
	req.LoginID = "tok-1"
	return req
}

func TestTCPTransportRoundTrip(t *testing.T) {
	addr := fakeBackend(t, func(line []byte, conn net.Conn) {
		var got map[string]any
		if err := json.Unmarshal(line, &got); err != nil {
			return
		}
		if got["METHOD"] != MethodHeartBeat || got["LOGIN_ID"] != "tok-1" {
			return
		}
		conn.Write([]byte(`{"STATUS":0,"METHOD":"HEART_BEAT","ORDER_ID":7}` + "\n"))
	})

	transport := &TCPTransport{Addr: addr}
	resp, err := transport.Send(context.Background(), heartbeatRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.StatusOK, resp.Status)
	assert.Equal(t, MethodHeartBeat, resp.Method)
	assert.Equal(t, int64(7), resp.OrderID)
}

func TestTCPTransportReassemblesSplitResponse(t *testing.T) {
	addr := fakeBackend(t, func(_ []byte, conn net.Conn) {
		conn.Write([]byte(`{"STATUS":0,"METHOD":"HEART`))
		time.Sleep(20 * time.Millisecond)
		conn.Write([]byte(`_BEAT","ORDER_ID":7}` + "\n"))
	})

	transport := &TCPTransport{Addr: addr}
	resp, err := transport.Send(context.Background(), heartbeatRequest())
	require.NoError(t, err)
	assert.Equal(t, MethodHeartBeat, resp.Method)
}

func TestTCPTransportCleanCloseWithoutNewline(t *testing.T) {
	addr := fakeBackend(t, func(_ []byte, conn net.Conn) {
		conn.Write([]byte(`{"STATUS":0,"METHOD":"HEART_BEAT","ORDER_ID":7}`))
	})

	transport := &TCPTransport{Addr: addr}
	resp, err := transport.Send(context.Background(), heartbeatRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusOK, resp.Status)
}

func TestTCPTransportEmptyResponse(t *testing.T) {
	addr := fakeBackend(t, func(_ []byte, conn net.Conn) {})

	transport := &TCPTransport{Addr: addr}
	_, err := transport.Send(context.Background(), heartbeatRequest())

	var connErr *domain.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Contains(t, connErr.Error(), "empty response")
}

func TestTCPTransportTruncatedResponse(t *testing.T) {
	addr := fakeBackend(t, func(_ []byte, conn net.Conn) {
		conn.Write([]byte(`{"STATUS":0,"METH`))
	})

	transport := &TCPTransport{Addr: addr}
	_, err := transport.Send(context.Background(), heartbeatRequest())

	var connErr *domain.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Contains(t, connErr.Error(), "truncated response")
}

func TestTCPTransportConnectFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	transport := &TCPTransport{Addr: addr, ConnectTimeout: time.Second}
	_, err = transport.Send(context.Background(), heartbeatRequest())

	var connErr *domain.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "connect", connErr.Op)
}

func TestTCPTransportReadTimeout(t *testing.T) {
	addr := fakeBackend(t, func(_ []byte, conn net.Conn) {
		time.Sleep(500 * time.Millisecond)
	})

	transport := &TCPTransport{Addr: addr, ReadTimeout: 50 * time.Millisecond}
	_, err := transport.Send(context.Background(), heartbeatRequest())

	var connErr *domain.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, "read response", connErr.Op)
}
