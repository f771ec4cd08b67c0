package gate

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"log/slog"
	"sync"

	"github.com/tzander/parkfee-cli/internal/domain"
	"github.com/tzander/parkfee-cli/internal/ports"
)

// Credentials authenticate one device against the gate backend. The
// password is hashed before it goes on the wire; it is never sent in
// clear text.
type Credentials struct {
	Login    string
	PIN      string
	Password string
	DeviceID int
	DeviceIP string
	EntityID int
}

// Client owns one gate session: the token and the sequence counter. It
// performs the automatic single re-login on an expired session. The
// mutable session state is mutex-guarded so one client can be shared
// across callers without corrupting sequence ordering.
type Client struct {
	transport Transport
	creds     Credentials
	logger    *slog.Logger

	mu      sync.Mutex
	loginID string
	seq     int64
}

var _ ports.GateSession = (*Client)(nil)

func NewClient(transport Transport, creds Credentials, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{transport: transport, creds: creds, logger: logger, seq: 1}
}

func (c *Client) LoggedIn() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginID != ""
}

// Login authenticates with the stored credentials. On success the
// returned token replaces any previous one.
func (c *Client) Login(ctx context.Context) (domain.LoginInfo, error) {
	req := &loginRequest{
		Login:    c.creds.Login,
		PIN:      c.creds.PIN,
		Password: passwordDigest(c.creds.Password),
		DeviceID: c.creds.DeviceID,
		IP:       c.creds.DeviceIP,
		NoEncode: 1,
		EntityID: c.creds.EntityID,
	}
	c.stamp(&req.Header, MethodLogin)

	resp, err := c.exchange(ctx, req)
	if err != nil {
		return domain.LoginInfo{}, err
	}
	if resp.Status != domain.StatusOK {
		return domain.LoginInfo{}, domain.NewStatusError(resp.Status)
	}

	c.mu.Lock()
	c.loginID = resp.LoginID
	c.mu.Unlock()

	return domain.LoginInfo{User: resp.User}, nil
}

// HeartBeat checks that the session is still accepted by the backend.
func (c *Client) HeartBeat(ctx context.Context) error {
	req := &sessionRequest{}
	if err := c.stampAuthenticated(&req.Header, MethodHeartBeat); err != nil {
		return err
	}

	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	if resp.Status != domain.StatusOK {
		return domain.NewStatusError(resp.Status)
	}
	return nil
}

// Logout releases the session and clears the token.
func (c *Client) Logout(ctx context.Context) error {
	req := &sessionRequest{}
	if err := c.stampAuthenticated(&req.Header, MethodLogout); err != nil {
		return err
	}

	resp, err := c.send(ctx, req)
	if err != nil {
		return err
	}
	if resp.Status != domain.StatusOK {
		return domain.NewStatusError(resp.Status)
	}

	c.mu.Lock()
	c.loginID = ""
	c.mu.Unlock()
	return nil
}

// send performs one authenticated exchange with the bounded re-login
// retry: on a -13 the token is cleared, login runs once, the original
// request is restamped and resent exactly once. A failing re-login
// surfaces the original -13 response unchanged.
func (c *Client) send(ctx context.Context, req Request) (Response, error) {
	retried := false
	for {
		resp, err := c.exchange(ctx, req)
		if err != nil {
			return Response{}, err
		}

		if resp.Status != domain.StatusSessionExpired || retried {
			return resp, nil
		}
		retried = true

		c.mu.Lock()
		c.loginID = ""
		c.mu.Unlock()

		if _, err := c.Login(ctx); err != nil {
			c.logger.Warn("re-login after expired session failed", "error", err)
			return resp, nil
		}

		c.mu.Lock()
		req.head().LoginID = c.loginID
		req.head().OrderID = c.seq
		c.seq++
		c.mu.Unlock()
	}
}

// exchange delegates to the transport and validates the envelope. A
// method mismatch is fatal; an order-id mismatch is only logged, per
// the backend's observed loose correlation.
func (c *Client) exchange(ctx context.Context, req Request) (Response, error) {
	resp, err := c.transport.Send(ctx, req)
	if err != nil {
		return Response{}, err
	}

	head := req.head()
	if resp.Method != head.Method && resp.Method != MethodError {
		return Response{}, &domain.ProtocolError{Want: head.Method, Got: resp.Method}
	}
	if resp.OrderID != head.OrderID {
		c.logger.Warn("order id mismatch",
			"method", head.Method, "sent", head.OrderID, "received", resp.OrderID)
	}
	return resp, nil
}

// stamp assigns the next sequence number and the current token.
func (c *Client) stamp(h *Header, method string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h.Method = method
	h.OrderID = c.seq
	c.seq++
	h.LoginID = c.loginID
}

// stampAuthenticated is stamp plus the local NotLoggedIn guard; it
// never touches the transport without a token.
func (c *Client) stampAuthenticated(h *Header, method string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loginID == "" {
		return domain.ErrNotLoggedIn
	}
	h.Method = method
	h.OrderID = c.seq
	c.seq++
	h.LoginID = c.loginID
	return nil
}

func passwordDigest(password string) string {
	if password == "" {
		return ""
	}
	sum := sha1.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}
