package tunnel

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/yllada/snx-gui/common"
)

// Client sends requests to the tunnel service over loopback UDP.
// A Client holds no socket between calls and is safe for concurrent use.
type Client struct {
	serverAddr string
	bindAddr   string
	timeout    time.Duration
	maxPacket  int
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-operation read and write timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithBindAddress sets the local address requests are sent from.
func WithBindAddress(addr string) ClientOption {
	return func(c *Client) {
		if addr != "" {
			c.bindAddr = addr
		}
	}
}

// NewClient creates a client for the service listening on serverAddr.
// An empty serverAddr selects common.DefaultServiceAddress.
func NewClient(serverAddr string, opts ...ClientOption) *Client {
	if serverAddr == "" {
		serverAddr = common.DefaultServiceAddress
	}
	c := &Client{
		serverAddr: serverAddr,
		bindAddr:   common.ClientBindAddress,
		timeout:    common.RequestTimeout,
		maxPacket:  common.MaxPacketSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ServerAddress returns the address of the tunnel service.
func (c *Client) ServerAddress() string {
	return c.serverAddr
}

// Status asks the service for the current connection status and returns
// its raw answer.
func (c *Client) Status(ctx context.Context) (*Response, error) {
	common.LogDebug("Getting status from %s", c.serverAddr)
	return c.Do(ctx, GetStatusRequest())
}

// GetStatus reports whether a tunnel is up. An Error answer from the
// service means "not connected"; transport and decode failures are
// returned as errors.
func (c *Client) GetStatus(ctx context.Context) (bool, error) {
	resp, err := c.Status(ctx)
	if err != nil {
		return false, err
	}
	if resp.Kind == ResponseError {
		common.LogError("Connection status: Error %q", resp.Error)
	} else {
		common.LogDebug("Connection status: %s", resp)
	}
	return resp.Connected(), nil
}

// Connect asks the service to open a tunnel. An Error answer is returned
// together with an error wrapping common.ErrServiceError.
func (c *Client) Connect(ctx context.Context, params TunnelParams) (*Response, error) {
	common.LogInfo("Connecting user to server (%s)", params)
	resp, err := c.Do(ctx, ConnectRequest(params))
	if err != nil {
		common.LogError("Connect request failed: %v", err)
		return nil, err
	}
	common.LogInfo("Connect response: %s", resp)
	if resp.Kind == ResponseError {
		return resp, fmt.Errorf("%w: %s", common.ErrServiceError, resp.Error)
	}
	return resp, nil
}

// Disconnect asks the service to close the tunnel. The answer is read but
// ignored; only socket setup and send failures are reported.
func (c *Client) Disconnect(ctx context.Context) error {
	common.LogInfo("Disconnecting user from server")
	conn, err := c.dial()
	if err != nil {
		return err
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
	defer stop()

	if err := c.send(ctx, conn, DisconnectRequest()); err != nil {
		return err
	}
	if _, err := c.receive(ctx, conn); err != nil {
		common.LogDebug("Disconnect response not received: %v", err)
	}
	return nil
}

// Do performs one request/response exchange on a fresh socket.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	conn, err := c.dial()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	// Unblock pending I/O as soon as the caller gives up.
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
	defer stop()

	if err := c.send(ctx, conn, req); err != nil {
		return nil, err
	}
	datagram, err := c.receive(ctx, conn)
	if err != nil {
		return nil, err
	}

	resp, err := DecodeResponse(datagram)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidResponse, err)
	}
	return resp, nil
}

func (c *Client) dial() (*net.UDPConn, error) {
	laddr, err := net.ResolveUDPAddr("udp", c.bindAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: bind address %q: %v", common.ErrSocketSetup, c.bindAddr, err)
	}
	raddr, err := net.ResolveUDPAddr("udp", c.serverAddr)
	if err != nil {
		return nil, fmt.Errorf("%w: service address %q: %v", common.ErrSocketSetup, c.serverAddr, err)
	}
	conn, err := net.DialUDP("udp", laddr, raddr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrSocketSetup, err)
	}
	return conn, nil
}

func (c *Client) send(ctx context.Context, conn *net.UDPConn, req Request) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", req.Kind, err)
	}
	if err := c.armDeadline(ctx, conn.SetWriteDeadline); err != nil {
		return err
	}
	if _, err := conn.Write(payload); err != nil {
		return c.transportError(ctx, "send", err)
	}
	return nil
}

func (c *Client) receive(ctx context.Context, conn *net.UDPConn) ([]byte, error) {
	if err := c.armDeadline(ctx, conn.SetReadDeadline); err != nil {
		return nil, err
	}
	buf := make([]byte, c.maxPacket)
	n, err := conn.Read(buf)
	if err != nil {
		return nil, c.transportError(ctx, "receive", err)
	}
	if n <= 0 {
		return nil, fmt.Errorf("%w: response not received", common.ErrServiceUnavailable)
	}
	common.LogDebug("Received %d bytes from %s", n, c.serverAddr)
	return buf[:n], nil
}

// armDeadline sets the I/O deadline. The context is checked afterwards
// too: a cancellation that fired before the set would otherwise have its
// immediate deadline overwritten.
func (c *Client) armDeadline(ctx context.Context, set func(time.Time) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := set(c.deadline(ctx)); err != nil {
		return fmt.Errorf("%w: %v", common.ErrSocketSetup, err)
	}
	return ctx.Err()
}

// deadline is now+timeout, or the context deadline if that comes first.
func (c *Client) deadline(ctx context.Context) time.Time {
	d := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(d) {
		return ctxDeadline
	}
	return d
}

func (c *Client) transportError(ctx context.Context, op string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", op, ctxErr)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %s timed out after %v", common.ErrServiceUnavailable, op, c.timeout)
	}
	return fmt.Errorf("%w: %s: %v", common.ErrServiceUnavailable, op, err)
}
