package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"

	"github.com/jfmyers9/mediakeys/internal/media"
	"github.com/jfmyers9/mediakeys/internal/wire"
)

// ErrNotRunning is returned by Dial when no session listens on the socket
var ErrNotRunning = errors.New("no mediakeys session is running")

// Client talks to a running session server
type Client struct {
	conn    net.Conn
	timeout time.Duration
}

// Dial connects to the session socket and performs the handshake
func Dial(ctx context.Context, path string) (*Client, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotRunning, err)
	}
	c := &Client{conn: conn, timeout: 5 * time.Second}
	if deadline, ok := ctx.Deadline(); ok {
		c.timeout = time.Until(deadline)
	}

	_ = conn.SetDeadline(time.Now().Add(c.timeout))
	hs, _ := json.Marshal(handshake{Version: protocolVersion, ClientID: "mediakeys-cli"})
	if err := wire.WriteFrame(conn, wire.OpHandshake, hs); err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake write: %w", err)
	}

	resp, err := c.read()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("handshake read: %w", err)
	}
	if resp.Evt != EvtReady {
		conn.Close()
		return nil, fmt.Errorf("handshake rejected: %s", resp.Data.Message)
	}
	return c, nil
}

// Dispatch sends a control event to the session
func (c *Client) Dispatch(e media.Event) error {
	_, err := c.call(request{Cmd: CmdDispatch, Args: requestArgs{Event: e.String()}})
	return err
}

// State returns the playback state the session currently publishes
func (c *Client) State() (State, error) {
	resp, err := c.call(request{Cmd: CmdGetState})
	if err != nil {
		return State{}, err
	}
	if resp.Data.State == nil {
		return State{}, errors.New("session returned no state")
	}
	return *resp.Data.State, nil
}

// Close ends the session politely and closes the connection
func (c *Client) Close() error {
	_ = wire.WriteFrame(c.conn, wire.OpClose, []byte("{}"))
	return c.conn.Close()
}

func (c *Client) call(req request) (response, error) {
	req.Nonce = uuid.NewString()
	payload, err := json.Marshal(req)
	if err != nil {
		return response{}, err
	}

	_ = c.conn.SetDeadline(time.Now().Add(c.timeout))
	if err := wire.WriteFrame(c.conn, wire.OpFrame, payload); err != nil {
		return response{}, fmt.Errorf("write %s: %w", req.Cmd, err)
	}

	resp, err := c.read()
	if err != nil {
		return response{}, fmt.Errorf("read %s reply: %w", req.Cmd, err)
	}
	if resp.Nonce != req.Nonce {
		return response{}, fmt.Errorf("reply nonce %q does not match request %q", resp.Nonce, req.Nonce)
	}
	if resp.Evt == EvtError {
		return response{}, fmt.Errorf("session error %d: %s", resp.Data.Code, resp.Data.Message)
	}
	return resp, nil
}

func (c *Client) read() (response, error) {
	_, data, err := wire.ReadFrame(c.conn)
	if err != nil {
		return response{}, err
	}
	var resp response
	if err := json.Unmarshal(data, &resp); err != nil {
		return response{}, fmt.Errorf("unmarshal reply: %w", err)
	}
	return resp, nil
}
