package ipc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"
)

const requestTimeout = 5 * time.Second

// Client talks to a running daemon over its control socket.
type Client struct {
	path string
}

// NewClient builds a client for the given socket path.
func NewClient(path string) *Client {
	return &Client{path: path}
}

// Available reports whether a daemon is accepting connections.
func (c *Client) Available() bool {
	conn, err := net.DialTimeout("unix", c.path, 500*time.Millisecond)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// Call sends one command and decodes the response data into out (when out
// is non-nil). A response with status "error" is returned as a Go error.
func (c *Client) Call(command string, payload, out any) error {
	conn, err := net.DialTimeout("unix", c.path, requestTimeout)
	if err != nil {
		return fmt.Errorf("cannot reach daemon at %s: %w", c.path, err)
	}
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(requestTimeout))

	req := Request{Command: command}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to encode payload: %w", err)
		}
		req.Payload = raw
	}

	if err := json.NewEncoder(conn).Encode(req); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	line, err := reader.ReadBytes('\n')
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(line, &resp); err != nil {
		return fmt.Errorf("malformed response: %w", err)
	}
	if resp.Status != "ok" {
		return fmt.Errorf("daemon error: %s", resp.Error)
	}
	if out != nil && len(resp.Data) > 0 {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}
