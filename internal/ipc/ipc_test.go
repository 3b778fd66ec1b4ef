package ipc

import (
	"bufio"
	"encoding/json"
	"log/slog"
	"net"
	"path/filepath"
	"testing"
)

func startTestServer(t *testing.T, handler Handler) *Client {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ctl.sock")

	srv := NewServer(path, handler, slog.Default())
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Close)

	return NewClient(path)
}

func TestCallRoundTrip(t *testing.T) {
	client := startTestServer(t, func(req Request) Response {
		if req.Command != CmdArrange {
			return Fail("unexpected command " + req.Command)
		}
		var ar ArrangeRequest
		if err := json.Unmarshal(req.Payload, &ar); err != nil {
			return Fail(err.Error())
		}
		return OK(ArrangeResult{Layout: ar.Layout, Arranged: 3})
	})

	var res ArrangeResult
	err := client.Call(CmdArrange, ArrangeRequest{Layout: "2x2"}, &res)
	if err != nil {
		t.Fatalf("Call: %v", err)
	}
	if res.Layout != "2x2" || res.Arranged != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestCallPropagatesDaemonError(t *testing.T) {
	client := startTestServer(t, func(Request) Response {
		return Fail("no displays detected")
	})

	err := client.Call(CmdGetStatus, nil, nil)
	if err == nil {
		t.Fatal("expected error response to surface")
	}
}

func TestAvailable(t *testing.T) {
	client := startTestServer(t, func(Request) Response { return OK(nil) })
	if !client.Available() {
		t.Fatal("expected running server to be available")
	}

	dead := NewClient(filepath.Join(t.TempDir(), "nothing.sock"))
	if dead.Available() {
		t.Fatal("expected missing socket to be unavailable")
	}
}

func TestServerRejectsMalformedRequests(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ctl.sock")
	srv := NewServer(path, func(Request) Response { return OK(nil) }, slog.Default())
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(srv.Close)

	conn, err := net.Dial("unix", path)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("not json\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	var resp Response
	if err := json.NewDecoder(bufio.NewReader(conn)).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "error" {
		t.Fatalf("expected error status, got %+v", resp)
	}
}
