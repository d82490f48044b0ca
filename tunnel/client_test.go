package tunnel_test

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/yllada/snx-gui/common"
	"github.com/yllada/snx-gui/tunnel"
	"github.com/yllada/snx-gui/tunnel/tunneltest"
)

func TestClient_GetStatus(t *testing.T) {
	tests := []struct {
		name      string
		handler   tunneltest.Handler
		connected bool
	}{
		{"connected since", tunneltest.Reply(tunneltest.Connected("2024-05-01 08:00:00")), true},
		{"not connected", tunneltest.Reply(tunneltest.Disconnected()), false},
		{"ok", tunneltest.Reply(tunnel.Response{Kind: tunnel.ResponseOk}), true},
		{"error", tunneltest.Reply(tunnel.Response{Kind: tunnel.ResponseError, Error: "no session"}), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := tunneltest.NewService(t, tt.handler)
			client := tunnel.NewClient(svc.Addr())

			connected, err := client.GetStatus(context.Background())
			if err != nil {
				t.Fatalf("GetStatus() error = %v", err)
			}
			if connected != tt.connected {
				t.Errorf("GetStatus() = %v, want %v", connected, tt.connected)
			}

			raw := svc.RawRequests()
			if len(raw) != 1 || string(raw[0]) != `"GetStatus"` {
				t.Errorf("service received %q, want one \"GetStatus\"", raw)
			}
		})
	}
}

func TestClient_GetStatusUnparseable(t *testing.T) {
	svc := tunneltest.NewService(t, tunneltest.ReplyRaw([]byte("not json")))
	client := tunnel.NewClient(svc.Addr())

	_, err := client.GetStatus(context.Background())
	if !errors.Is(err, common.ErrInvalidResponse) {
		t.Errorf("GetStatus() error = %v, want ErrInvalidResponse", err)
	}
}

func TestClient_GetStatusTimeout(t *testing.T) {
	svc := tunneltest.NewService(t, tunneltest.Silent)
	client := tunnel.NewClient(svc.Addr(), tunnel.WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := client.GetStatus(context.Background())
	if !errors.Is(err, common.ErrServiceUnavailable) {
		t.Errorf("GetStatus() error = %v, want ErrServiceUnavailable", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("GetStatus() took %v, timeout not applied", elapsed)
	}
}

func TestClient_ServiceNotRunning(t *testing.T) {
	// Grab a free port and release it so nothing listens there.
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := conn.LocalAddr().String()
	conn.Close()

	client := tunnel.NewClient(addr, tunnel.WithTimeout(50*time.Millisecond))
	if _, err := client.GetStatus(context.Background()); !errors.Is(err, common.ErrServiceUnavailable) {
		t.Errorf("GetStatus() error = %v, want ErrServiceUnavailable", err)
	}
}

func TestClient_InvalidAddress(t *testing.T) {
	client := tunnel.NewClient("not-an-address")
	if _, err := client.GetStatus(context.Background()); !errors.Is(err, common.ErrSocketSetup) {
		t.Errorf("GetStatus() error = %v, want ErrSocketSetup", err)
	}
}

func TestClient_ContextCancelled(t *testing.T) {
	svc := tunneltest.NewService(t, tunneltest.Silent)
	client := tunnel.NewClient(svc.Addr(), tunnel.WithTimeout(5*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	start := time.Now()
	if _, err := client.Status(ctx); err == nil {
		t.Fatal("Status() should fail when the context expires")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Status() took %v, context deadline not honoured", elapsed)
	}
}

func TestClient_ContextAlreadyCancelled(t *testing.T) {
	svc := tunneltest.NewService(t, tunneltest.Silent)
	client := tunnel.NewClient(svc.Addr(), tunnel.WithTimeout(5*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := client.Status(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Status() error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Status() took %v after cancellation", elapsed)
	}
	if n := len(svc.Requests()); n != 0 {
		t.Errorf("service received %d requests, want 0", n)
	}
}

func TestClient_CancelWhileWaiting(t *testing.T) {
	svc := tunneltest.NewService(t, tunneltest.Silent)
	client := tunnel.NewClient(svc.Addr(), tunnel.WithTimeout(5*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)
	defer cancel()

	start := time.Now()
	if _, err := client.Status(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Status() error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Status() took %v, cancellation not honoured", elapsed)
	}
}

func TestClient_Connect(t *testing.T) {
	svc := tunneltest.NewService(t, tunneltest.Reply(tunnel.Response{Kind: tunnel.ResponseOk}))
	client := tunnel.NewClient(svc.Addr())

	params := tunnel.DefaultTunnelParams()
	params.ServerName = "vpn.example.com"
	params.UserName = "alice"
	params.Password = "hunter2"

	resp, err := client.Connect(context.Background(), params)
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if resp.Kind != tunnel.ResponseOk {
		t.Errorf("response = %s, want Ok", resp)
	}

	reqs := svc.Requests()
	if len(reqs) != 1 || reqs[0].Kind != tunnel.RequestConnect {
		t.Fatalf("requests = %+v", reqs)
	}
	if !reqs[0].Params.Equal(params) {
		t.Errorf("params = %+v, want %+v", *reqs[0].Params, params)
	}
	if raw := string(svc.RawRequests()[0]); !strings.HasPrefix(raw, `{"Connect":`) {
		t.Errorf("raw request = %s", raw)
	}
}

func TestClient_ConnectServiceError(t *testing.T) {
	svc := tunneltest.NewService(t, tunneltest.Reply(tunnel.Response{Kind: tunnel.ResponseError, Error: "bad password"}))
	client := tunnel.NewClient(svc.Addr())

	resp, err := client.Connect(context.Background(), tunnel.DefaultTunnelParams())
	if !errors.Is(err, common.ErrServiceError) {
		t.Fatalf("Connect() error = %v, want ErrServiceError", err)
	}
	if resp == nil || resp.Error != "bad password" {
		t.Errorf("response = %v", resp)
	}
	if !strings.Contains(err.Error(), "bad password") {
		t.Errorf("error %q should carry the service message", err)
	}
}

func TestClient_Disconnect(t *testing.T) {
	svc := tunneltest.NewService(t, tunneltest.ReplyRaw([]byte("ignored garbage")))
	client := tunnel.NewClient(svc.Addr())

	if err := client.Disconnect(context.Background()); err != nil {
		t.Fatalf("Disconnect() error = %v", err)
	}
	raw := svc.RawRequests()
	if len(raw) != 1 || string(raw[0]) != `"Disconnect"` {
		t.Errorf("service received %q", raw)
	}
}

func TestClient_DisconnectNoReply(t *testing.T) {
	svc := tunneltest.NewService(t, tunneltest.Silent)
	client := tunnel.NewClient(svc.Addr(), tunnel.WithTimeout(30*time.Millisecond))

	if err := client.Disconnect(context.Background()); err != nil {
		t.Errorf("Disconnect() error = %v, a missing reply is ignored", err)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	client := tunnel.NewClient("")
	if client.ServerAddress() != common.DefaultServiceAddress {
		t.Errorf("ServerAddress() = %q, want %q", client.ServerAddress(), common.DefaultServiceAddress)
	}
}
