// Package cli provides the command-line interface for the SNX client.
// It lets users query and drive the tunnel service from a terminal
// without launching the GUI.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/yllada/snx-gui/common"
	"github.com/yllada/snx-gui/config"
	"github.com/yllada/snx-gui/form"
	"github.com/yllada/snx-gui/history"
	"github.com/yllada/snx-gui/tunnel"
	"github.com/yllada/snx-gui/vpn"
)

// HistoryReader lists recorded events.
type HistoryReader interface {
	Recent(ctx context.Context, limit int) ([]history.Event, error)
}

// CLI runs the non-interactive commands.
type CLI struct {
	manager *vpn.Manager
	history HistoryReader
	out     io.Writer
}

// New creates a new CLI instance. h may be nil when the history is
// disabled.
func New(manager *vpn.Manager, h HistoryReader, out io.Writer) *CLI {
	return &CLI{manager: manager, history: h, out: out}
}

// Connect sends a Connect request for f. With wait > 0 it then polls the
// service until the tunnel is up or the wait expires.
func (c *CLI) Connect(ctx context.Context, f *form.Form, wait time.Duration) error {
	server := strings.TrimSpace(f.ServerAddress)
	fmt.Fprintf(c.out, "Connecting to %s...\n", server)

	resp, err := c.manager.Connect(ctx, f)
	if errors.Is(err, common.ErrMissingCredentials) {
		for _, msg := range f.Errors() {
			fmt.Fprintln(c.out, msg)
		}
		return err
	}
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	fmt.Fprintf(c.out, "Service answered: %s\n", resp)

	if wait <= 0 {
		return nil
	}

	timeout := time.After(wait)
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timeout:
			return fmt.Errorf("tunnel not up after %s", wait)
		case <-ticker.C:
			status := c.manager.CheckNow(ctx)
			if status.Connected {
				fmt.Fprintf(c.out, "✓ Connected to %s\n", server)
				return nil
			}
			if status.ServiceError != "" {
				return fmt.Errorf("connection failed: %s", status.ServiceError)
			}
		}
	}
}

// Disconnect asks the service to close the tunnel.
func (c *CLI) Disconnect(ctx context.Context) error {
	fmt.Fprintln(c.out, "Disconnecting...")
	if err := c.manager.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}
	fmt.Fprintln(c.out, "✓ Disconnect request sent")
	return nil
}

// Status prints one status observation.
func (c *CLI) Status(ctx context.Context) error {
	status := c.manager.CheckNow(ctx)
	c.printStatus(status)
	if errors.Is(status.Err, common.ErrSocketSetup) {
		return status.Err
	}
	return nil
}

// Watch prints every change reported by the monitor until ctx ends.
func (c *CLI) Watch(ctx context.Context) error {
	c.manager.Start(ctx)
	defer c.manager.Stop()

	updates := c.manager.Monitor().Updates()
	var last *vpn.Status
	for {
		select {
		case <-ctx.Done():
			return nil
		case status := <-updates:
			if last != nil && last.ServiceRunning == status.ServiceRunning && last.Connected == status.Connected {
				continue
			}
			fmt.Fprintf(c.out, "[%s] ", status.CheckedAt.Format("15:04:05"))
			c.printStatus(status)
			last = &status
		}
	}
}

func (c *CLI) printStatus(status vpn.Status) {
	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Connection status:\t%s\n", status.ConnectionText())
	fmt.Fprintf(w, "Service status:\t%s\n", status.ServiceText())
	if status.Connected && status.ConnectedSince != "" {
		fmt.Fprintf(w, "Connected since:\t%s\n", status.ConnectedSince)
	}
	if status.ServiceError != "" {
		fmt.Fprintf(w, "Service error:\t%s\n", status.ServiceError)
	}
	if status.Err != nil {
		fmt.Fprintf(w, "Reason:\t%v\n", status.Err)
	}
	w.Flush()
}

// ShowConfig prints the remembered configuration as stored on disk.
func (c *CLI) ShowConfig() error {
	cfg, err := config.LoadUserConfig(c.manager.UserConfigPath())
	if err != nil {
		fmt.Fprintf(c.out, "Warning: %v\n", err)
	}
	data, err := json.MarshalIndent(config.PersistedUserConfig(cfg), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, string(data))
	return nil
}

// ResetConfig overwrites the remembered configuration with defaults.
func (c *CLI) ResetConfig() error {
	if err := config.SaveUserConfig(c.manager.UserConfigPath(), tunnel.DefaultUserConfig()); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "✓ Configuration reset (%s)\n", c.manager.UserConfigPath())
	return nil
}

// History prints the most recent connection events.
func (c *CLI) History(ctx context.Context, limit int) error {
	if c.history == nil {
		return common.ErrHistoryDisabled
	}
	events, err := c.history.Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Fprintln(c.out, "No events recorded.")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tEVENT\tSERVER\tDETAIL")
	fmt.Fprintln(w, "----\t-----\t------\t------")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.At.Local().Format("2006-01-02 15:04:05"), e.Kind, dash(e.Server), dash(e.Detail))
	}
	return w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
