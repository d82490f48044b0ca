package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yllada/snx-gui/common"
	"github.com/yllada/snx-gui/vpn"
)

// Run starts the status monitor and shows the terminal client until the
// user quits or ctx is cancelled.
func Run(ctx context.Context, manager *vpn.Manager) error {
	manager.Start(ctx)
	defer manager.Stop()

	model := NewModel(manager, manager.LoadForm(), manager.Monitor().Updates())
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	common.LogInfo("Terminal client started")
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("terminal client: %w", err)
	}
	return nil
}
