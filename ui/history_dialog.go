package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/diamondburned/gotk4/pkg/gtk/v4"
	"github.com/diamondburned/gotk4/pkg/pango"

	"github.com/yllada/snx-gui/history"
)

const historyDialogLimit = 100

// HistoryDialog lists recent connection events.
type HistoryDialog struct {
	window     *gtk.Window
	mainWindow *MainWindow
}

// NewHistoryDialog creates the dialog and loads the events.
func NewHistoryDialog(mainWindow *MainWindow) *HistoryDialog {
	hd := &HistoryDialog{mainWindow: mainWindow}
	hd.build()
	return hd
}

func (hd *HistoryDialog) build() {
	hd.window = gtk.NewWindow()
	hd.window.SetTitle("Connection History")
	hd.window.SetTransientFor(&hd.mainWindow.window.Window)
	hd.window.SetModal(true)
	hd.window.SetDefaultSize(520, 420)

	list := gtk.NewListBox()
	list.SetSelectionMode(gtk.SelectionNone)
	list.AddCSSClass("boxed-list")

	store := hd.mainWindow.app.history
	if store == nil {
		list.Append(gtk.NewLabel("Connection history is disabled in the preferences."))
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		events, err := store.Recent(ctx, historyDialogLimit)
		switch {
		case err != nil:
			list.Append(gtk.NewLabel("Could not read history: " + err.Error()))
		case len(events) == 0:
			list.Append(gtk.NewLabel("No events recorded yet."))
		default:
			for _, e := range events {
				list.Append(eventRow(e))
			}
		}
	}

	scrolled := gtk.NewScrolledWindow()
	scrolled.SetVExpand(true)
	scrolled.SetPolicy(gtk.PolicyNever, gtk.PolicyAutomatic)
	scrolled.SetMarginTop(16)
	scrolled.SetMarginBottom(16)
	scrolled.SetMarginStart(16)
	scrolled.SetMarginEnd(16)
	scrolled.SetChild(list)

	hd.window.SetChild(scrolled)
}

func eventRow(e history.Event) *gtk.Box {
	row := gtk.NewBox(gtk.OrientationHorizontal, 12)
	row.SetMarginTop(6)
	row.SetMarginBottom(6)
	row.SetMarginStart(12)
	row.SetMarginEnd(12)

	when := gtk.NewLabel(e.At.Local().Format("2006-01-02 15:04:05"))
	when.AddCSSClass("monospace")
	row.Append(when)

	text := string(e.Kind)
	if e.Server != "" {
		text = fmt.Sprintf("%s (%s)", text, e.Server)
	}
	what := gtk.NewLabel(text)
	what.SetXAlign(0)
	what.SetHExpand(true)
	row.Append(what)

	if e.Detail != "" {
		detail := gtk.NewLabel(e.Detail)
		detail.AddCSSClass("dim-label")
		detail.SetEllipsize(pango.EllipsizeEnd)
		row.Append(detail)
	}
	return row
}

// Show displays the dialog.
func (hd *HistoryDialog) Show() {
	hd.window.Show()
}
