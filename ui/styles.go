// Package ui provides the graphical user interface for the SNX client.
// This file contains the CSS styles.
package ui

import (
	"github.com/diamondburned/gotk4/pkg/gdk/v4"
	"github.com/diamondburned/gotk4/pkg/gtk/v4"
)

// Theme-aware styles; colors follow the GNOME palette so they work in
// light and dark mode.
const appCSS = `
/* Login form */
.field-label {
    font-weight: 600;
    margin-top: 6px;
}

.error-label {
    color: #e01b24;
    font-size: 12px;
}

entry {
    border-radius: 6px;
    min-height: 34px;
}

/* Status */
.status-box {
    border-top: 1px solid alpha(currentColor, 0.15);
    padding-top: 12px;
}

.status-connected {
    color: #2ec27e;
    font-weight: 600;
}

.status-disconnected {
    opacity: 0.7;
}

.status-connecting {
    color: #e5a50a;
    font-weight: 500;
}

.status-error {
    color: #e01b24;
    font-weight: 500;
}

/* Settings cards */
.preferences-card {
    border-radius: 12px;
    border: 1px solid alpha(currentColor, 0.15);
}

.settings-title {
    font-weight: 500;
}

/* Buttons */
button.suggested-action {
    background-color: #3584e4;
    color: white;
}

button.suggested-action:hover {
    background-color: #1c71d8;
}

button.destructive-action {
    background-color: #e01b24;
    color: white;
}

button.destructive-action:hover {
    background-color: #c01c28;
}

button.flat {
    background-color: transparent;
}

button.flat:hover {
    background-color: alpha(currentColor, 0.1);
}

/* History */
list > row {
    background-color: transparent;
}

.monospace {
    font-family: monospace;
    font-size: 12px;
}
`

// LoadStyles loads the custom CSS styles for the application.
// Should be called during application startup.
func LoadStyles() {
	display := gdk.DisplayGetDefault()
	if display == nil {
		return
	}

	provider := gtk.NewCSSProvider()
	provider.LoadFromString(appCSS)

	gtk.StyleContextAddProviderForDisplay(
		display,
		provider,
		gtk.STYLE_PROVIDER_PRIORITY_APPLICATION,
	)
}
