// Package vpn manages the connection to the tunnel service for the SNX
// client.
//
// The package is organized around two types:
//
//   - StatusMonitor: polls the service on a fixed interval and publishes
//     each observation on a channel and to change callbacks
//   - Manager: sends Connect and Disconnect requests on behalf of the
//     front-ends, persists the remembered form and reports transitions to
//     the history store and the desktop notifier
//
// # Connection Flow
//
//  1. The user fills the login form in one of the front-ends
//  2. The front-end calls Manager.Connect with the form
//  3. The form is validated; nothing is sent if a required field is empty
//  4. The Connect request goes to the service and the password is cleared
//  5. The monitor polls immediately and the front-end receives the new
//     status from StatusMonitor.Updates
//
// # Thread Safety
//
// Manager and StatusMonitor are safe for concurrent use. Change callbacks
// run on the polling goroutine; GUI front-ends must hop back to their own
// main loop before touching widgets.
package vpn
