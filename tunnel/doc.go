// Package tunnel defines the records exchanged with the tunnel service and
// the UDP client that carries them.
//
// The service speaks externally tagged JSON. Requests are the bare strings
// "GetStatus" and "Disconnect", or {"Connect": <TunnelParams>}. Responses are
// "Ok", {"Error": "<message>"} or
// {"ConnectionStatus": {"connected_since": "<time>" | null}}.
//
// Each request uses a fresh loopback socket bound to an ephemeral port, with
// short read and write deadlines. A missing or undecodable answer means the
// service is not running; callers do not retry until their next poll.
package tunnel
