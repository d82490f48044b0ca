package tunnel

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// RequestKind identifies a service request.
type RequestKind int

const (
	RequestGetStatus RequestKind = iota
	RequestConnect
	RequestDisconnect
)

func (k RequestKind) String() string {
	switch k {
	case RequestGetStatus:
		return "GetStatus"
	case RequestConnect:
		return "Connect"
	case RequestDisconnect:
		return "Disconnect"
	default:
		return "Unknown"
	}
}

// Request is a message sent to the tunnel service.
type Request struct {
	Kind   RequestKind
	Params *TunnelParams // set for RequestConnect only
}

// GetStatusRequest asks whether a tunnel is up.
func GetStatusRequest() Request { return Request{Kind: RequestGetStatus} }

// DisconnectRequest asks the service to tear the tunnel down.
func DisconnectRequest() Request { return Request{Kind: RequestDisconnect} }

// ConnectRequest asks the service to open a tunnel with params.
func ConnectRequest(params TunnelParams) Request {
	p := params.Normalized()
	return Request{Kind: RequestConnect, Params: &p}
}

// MarshalJSON encodes the request as an externally tagged value.
func (r Request) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case RequestGetStatus, RequestDisconnect:
		return json.Marshal(r.Kind.String())
	case RequestConnect:
		if r.Params == nil {
			return nil, errors.New("connect request without params")
		}
		return json.Marshal(map[string]TunnelParams{"Connect": *r.Params})
	default:
		return nil, fmt.Errorf("unknown request kind %d", int(r.Kind))
	}
}

// UnmarshalJSON decodes an externally tagged request.
func (r *Request) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		switch name {
		case "GetStatus":
			*r = GetStatusRequest()
		case "Disconnect":
			*r = DisconnectRequest()
		default:
			return fmt.Errorf("unknown request %q", name)
		}
		return nil
	}

	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("request: %w", err)
	}
	raw, ok := tagged["Connect"]
	if !ok || len(tagged) != 1 {
		return errors.New("request: expected a single Connect variant")
	}
	var params TunnelParams
	if err := json.Unmarshal(raw, &params); err != nil {
		return fmt.Errorf("connect params: %w", err)
	}
	*r = Request{Kind: RequestConnect, Params: &params}
	return nil
}

// ResponseKind identifies a service response variant.
type ResponseKind int

const (
	ResponseOk ResponseKind = iota
	ResponseError
	ResponseConnectionStatus
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseOk:
		return "Ok"
	case ResponseError:
		return "Error"
	case ResponseConnectionStatus:
		return "ConnectionStatus"
	default:
		return "Unknown"
	}
}

// ConnectionStatus is the payload of a ConnectionStatus response.
type ConnectionStatus struct {
	ConnectedSince *string `json:"connected_since"`
}

// Response is a message received from the tunnel service.
type Response struct {
	Kind   ResponseKind
	Error  string           // ResponseError only
	Status ConnectionStatus // ResponseConnectionStatus only
}

// Connected reports whether the response means a tunnel is up.
// Ok counts as connected; Error never does.
func (r Response) Connected() bool {
	switch r.Kind {
	case ResponseOk:
		return true
	case ResponseConnectionStatus:
		return r.Status.ConnectedSince != nil
	default:
		return false
	}
}

// ConnectedSince returns the connection timestamp reported by the service,
// or "" when there is none.
func (r Response) ConnectedSince() string {
	if r.Kind != ResponseConnectionStatus || r.Status.ConnectedSince == nil {
		return ""
	}
	return *r.Status.ConnectedSince
}

func (r Response) String() string {
	switch r.Kind {
	case ResponseError:
		return "Error(" + r.Error + ")"
	case ResponseConnectionStatus:
		if since := r.ConnectedSince(); since != "" {
			return "ConnectionStatus(connected since " + since + ")"
		}
		return "ConnectionStatus(disconnected)"
	default:
		return r.Kind.String()
	}
}

// MarshalJSON encodes the response as an externally tagged value.
func (r Response) MarshalJSON() ([]byte, error) {
	switch r.Kind {
	case ResponseOk:
		return json.Marshal("Ok")
	case ResponseError:
		return json.Marshal(map[string]string{"Error": r.Error})
	case ResponseConnectionStatus:
		return json.Marshal(map[string]ConnectionStatus{"ConnectionStatus": r.Status})
	default:
		return nil, fmt.Errorf("unknown response kind %d", int(r.Kind))
	}
}

// UnmarshalJSON decodes an externally tagged response.
func (r *Response) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		if name != "Ok" {
			return fmt.Errorf("unknown response %q", name)
		}
		*r = Response{Kind: ResponseOk}
		return nil
	}

	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("response: %w", err)
	}
	if len(tagged) != 1 {
		return fmt.Errorf("response: expected one variant, got %d", len(tagged))
	}

	if raw, ok := tagged["Error"]; ok {
		var msg string
		if err := json.Unmarshal(raw, &msg); err != nil {
			return fmt.Errorf("error response: %w", err)
		}
		*r = Response{Kind: ResponseError, Error: msg}
		return nil
	}
	if raw, ok := tagged["ConnectionStatus"]; ok {
		var status ConnectionStatus
		if err := json.Unmarshal(raw, &status); err != nil {
			return fmt.Errorf("connection status: %w", err)
		}
		*r = Response{Kind: ResponseConnectionStatus, Status: status}
		return nil
	}
	return errors.New("response: unknown variant")
}

// DecodeResponse parses a datagram from the service. NUL bytes are
// dropped before decoding.
func DecodeResponse(datagram []byte) (*Response, error) {
	payload := bytes.ReplaceAll(datagram, []byte{0}, nil)
	var resp Response
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
