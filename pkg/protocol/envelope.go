package protocol

import "encoding/json"

// Command is one parsed request. Immutable once parsed.
type Command struct {
	Name   string         `json:"type"`
	Params map[string]any `json:"params,omitempty"`
}

// ParseCommand decodes a single request frame.
func ParseCommand(data []byte) (*Command, error) {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, &ValidationError{Key: "type", Reason: "malformed request JSON: " + err.Error()}
	}
	if cmd.Name == "" {
		return nil, &ValidationError{Key: "type", Reason: "missing command name"}
	}
	if cmd.Params == nil {
		cmd.Params = map[string]any{}
	}
	return &cmd, nil
}

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the envelope written back for every command.
type Response struct {
	Status string `json:"status"`
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	// Details carries one message per parameter when several failed
	// validation at once.
	Details []string `json:"details,omitempty"`
}

// Success builds a success response carrying the given result.
func Success(result any) *Response {
	return &Response{Status: StatusSuccess, Result: result}
}

// Errorf builds an error response from an error value. The message is
// guaranteed non-empty; aggregated parameter failures are broken out into
// Details as well.
func Errorf(err error) *Response {
	r := &Response{Status: StatusError, Error: SafeErrorMessage(err)}
	for _, e := range ValidationErrors(err) {
		r.Details = append(r.Details, e.Error())
	}
	return r
}

// ErrorMessage builds an error response from a plain message.
func ErrorMessage(msg string) *Response {
	if msg == "" {
		msg = "unknown error"
	}
	return &Response{Status: StatusError, Error: msg}
}

// Encode serializes the response to a single JSON frame (no trailing newline).
func (r *Response) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// SafeErrorMessage extracts a message from err, never returning an empty
// string. Failure paths must always carry a readable message.
func SafeErrorMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	msg := err.Error()
	if msg == "" {
		return "unknown error"
	}
	return msg
}
