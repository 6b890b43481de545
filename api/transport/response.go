package transport

// Envelope is the wire format shared by every API response. The ok flag is
// authoritative; code and message are present only on failures.
type Envelope struct {
	OK      bool        `json:"ok"`
	Code    string      `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

// NewSuccess wraps a payload in a success envelope.
func NewSuccess(data interface{}) Envelope {
	return Envelope{OK: true, Data: data}
}

// NewError builds a failure envelope. Details carries optional structured
// context, such as per-dependency health states.
func NewError(code, message string, details interface{}) Envelope {
	return Envelope{
		OK:      false,
		Code:    code,
		Message: message,
		Details: details,
	}
}
