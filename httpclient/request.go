package httpclient

import (
	"encoding/json"
	"fmt"
)

// Request is one outbound call.
//
// Path is joined onto Config.BaseURL unless it is already absolute. Headers
// override the client defaults, and a "Host" entry becomes the request
// host. Body may be a *MultipartBody, an io.Reader (sent once, never
// retried), []byte, a string (text/plain) or any JSON-encodable value.
// Auth replaces Config.Auth for this call.
type Request struct {
	Method  string
	Path    string
	Headers map[string]string
	Query   map[string]string
	Body    any
	Auth    *AuthConfig
}

// Response is a fully read answer. Headers keep the first value per name.
type Response struct {
	StatusCode int
	Headers    map[string]string
	Body       []byte
}

func (r *Response) IsSuccess() bool { return r.StatusCode/100 == 2 }

// JSON unmarshals the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
