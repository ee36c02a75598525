package spy

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Response is the value a stubbed "fetch" dependency returns.
type Response struct {
	Status int
	OK     bool

	body []byte
}

// FetchResponseOK returns a 200 response whose JSON body encodes body.
// It panics if body cannot be encoded, which is a bug in the test.
func FetchResponseOK(body any) *Response {
	data, err := json.Marshal(body)
	if err != nil {
		panic(fmt.Sprintf("spy: encode response body: %v", err))
	}
	return &Response{Status: http.StatusOK, OK: true, body: data}
}

// FetchResponseError returns a failed response with the given status and
// an empty body.
func FetchResponseError(status int) *Response {
	return &Response{Status: status}
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if len(r.body) == 0 {
		return fmt.Errorf("spy: response %d has no body", r.Status)
	}
	return json.Unmarshal(r.body, v)
}

// Text returns the raw body.
func (r *Response) Text() string {
	return string(r.body)
}
