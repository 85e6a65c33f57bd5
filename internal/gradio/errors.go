package gradio

import "fmt"

// AppError is reported when the app itself fails while handling a call.
type AppError struct {
	Endpoint string
	Message  string
}

func (e *AppError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: the upstream Gradio app raised an error", e.Endpoint)
	}
	return fmt.Sprintf("%s: %s", e.Endpoint, e.Message)
}

// HTTPError is a non-2xx response from the app or the Hub.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}
