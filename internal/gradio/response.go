package gradio

// Response is the completed output of a Predict call.
type Response struct {
	Endpoint string
	EventID  string
	Data     []any
}

// Text returns Data[i] when it is a string, and "" otherwise.
func (r *Response) Text(i int) string {
	if r == nil || i < 0 || i >= len(r.Data) {
		return ""
	}
	s, _ := r.Data[i].(string)
	return s
}
