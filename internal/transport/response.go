package transport

// Response is the status envelope every business endpoint answers with.
type Response struct {
	Status  bool   `json:"Status"`
	Message string `json:"Message,omitempty"`
	Error   string `json:"Error,omitempty"`
	Errors  any    `json:"Errors,omitempty"`
}

func OK() Response { return Response{Status: true} }

func Fail(msg string) Response { return Response{Errors: msg} }

func FailError(msg string) Response { return Response{Error: msg} }

// Count answers {"Status": true, "<label>": n}.
func Count(label string, n int64) map[string]any {
	return map[string]any{"Status": true, label: n}
}
