package ai

// Response is the envelope every service operation returns. When Success is
// false, Data still holds a usable fallback and Error a short description.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error,omitempty"`
}

func OK[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: data}
}

func Failed[T any](msg string, fallback T) Response[T] {
	return Response[T]{Success: false, Data: fallback, Error: msg}
}
