package api

// Error is the body of every failed API request.
type Error struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Trace   string `json:"trace,omitempty"`
}
