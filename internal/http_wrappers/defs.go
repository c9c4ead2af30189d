package http_wrappers

// RequestWrapper is the read side of an API request. Handlers only see this so
// they do not depend on the HTTP library that serves them.
type RequestWrapper interface {
	Method() string
	Path() string
	Header(key string) string
	SetHeader(key string, value string)
	// PathValue returns a named route wildcard such as {dataset}.
	PathValue(name string) string
	Query(key string) []string
}

// ResponseWrapper writes JSON documents and API errors.
type ResponseWrapper interface {
	SetHeader(key string, value string)
	WriteJSON(v any, code int)
	Error(errorMessage string, code int, requestId string)
}
