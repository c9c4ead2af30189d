package constants

// Status codes returned by the read API.
const (
	HTTPCodeOK                  = 200
	HTTPCodeBadRequest          = 400
	HTTPCodeNotFound            = 404
	HTTPCodeMethodNotAllowed    = 405
	HTTPCodeInternalServerError = 500
	HTTPCodeServiceUnavailable  = 503
)
