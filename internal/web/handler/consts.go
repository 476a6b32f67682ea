package handler

const (
	// RouterRootPath is the root path of a route group.
	RouterRootPath = "/"

	// HeaderTokenPrefix prefixes the API token in the Authorization header.
	HeaderTokenPrefix = "Token "

	// LocalToken is the fiber.Locals key holding the API token of the request.
	LocalToken = "CurrentToken"

	// ErrNilDepsFatalLogMsg is used if app or one of the dependencies is nil.
	ErrNilDepsFatalLogMsg = "app or dependencies are nil"
)
