package http

// StatusClass is the coarse category of a status code, derived from its
// first digit.
type StatusClass int

const (
	StatusClassInvalid StatusClass = iota
	StatusClassInformational
	StatusClassSuccess
	StatusClassRedirection
	StatusClassClientError
	StatusClassServerError
)

// ClassOf returns the StatusClass of code. Codes outside [100, 599] are
// StatusClassInvalid.
func ClassOf(code int) StatusClass {
	if code < 100 || code > 599 {
		return StatusClassInvalid
	}
	return StatusClass(code / 100)
}

func (c StatusClass) String() string {
	switch c {
	case StatusClassInformational:
		return "informational"
	case StatusClassSuccess:
		return "success"
	case StatusClassRedirection:
		return "redirection"
	case StatusClassClientError:
		return "client error"
	case StatusClassServerError:
		return "server error"
	default:
		return "invalid"
	}
}

// IsError reports whether responses of this class make RaiseForStatus fail.
func (c StatusClass) IsError() bool {
	return c == StatusClassInformational || c == StatusClassClientError || c == StatusClassServerError
}
