package clierr

// Type categorizes a user-facing error for consistent messaging and exit codes.
type Type string

const (
	Validation Type = "validation"
	NotFound   Type = "not_found"
	Auth       Type = "auth"
	Transfer   Type = "transfer"
	Internal   Type = "internal"
)

// Error is a structured user-facing error.
type Error struct {
	Type    Type
	Message string
	Err     error // optional underlying error
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Err }

// New constructs a new CLI Error.
func New(t Type, msg string, err error) *Error { return &Error{Type: t, Message: msg, Err: err} }

// ExitCode maps the error category to the process exit code the CLI uses.
func (e *Error) ExitCode() int {
	switch e.Type {
	case Validation:
		return 2
	case NotFound:
		return 3
	case Auth:
		return 4
	case Transfer:
		return 5
	default:
		return 1
	}
}
