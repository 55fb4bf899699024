package portal

import "fmt"

type Kind int

const (
	// KindNetwork is an I/O fault, timeout or unexpected status, retriable by the caller.
	KindNetwork Kind = iota + 1
	// KindProtocol means the page structure was not recognized, the layout most likely changed.
	KindProtocol
	// KindAuth means the portal rejected the credentials or the login could not be confirmed.
	KindAuth
	// KindSessionExpired means the portal served the login page to an authenticated session.
	KindSessionExpired
	// KindNotAuthenticated means an operation needing a session was called without one.
	KindNotAuthenticated
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network error"
	case KindProtocol:
		return "protocol error"
	case KindAuth:
		return "auth error"
	case KindSessionExpired:
		return "session expired"
	case KindNotAuthenticated:
		return "not authenticated"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Error is the only error type that leaves this package, raw transport errors are
// always wrapped into one.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

var (
	ErrNetwork          = &Error{Kind: KindNetwork}
	ErrProtocol         = &Error{Kind: KindProtocol}
	ErrAuth             = &Error{Kind: KindAuth}
	ErrSessionExpired   = &Error{Kind: KindSessionExpired}
	ErrNotAuthenticated = &Error{Kind: KindNotAuthenticated}
)

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Message)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, e.Err.Error())
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, ErrNetwork) works
// regardless of the message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func networkError(message string, err error) error {
	return &Error{Kind: KindNetwork, Message: message, Err: err}
}

func protocolError(message string, err error) error {
	return &Error{Kind: KindProtocol, Message: message, Err: err}
}

func authError(message string) error {
	return &Error{Kind: KindAuth, Message: message}
}

// SessionExpired creates a session expired error, it is exported since expiry is
// detected by whoever reads the pages, not by the client.
func SessionExpired(message string) error {
	return &Error{Kind: KindSessionExpired, Message: message}
}

func NotAuthenticated(message string) error {
	return &Error{Kind: KindNotAuthenticated, Message: message}
}
