package orchestrator

// SessionState is the session lifecycle: Anonymous -> Authenticating ->
// Authenticated -> Anonymous
type SessionState int

const (
	Anonymous SessionState = iota
	Authenticating
	Authenticated
)

func (s SessionState) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// ResourceState is the resource lifecycle: Unbound -> Binding -> Bound ->
// Unbound
type ResourceState int

const (
	Unbound ResourceState = iota
	Binding
	Bound
)

func (s ResourceState) String() string {
	switch s {
	case Binding:
		return "binding"
	case Bound:
		return "bound"
	default:
		return "unbound"
	}
}

// TurnState is the per-question lifecycle: Idle -> Pending -> Idle
type TurnState int

const (
	Idle TurnState = iota
	Pending
)

func (s TurnState) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

// View is a navigation target issued to the presentation layer
type View string

const (
	ViewLanding      View = "landing"
	ViewSignIn       View = "signin"
	ViewUpload       View = "upload"
	ViewConversation View = "conversation"
)

// Navigator receives navigation directives
type Navigator interface {
	Goto(v View)
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(v View)

func (f NavigatorFunc) Goto(v View) { f(v) }

// Assistant text seeded or appended by the orchestrator
const (
	DocumentGreeting = "I've analyzed your document %q. What would you like to know about it?"
	VideoGreeting    = "I've loaded your video. What would you like to discuss about it?"
	NoAnswerText     = "I couldn't find information about that in the document."
	FailureText      = "Sorry, I couldn't process that question."
)
