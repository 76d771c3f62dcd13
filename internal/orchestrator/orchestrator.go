// Package orchestrator is the composition root of the client core. It wires
// the auth session, the backend client, the resource binder and the
// transcript into the sign-in, switch-resource and ask flows.
package orchestrator

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/ethanbaker/docchat/pkg/auth"
	"github.com/ethanbaker/docchat/pkg/resource"
	"github.com/ethanbaker/docchat/pkg/sdk"
	"github.com/ethanbaker/docchat/pkg/transcript"
	"go.uber.org/zap"
)

// Backend is the subset of the Remote API the orchestrator drives
type Backend interface {
	SignIn(ctx context.Context, username, password string) (*sdk.TokenResponse, error)
	SignUp(ctx context.Context, req *sdk.SignUpRequest) (*sdk.Profile, error)
	GoogleLoginURL() string
	GetProfile(ctx context.Context) (*sdk.Profile, error)
	UploadDocument(ctx context.Context, name string, content io.Reader) (*sdk.UploadResponse, error)
	GenerateResponse(ctx context.Context, query, key string) (*sdk.Answer, error)
	DeleteNamespaceData(ctx context.Context) error
	UploadVideo(ctx context.Context, videoURL string) (*sdk.VideoResponse, error)
}

// Options holds the collaborators of an Orchestrator
type Options struct {
	Session    *auth.Session
	Backend    Backend
	Binder     *resource.Binder
	Transcript *transcript.Transcript
	Navigator  Navigator // optional
	Logger     *zap.Logger
	Greeting   bool // seed an assistant greeting whenever a resource is bound
}

// Orchestrator layers the session, resource and turn state machines over the
// client core components
type Orchestrator struct {
	session    *auth.Session
	backend    Backend
	binder     *resource.Binder
	transcript *transcript.Transcript
	navigator  Navigator
	logger     *zap.Logger
	greeting   bool

	mu            sync.RWMutex
	sessionState  SessionState
	resourceState ResourceState
	epoch         uint64 // bumped on every session transition
}

// New wires an Orchestrator and subscribes it to session and binding changes
func New(opts Options) (*Orchestrator, error) {
	if opts.Session == nil || opts.Backend == nil || opts.Binder == nil || opts.Transcript == nil {
		return nil, fmt.Errorf("session, backend, binder and transcript are required")
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Navigator == nil {
		opts.Navigator = NavigatorFunc(func(View) {})
	}

	o := &Orchestrator{
		session:    opts.Session,
		backend:    opts.Backend,
		binder:     opts.Binder,
		transcript: opts.Transcript,
		navigator:  opts.Navigator,
		logger:     opts.Logger.Named("orchestrator"),
		greeting:   opts.Greeting,
	}

	o.session.Subscribe(o.onSessionChange)
	o.binder.Subscribe(o.onBindingChange)

	return o, nil
}

// Start restores the persisted session and binding and navigates to the
// matching view. A binding without a session is discarded.
func (o *Orchestrator) Start(ctx context.Context) View {
	if !o.session.RestoreOnStart(ctx) {
		o.setSessionState(Anonymous)
		o.binder.Clear(ctx)
		return o.goTo(ViewLanding)
	}
	o.setSessionState(Authenticated)

	binding, ok := o.binder.Restore(ctx)
	if !ok {
		return o.goTo(ViewUpload)
	}

	o.transcript.Reset(o.greetingFor(binding))
	o.setResourceState(Bound)
	o.logger.Debug("restored binding", zap.String("name", binding.DisplayName))

	return o.goTo(ViewConversation)
}

// onSessionChange runs the logout cascade: binding cleared, transcript
// emptied, any pending answer made stale
func (o *Orchestrator) onSessionChange(ctx context.Context, ev auth.Event) {
	o.mu.Lock()
	o.epoch++
	if ev.Authenticated {
		o.sessionState = Authenticated
	} else {
		o.sessionState = Anonymous
	}
	o.mu.Unlock()

	if ev.Authenticated {
		return
	}

	o.binder.Clear(ctx)
	o.transcript.Reset("")
	o.goTo(ViewLanding)
}

// onBindingChange resets the transcript for every bind, including a re-bind
// of the same resource
func (o *Orchestrator) onBindingChange(ctx context.Context, previous, current resource.Binding) {
	o.transcript.Reset(o.greetingFor(current))

	if current.IsZero() {
		o.setResourceState(Unbound)
	} else {
		o.setResourceState(Bound)
	}
}

func (o *Orchestrator) greetingFor(b resource.Binding) string {
	if !o.greeting || b.IsZero() {
		return ""
	}
	if b.Kind == resource.KindVideo {
		return VideoGreeting
	}
	return fmt.Sprintf(DocumentGreeting, b.DisplayName)
}

func (o *Orchestrator) goTo(v View) View {
	o.navigator.Goto(v)
	return v
}

/** State accessors **/

// SessionState returns the session lifecycle state
func (o *Orchestrator) SessionState() SessionState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.sessionState
}

// ResourceState returns the resource lifecycle state
func (o *Orchestrator) ResourceState() ResourceState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.resourceState
}

// TurnState returns the turn lifecycle state
func (o *Orchestrator) TurnState() TurnState {
	if o.transcript.Pending() {
		return Pending
	}
	return Idle
}

// Transcript returns the turns of the current conversation
func (o *Orchestrator) Transcript() []transcript.Turn {
	return o.transcript.Turns()
}

// ExportTranscript writes the conversation as YAML
func (o *Orchestrator) ExportTranscript(w io.Writer) error {
	binding, _ := o.binder.Current()
	return o.transcript.WriteYAML(w, binding.DisplayName)
}

// Binding returns the active binding
func (o *Orchestrator) Binding() (resource.Binding, bool) {
	return o.binder.Current()
}

func (o *Orchestrator) currentEpoch() uint64 {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.epoch
}

func (o *Orchestrator) setSessionState(s SessionState) {
	o.mu.Lock()
	o.sessionState = s
	o.mu.Unlock()
}

func (o *Orchestrator) setResourceState(s ResourceState) {
	o.mu.Lock()
	o.resourceState = s
	o.mu.Unlock()
}
