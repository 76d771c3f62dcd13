package orchestrator

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethanbaker/docchat/pkg/auth"
	"github.com/ethanbaker/docchat/pkg/errs"
	"github.com/ethanbaker/docchat/pkg/resource"
	"github.com/ethanbaker/docchat/pkg/sdk"
	"github.com/ethanbaker/docchat/pkg/store"
	"github.com/ethanbaker/docchat/pkg/transcript"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects navigation directives
type recorder struct {
	mu    sync.Mutex
	views []View
}

func (r *recorder) Goto(v View) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.views = append(r.views, v)
}

func (r *recorder) last() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.views) == 0 {
		return ""
	}
	return r.views[len(r.views)-1]
}

// harness is an orchestrator wired to a fake backend
type harness struct {
	o       *Orchestrator
	session *auth.Session
	binder  *resource.Binder
	store   store.Store
	nav     *recorder
	engine  *gin.Engine
	hits    atomic.Int32
	uploads atomic.Int32

	// answer is the generate-response handler; replace it per test
	mu     sync.Mutex
	answer gin.HandlerFunc
}

func newHarness(t *testing.T, s store.Store, greeting bool) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := &harness{store: s, nav: &recorder{}, engine: gin.New()}
	h.answer = func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Response generated successfully!", "response": "X"})
	}

	h.engine.Use(func(c *gin.Context) {
		h.hits.Add(1)
		c.Next()
	})
	h.engine.POST("/api/signin", func(c *gin.Context) {
		var req sdk.SignInRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Password != "hunter2" {
			c.JSON(http.StatusUnauthorized, gin.H{"detail": "Incorrect username or password"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"access_token": "tok-" + req.Username, "token_type": "bearer"})
	})
	h.engine.POST("/api/signup", func(c *gin.Context) {
		var req sdk.SignUpRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
			return
		}
		if req.Username == "taken" {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Username already registered"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"username": req.Username, "email": req.Email, "full_name": req.FullName})
	})

	authed := h.engine.Group("/api", func(c *gin.Context) {
		if !strings.HasPrefix(c.GetHeader("Authorization"), "Bearer tok-") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Could not validate credentials"})
			return
		}
		c.Next()
	})
	authed.GET("/get-profile", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": "alice", "email": "a@example.com", "full_name": "Alice"})
	})
	authed.POST("/upload-doc", func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "No file provided"})
			return
		}
		if !strings.HasSuffix(fh.Filename, ".pdf") {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Only PDF files are allowed"})
			return
		}
		n := h.uploads.Add(1)
		c.JSON(http.StatusOK, gin.H{"message": "ok", "chunks_processed": 1, "s3_key": fmt.Sprintf("uploads/%d/%s", n, fh.Filename)})
	})
	authed.GET("/get-doc/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"presigned_url": "https://bucket.example.com/" + c.Query("filename")})
	})
	authed.POST("/generate-response", func(c *gin.Context) {
		h.mu.Lock()
		handler := h.answer
		h.mu.Unlock()
		handler(c)
	})
	authed.DELETE("/namespace-data", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Namespace data deleted successfully"})
	})
	authed.POST("/youtube/upload", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok", "chunks_processed": 4, "video_id": "dQw4w9WgXcQ"})
	})

	server := httptest.NewServer(h.engine)
	t.Cleanup(server.Close)

	h.session = auth.NewSession(s, nil)
	client := sdk.NewClient(server.URL+"/api", h.session, h.session)
	h.binder = resource.NewBinder(s, client, nil)

	o, err := New(Options{
		Session:    h.session,
		Backend:    client,
		Binder:     h.binder,
		Transcript: transcript.New(),
		Navigator:  h.nav,
		Greeting:   greeting,
	})
	require.NoError(t, err)
	h.o = o

	return h
}

func (h *harness) setAnswer(fn gin.HandlerFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.answer = fn
}

// signedInAndBound signs in and binds report.pdf
func (h *harness) signedInAndBound(t *testing.T) resource.Binding {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.o.SignIn(ctx, "alice", "hunter2"))

	binding, err := h.o.UploadDocument(ctx, "report.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)
	return binding
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestOrchestrator_SignIn(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewInMemoryStore(), true)

	err := h.o.SignIn(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, errs.ErrClient)
	assert.Equal(t, "Incorrect username or password", Notice(err))
	assert.Equal(t, Anonymous, h.o.SessionState())

	require.NoError(t, h.o.SignIn(ctx, "alice", "hunter2"))
	assert.Equal(t, Authenticated, h.o.SessionState())
	assert.Equal(t, ViewUpload, h.nav.last())

	cred, ok := h.session.Credential()
	require.True(t, ok)
	assert.Equal(t, "tok-alice", cred.Value)

	profile, err := h.o.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
}

func TestOrchestrator_SignUp(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewInMemoryStore(), true)

	profile, err := h.o.SignUp(ctx, &sdk.SignUpRequest{Username: "bob", Email: "b@example.com", FullName: "Bob", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "bob", profile.Username)
	assert.Equal(t, ViewSignIn, h.nav.last())

	_, err = h.o.SignUp(ctx, &sdk.SignUpRequest{Username: "taken", Email: "t@example.com", FullName: "T", Password: "pw"})
	assert.Equal(t, "Username already registered", Notice(err))
}

func TestOrchestrator_OAuth(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewInMemoryStore(), true)

	assert.True(t, strings.HasSuffix(h.o.GoogleLoginURL(), "/api/google"))
	assert.Equal(t, Authenticating, h.o.SessionState())

	err := h.o.CompleteOAuth(ctx, "")
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, ViewSignIn, h.nav.last())
	assert.Equal(t, Anonymous, h.o.SessionState())

	require.NoError(t, h.o.CompleteOAuth(ctx, "tok-google"))
	assert.True(t, h.session.IsAuthenticated())
	assert.Equal(t, ViewUpload, h.nav.last())
}

func TestOrchestrator_SignInAsAnotherAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("same account keeps the binding", func(t *testing.T) {
		h := newHarness(t, store.NewInMemoryStore(), true)
		binding := h.signedInAndBound(t)
		_, err := h.o.Ask(ctx, "What is the summary?")
		require.NoError(t, err)

		require.NoError(t, h.o.SignIn(ctx, "alice", "hunter2"))

		current, ok := h.o.Binding()
		require.True(t, ok)
		assert.Equal(t, binding.StorageKey, current.StorageKey)
		assert.Len(t, h.o.Transcript(), 3)
		assert.Equal(t, ViewConversation, h.nav.last())
	})

	t.Run("different account drops the binding", func(t *testing.T) {
		h := newHarness(t, store.NewInMemoryStore(), true)
		h.signedInAndBound(t)
		_, err := h.o.Ask(ctx, "What is the summary?")
		require.NoError(t, err)

		require.NoError(t, h.o.SignIn(ctx, "bob", "hunter2"))

		_, ok := h.o.Binding()
		assert.False(t, ok)
		assert.Equal(t, Unbound, h.o.ResourceState())
		assert.Empty(t, h.o.Transcript())
		assert.Equal(t, ViewUpload, h.nav.last())

		_, err = h.store.Get(ctx, store.KeyResourceKey)
		assert.ErrorIs(t, err, errs.ErrNotFound)

		_, err = h.o.Ask(ctx, "What is the summary?")
		assert.ErrorIs(t, err, errs.ErrNotBound)
	})

	t.Run("oauth as another account drops the binding", func(t *testing.T) {
		h := newHarness(t, store.NewInMemoryStore(), false)
		h.signedInAndBound(t)

		require.NoError(t, h.o.CompleteOAuth(ctx, "tok-carol"))

		_, ok := h.o.Binding()
		assert.False(t, ok)
		assert.Equal(t, ViewUpload, h.nav.last())
	})
}

func TestOrchestrator_BindResetsTranscript(t *testing.T) {
	ctx := context.Background()

	for _, greeting := range []bool{true, false} {
		want := 0
		if greeting {
			want = 1
		}

		h := newHarness(t, store.NewInMemoryStore(), greeting)
		require.NoError(t, h.o.SignIn(ctx, "alice", "hunter2"))

		for i, name := range []string{"report.pdf", "report.pdf", "notes.pdf"} {
			_, err := h.o.UploadDocument(ctx, name, strings.NewReader("%PDF"))
			require.NoError(t, err)
			assert.Len(t, h.o.Transcript(), want, "bind %d", i)

			for j := 0; j <= i; j++ {
				_, err := h.o.Ask(ctx, "question")
				require.NoError(t, err)
			}
		}

		// Re-binding the identical key still resets
		current, _ := h.o.Binding()
		_, err := h.binder.Bind(ctx, current.DisplayName, current.StorageKey, current.Kind)
		require.NoError(t, err)
		assert.Len(t, h.o.Transcript(), want)
	}
}

func TestOrchestrator_AskScenario(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewInMemoryStore(), true)
	binding := h.signedInAndBound(t)

	assert.Equal(t, "https://bucket.example.com/report.pdf", binding.AccessURL)
	assert.Equal(t, Bound, h.o.ResourceState())
	assert.Equal(t, ViewConversation, h.nav.last())

	turn, err := h.o.Ask(ctx, "What is the summary?")
	require.NoError(t, err)
	assert.Equal(t, transcript.RoleAssistant, turn.Role)
	assert.Equal(t, "X", turn.Text)

	turns := h.o.Transcript()
	require.Len(t, turns, 3)
	assert.Equal(t, `I've analyzed your document "report.pdf". What would you like to know about it?`, turns[0].Text)
	assert.Equal(t, transcript.RoleUser, turns[1].Role)
	assert.Equal(t, "What is the summary?", turns[1].Text)
	assert.Equal(t, "X", turns[2].Text)
	assert.Equal(t, Idle, h.o.TurnState())
}

func TestOrchestrator_AskFallbacks(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewInMemoryStore(), false)
	h.signedInAndBound(t)

	h.setAnswer(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	turn, err := h.o.Ask(ctx, "Anything about penguins?")
	require.NoError(t, err)
	assert.Equal(t, NoAnswerText, turn.Text)

	h.setAnswer(func(c *gin.Context) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "index unavailable"})
	})
	turn, err = h.o.Ask(ctx, "And now?")
	assert.ErrorIs(t, err, errs.ErrServer)
	assert.Equal(t, FailureText, turn.Text)

	// Every user turn is paired with exactly one assistant turn
	turns := h.o.Transcript()
	require.Len(t, turns, 4)
	for i := 0; i < len(turns); i += 2 {
		assert.Equal(t, transcript.RoleUser, turns[i].Role)
		assert.Equal(t, transcript.RoleAssistant, turns[i+1].Role)
	}
}

func TestOrchestrator_AskValidation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewInMemoryStore(), false)
	require.NoError(t, h.o.SignIn(ctx, "alice", "hunter2"))

	_, err := h.o.Ask(ctx, "hello")
	assert.ErrorIs(t, err, errs.ErrNotBound)

	_, err = h.o.UploadDocument(ctx, "report.pdf", strings.NewReader("%PDF"))
	require.NoError(t, err)

	before := h.hits.Load()
	_, err = h.o.Ask(ctx, "   ")
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, "Question is empty.", Notice(err))
	assert.Equal(t, before, h.hits.Load())
	assert.Empty(t, h.o.Transcript())
}

func TestOrchestrator_AskUnauthenticatedMakesNoCall(t *testing.T) {
	ctx := context.Background()
	s := store.NewInMemoryStore()

	// A binding persisted from an earlier run, but no credential
	require.NoError(t, s.Set(ctx, store.KeyResourceName, "report.pdf"))
	require.NoError(t, s.Set(ctx, store.KeyResourceKey, "k1"))

	h := newHarness(t, s, true)
	assert.Equal(t, ViewLanding, h.o.Start(ctx))

	_, err := h.o.Ask(ctx, "What is the summary?")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
	assert.Equal(t, int32(0), h.hits.Load())

	_, ok := h.o.Binding()
	assert.False(t, ok, "binding without a session is discarded")
}

func TestOrchestrator_Busy(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewInMemoryStore(), false)
	h.signedInAndBound(t)

	entered := make(chan struct{})
	release := make(chan struct{})
	h.setAnswer(func(c *gin.Context) {
		close(entered)
		<-release
		c.JSON(http.StatusOK, gin.H{"response": "first"})
	})

	done := make(chan error, 1)
	go func() {
		_, err := h.o.Ask(ctx, "first question")
		done <- err
	}()
	<-entered
	assert.Equal(t, Pending, h.o.TurnState())

	_, err := h.o.Ask(ctx, "second question")
	assert.ErrorIs(t, err, errs.ErrBusy)
	assert.NotEmpty(t, Notice(err))

	close(release)
	require.NoError(t, <-done)
	assert.Equal(t, Idle, h.o.TurnState())

	h.setAnswer(func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"response": "second"})
	})
	turn, err := h.o.Ask(ctx, "second question")
	require.NoError(t, err)
	assert.Equal(t, "second", turn.Text)

	texts := []string{}
	for _, turn := range h.o.Transcript() {
		texts = append(texts, turn.Text)
	}
	assert.Equal(t, []string{"first question", "first", "second question", "second"}, texts)
}

func TestOrchestrator_StaleAnswer(t *testing.T) {
	tests := []struct {
		name    string
		change  func(t *testing.T, h *harness)
		wantLen int
	}{
		{
			name: "logout",
			change: func(t *testing.T, h *harness) {
				h.o.SignOut(context.Background())
			},
			wantLen: 0,
		},
		{
			name: "rebind to another key",
			change: func(t *testing.T, h *harness) {
				_, err := h.binder.Bind(context.Background(), "other.pdf", "k2", resource.KindDocument)
				require.NoError(t, err)
			},
			wantLen: 1,
		},
		{
			name: "context deleted",
			change: func(t *testing.T, h *harness) {
				require.NoError(t, h.o.DeleteContext(context.Background()))
			},
			wantLen: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			h := newHarness(t, store.NewInMemoryStore(), true)
			h.signedInAndBound(t)

			entered := make(chan struct{})
			release := make(chan struct{})
			h.setAnswer(func(c *gin.Context) {
				close(entered)
				<-release
				c.JSON(http.StatusOK, gin.H{"response": "late answer"})
			})

			done := make(chan error, 1)
			go func() {
				_, err := h.o.Ask(ctx, "What is the summary?")
				done <- err
			}()
			<-entered

			tt.change(t, h)
			close(release)

			select {
			case err := <-done:
				assert.ErrorIs(t, err, errs.ErrStale)
				assert.Empty(t, Notice(err))
			case <-time.After(5 * time.Second):
				t.Fatal("ask did not return")
			}

			turns := h.o.Transcript()
			assert.Len(t, turns, tt.wantLen)
			for _, turn := range turns {
				assert.NotEqual(t, "late answer", turn.Text)
			}
			assert.Equal(t, Idle, h.o.TurnState())
		})
	}
}

func TestOrchestrator_SignOutCascade(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewInMemoryStore(), true)
	h.signedInAndBound(t)

	_, err := h.o.Ask(ctx, "What is the summary?")
	require.NoError(t, err)

	h.o.SignOut(ctx)

	assert.False(t, h.session.IsAuthenticated())
	assert.Equal(t, Anonymous, h.o.SessionState())
	assert.Equal(t, Unbound, h.o.ResourceState())
	assert.Empty(t, h.o.Transcript())
	assert.Equal(t, ViewLanding, h.nav.last())

	for _, key := range []string{store.KeyToken, store.KeyResourceName, store.KeyResourceKey} {
		_, err := h.store.Get(ctx, key)
		assert.ErrorIs(t, err, errs.ErrNotFound, key)
	}

	// Signing out twice is harmless
	h.o.SignOut(ctx)
	assert.False(t, h.session.IsAuthenticated())
}

func TestOrchestrator_UnauthorizedResponseLogsOut(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewInMemoryStore(), true)
	h.signedInAndBound(t)

	h.setAnswer(func(c *gin.Context) {
		c.JSON(http.StatusUnauthorized, gin.H{"detail": "Token expired"})
	})

	_, err := h.o.Ask(ctx, "What is the summary?")
	assert.ErrorIs(t, err, errs.ErrUnauthorized)
	assert.Equal(t, "Your session has ended. Please sign in again.", Notice(err))

	_, ok := h.session.Credential()
	assert.False(t, ok)
	assert.False(t, h.session.IsAuthenticated())
	_, ok = h.o.Binding()
	assert.False(t, ok)
	assert.Empty(t, h.o.Transcript())
	assert.Equal(t, ViewLanding, h.nav.last())
}

func TestOrchestrator_UploadFailureKeepsBinding(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewInMemoryStore(), true)
	before := h.signedInAndBound(t)

	_, err := h.o.UploadDocument(ctx, "", strings.NewReader("x"))
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = h.o.UploadDocument(ctx, "notes.txt", strings.NewReader("plain"))
	assert.ErrorIs(t, err, errs.ErrClient)
	assert.Equal(t, "Only PDF files are allowed", Notice(err))

	_, err = h.o.RegisterVideo(ctx, "https://vimeo.com/1")
	assert.ErrorIs(t, err, errs.ErrValidation)

	current, ok := h.o.Binding()
	require.True(t, ok)
	assert.Equal(t, before.StorageKey, current.StorageKey)
	assert.Equal(t, Bound, h.o.ResourceState())
}

func TestOrchestrator_UploadDocumentFile(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewInMemoryStore(), true)
	require.NoError(t, h.o.SignIn(ctx, "alice", "hunter2"))

	dir := t.TempDir()
	path := filepath.Join(dir, "paper.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o600))
	empty := filepath.Join(dir, "empty.pdf")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))

	binding, err := h.o.UploadDocumentFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "paper.pdf", binding.DisplayName)

	_, err = h.o.UploadDocumentFile(ctx, empty)
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = h.o.UploadDocumentFile(ctx, filepath.Join(dir, "missing.pdf"))
	assert.ErrorIs(t, err, errs.ErrValidation)

	_, err = h.o.UploadDocumentFile(ctx, dir)
	assert.ErrorIs(t, err, errs.ErrValidation)
}

func TestOrchestrator_RegisterVideo(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewInMemoryStore(), true)
	require.NoError(t, h.o.SignIn(ctx, "alice", "hunter2"))

	before := h.hits.Load()
	_, err := h.o.RegisterVideo(ctx, "https://example.com/video")
	assert.ErrorIs(t, err, errs.ErrValidation)
	assert.Equal(t, before, h.hits.Load())

	binding, err := h.o.RegisterVideo(ctx, "https://youtu.be/dQw4w9WgXcQ")
	require.NoError(t, err)
	assert.Equal(t, resource.KindVideo, binding.Kind)
	assert.Equal(t, "dQw4w9WgXcQ", binding.StorageKey)

	turns := h.o.Transcript()
	require.Len(t, turns, 1)
	assert.Equal(t, VideoGreeting, turns[0].Text)

	u, err := h.o.ResolveAccessURL(ctx)
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", u)
}

func TestOrchestrator_DeleteContext(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewInMemoryStore(), true)
	h.signedInAndBound(t)

	require.NoError(t, h.o.DeleteContext(ctx))
	_, ok := h.o.Binding()
	assert.False(t, ok)
	assert.Empty(t, h.o.Transcript())
	assert.Equal(t, ViewUpload, h.nav.last())
	assert.True(t, h.session.IsAuthenticated())
}

func TestOrchestrator_RestartRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := store.NewSqliteStore(path)
	require.NoError(t, err)
	h := newHarness(t, s, true)
	h.signedInAndBound(t)
	require.NoError(t, s.Close())

	// Simulated restart
	s, err = store.NewSqliteStore(path)
	require.NoError(t, err)
	defer s.Close()

	restarted := newHarness(t, s, true)
	assert.Equal(t, ViewConversation, restarted.o.Start(ctx))
	assert.Equal(t, Authenticated, restarted.o.SessionState())
	assert.Equal(t, Bound, restarted.o.ResourceState())

	cred, ok := restarted.session.Credential()
	require.True(t, ok)
	assert.Equal(t, "tok-alice", cred.Value)

	binding, ok := restarted.o.Binding()
	require.True(t, ok)
	assert.Equal(t, "report.pdf", binding.DisplayName)
	assert.Len(t, restarted.o.Transcript(), 1)

	turn, err := restarted.o.Ask(ctx, "Still there?")
	require.NoError(t, err)
	assert.Equal(t, "X", turn.Text)
}

func TestOrchestrator_ExportTranscript(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, store.NewInMemoryStore(), true)
	h.signedInAndBound(t)

	_, err := h.o.Ask(ctx, "What is the summary?")
	require.NoError(t, err)

	var buf strings.Builder
	require.NoError(t, h.o.ExportTranscript(&buf))
	assert.Contains(t, buf.String(), "resource: report.pdf")
	assert.Contains(t, buf.String(), "text: X")
}

func TestNotice(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{errs.ErrStale, ""},
		{errs.Validation("select a file to upload"), "Select a file to upload."},
		{&sdk.Error{Kind: sdk.KindClient, Status: 400, Message: "Only PDF files are allowed"}, "Only PDF files are allowed"},
		{&sdk.Error{Kind: sdk.KindClient, Status: 404}, "The request was rejected."},
		{&sdk.Error{Kind: sdk.KindServer, Status: 500}, "The server could not complete the request. Please try again."},
		{&sdk.Error{Kind: sdk.KindNetwork}, "Could not reach the server. Check your connection and try again."},
		{&sdk.Error{Kind: sdk.KindUnauthorized, Status: 401}, "Your session has ended. Please sign in again."},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Notice(tt.err))
	}
}
