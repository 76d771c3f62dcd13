package orchestrator

import (
	"context"
	"strings"

	"github.com/ethanbaker/docchat/pkg/auth"
	"github.com/ethanbaker/docchat/pkg/errs"
	"github.com/ethanbaker/docchat/pkg/sdk"
	"go.uber.org/zap"
)

// SignIn exchanges a username and password for a credential and logs in
func (o *Orchestrator) SignIn(ctx context.Context, username, password string) error {
	o.setSessionState(Authenticating)

	tok, err := o.backend.SignIn(ctx, username, password)
	if err != nil {
		o.restoreSessionState()
		o.logger.Info("sign in failed", zap.String("username", username), zap.Error(err))
		return err
	}

	return o.login(ctx, tok.AccessToken)
}

// SignUp creates an account and sends the user to sign in
func (o *Orchestrator) SignUp(ctx context.Context, req *sdk.SignUpRequest) (*sdk.Profile, error) {
	profile, err := o.backend.SignUp(ctx, req)
	if err != nil {
		return nil, err
	}

	o.logger.Info("account created", zap.String("username", profile.Username))
	o.goTo(ViewSignIn)
	return profile, nil
}

// GoogleLoginURL returns the URL that starts the OAuth flow
func (o *Orchestrator) GoogleLoginURL() string {
	o.setSessionState(Authenticating)
	return o.backend.GoogleLoginURL()
}

// CompleteOAuth logs in with the token delivered to the OAuth callback. A
// callback without a token sends the user back to sign in.
func (o *Orchestrator) CompleteOAuth(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		o.restoreSessionState()
		o.goTo(ViewSignIn)
		return errs.Validation("no access token received")
	}
	return o.login(ctx, token)
}

// login replaces the credential. Signing in as a different account drops the
// previous account's binding and transcript.
func (o *Orchestrator) login(ctx context.Context, token string) error {
	cred := auth.NewCredential(token)
	previous, hadPrevious := o.session.Credential()

	if err := o.session.Login(ctx, cred); err != nil {
		o.restoreSessionState()
		return err
	}

	if hadPrevious && !previous.SameAccount(cred) {
		o.logger.Info("account changed, dropping binding", zap.String("token", cred.Redacted()))
		o.binder.Clear(ctx)
	}

	if _, ok := o.binder.Current(); ok {
		o.goTo(ViewConversation)
	} else {
		o.goTo(ViewUpload)
	}
	return nil
}

// SignOut logs out. The session listener clears the binding and transcript
// and navigates to the landing view.
func (o *Orchestrator) SignOut(ctx context.Context) {
	o.session.Logout(ctx)
}

// Profile returns the signed-in account
func (o *Orchestrator) Profile(ctx context.Context) (*sdk.Profile, error) {
	return o.backend.GetProfile(ctx)
}

// restoreSessionState returns an aborted Authenticating state to whatever the
// session actually holds
func (o *Orchestrator) restoreSessionState() {
	if o.session.IsAuthenticated() {
		o.setSessionState(Authenticated)
	} else {
		o.setSessionState(Anonymous)
	}
}
