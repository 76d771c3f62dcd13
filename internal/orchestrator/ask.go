package orchestrator

import (
	"context"
	"errors"
	"strings"

	"github.com/ethanbaker/docchat/pkg/errs"
	"github.com/ethanbaker/docchat/pkg/transcript"
	"go.uber.org/zap"
)

// Ask appends the question, sends it against the bound resource and appends
// exactly one assistant turn: the answer or a fallback. The answer is dropped
// with errs.ErrStale if the session, the binding or the transcript changed
// while the question was in flight.
func (o *Orchestrator) Ask(ctx context.Context, question string) (transcript.Turn, error) {
	if !o.session.IsAuthenticated() {
		return transcript.Turn{}, errs.ErrUnauthorized
	}

	binding, ok := o.binder.Current()
	if !ok {
		return transcript.Turn{}, errs.ErrNotBound
	}

	if strings.TrimSpace(question) == "" {
		return transcript.Turn{}, errs.Validation("question is empty")
	}

	ticket, err := o.transcript.Begin()
	if err != nil {
		return transcript.Turn{}, err
	}
	defer ticket.Done()

	epoch := o.currentEpoch()
	if _, err := ticket.AppendUser(question); err != nil {
		return transcript.Turn{}, err
	}

	answer, err := o.backend.GenerateResponse(ctx, question, binding.StorageKey)

	// A 401 has already run the logout cascade
	if errors.Is(err, errs.ErrUnauthorized) {
		return transcript.Turn{}, err
	}

	if o.stale(epoch, binding.StorageKey, ticket) {
		o.logger.Info("discarding stale answer", zap.String("key", binding.StorageKey))
		return transcript.Turn{}, errs.ErrStale
	}

	text := NoAnswerText
	if err != nil {
		o.logger.Warn("question failed", zap.Error(err))
		text = FailureText
	} else if response := strings.TrimSpace(answer.Response); response != "" {
		text = response
	}

	// A Reset between the check above and this append still drops the reply
	turn, appendErr := ticket.AppendAssistant(text)
	if appendErr != nil {
		o.logger.Info("discarding stale answer", zap.String("key", binding.StorageKey))
		return transcript.Turn{}, appendErr
	}
	return turn, err
}

func (o *Orchestrator) stale(epoch uint64, key string, ticket *transcript.Ticket) bool {
	if o.currentEpoch() != epoch || !ticket.Current() {
		return true
	}
	current, ok := o.binder.Current()
	return !ok || current.StorageKey != key
}
