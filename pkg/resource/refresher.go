package resource

import (
	"context"
	"errors"
	"time"

	"github.com/ethanbaker/docchat/pkg/errs"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher re-resolves the bound document's access URL on a schedule so a
// long-lived viewer does not hold an expired link
type Refresher struct {
	binder  *Binder
	cron    *cron.Cron
	timeout time.Duration
	logger  *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewRefresher schedules refreshes with a cron spec such as "@every 10m"
func NewRefresher(b *Binder, spec string, timeout time.Duration, logger *zap.Logger) (*Refresher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())

	r := &Refresher{
		binder:  b,
		cron:    cron.New(),
		timeout: timeout,
		logger:  logger.Named("refresher"),
		ctx:     ctx,
		cancel:  cancel,
	}

	if _, err := r.cron.AddFunc(spec, r.Refresh); err != nil {
		cancel()
		return nil, err
	}

	return r, nil
}

// Start begins the schedule
func (r *Refresher) Start() {
	r.cron.Start()
}

// Stop halts the schedule and waits for a running refresh to finish
func (r *Refresher) Stop() {
	r.cancel()
	<-r.cron.Stop().Done()
}

// Refresh resolves the access URL once if a document is bound
func (r *Refresher) Refresh() {
	current, ok := r.binder.Current()
	if !ok || current.Kind != KindDocument {
		return
	}

	ctx := r.ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(r.ctx, r.timeout)
		defer cancel()
	}

	if _, err := r.binder.ResolveAccessURL(ctx); err != nil {
		if !errors.Is(err, errs.ErrStale) {
			r.logger.Warn("access url refresh failed", zap.Error(err))
		}
		return
	}
	r.logger.Debug("access url refreshed", zap.String("name", current.DisplayName))
}
