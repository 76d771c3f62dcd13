package orchestrator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethanbaker/docchat/pkg/errs"
	"github.com/ethanbaker/docchat/pkg/resource"
	"go.uber.org/zap"
)

// UploadDocument stores a document on the server and binds it. On failure
// the previous binding, if any, stays active.
func (o *Orchestrator) UploadDocument(ctx context.Context, name string, content io.Reader) (resource.Binding, error) {
	name = strings.TrimSpace(name)
	if name == "" || content == nil {
		return resource.Binding{}, errs.Validation("select a file to upload")
	}

	epoch, err := o.beginBinding()
	if err != nil {
		return resource.Binding{}, err
	}
	defer o.endBinding()

	out, err := o.backend.UploadDocument(ctx, name, content)
	if err != nil {
		o.logger.Warn("upload failed", zap.String("name", name), zap.Error(err))
		return resource.Binding{}, err
	}

	binding, err := o.bind(ctx, epoch, name, out.StorageKey, resource.KindDocument)
	if err != nil {
		return resource.Binding{}, err
	}

	// The identity is what the conversation needs; the URL only feeds the viewer
	if url, err := o.binder.ResolveAccessURL(ctx); err != nil {
		o.logger.Warn("could not resolve document url", zap.String("name", name), zap.Error(err))
	} else {
		binding.AccessURL = url
	}

	return binding, nil
}

// UploadDocumentFile uploads the file at path under its base name
func (o *Orchestrator) UploadDocumentFile(ctx context.Context, path string) (resource.Binding, error) {
	if strings.TrimSpace(path) == "" {
		return resource.Binding{}, errs.Validation("select a file to upload")
	}

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return resource.Binding{}, errs.Validation(fmt.Sprintf("%s is not a readable file", path))
	}
	if info.Size() == 0 {
		return resource.Binding{}, errs.Validation(fmt.Sprintf("%s is empty", path))
	}

	f, err := os.Open(path)
	if err != nil {
		return resource.Binding{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return o.UploadDocument(ctx, filepath.Base(path), f)
}

// RegisterVideo registers a YouTube video and binds it. The link is checked
// locally before anything is sent.
func (o *Orchestrator) RegisterVideo(ctx context.Context, videoURL string) (resource.Binding, error) {
	if _, err := resource.ParseVideoURL(videoURL); err != nil {
		return resource.Binding{}, err
	}

	epoch, err := o.beginBinding()
	if err != nil {
		return resource.Binding{}, err
	}
	defer o.endBinding()

	out, err := o.backend.UploadVideo(ctx, strings.TrimSpace(videoURL))
	if err != nil {
		o.logger.Warn("video registration failed", zap.String("url", videoURL), zap.Error(err))
		return resource.Binding{}, err
	}

	return o.bind(ctx, epoch, strings.TrimSpace(videoURL), out.VideoID, resource.KindVideo)
}

// DeleteContext removes all indexed resources on the server, then unbinds
// locally and sends the user back to upload
func (o *Orchestrator) DeleteContext(ctx context.Context) error {
	if err := o.backend.DeleteNamespaceData(ctx); err != nil {
		return err
	}

	o.binder.Clear(ctx)
	o.goTo(ViewUpload)
	return nil
}

// ResolveAccessURL fetches a fresh access URL for the bound resource
func (o *Orchestrator) ResolveAccessURL(ctx context.Context) (string, error) {
	return o.binder.ResolveAccessURL(ctx)
}

// bind finishes an upload unless the session changed while it was in flight
func (o *Orchestrator) bind(ctx context.Context, epoch uint64, name, key string, kind resource.Kind) (resource.Binding, error) {
	if o.currentEpoch() != epoch {
		o.logger.Info("discarding upload result after session change", zap.String("name", name))
		return resource.Binding{}, errs.ErrStale
	}

	binding, err := o.binder.Bind(ctx, name, key, kind)
	if err != nil {
		return resource.Binding{}, err
	}

	o.goTo(ViewConversation)
	return binding, nil
}

// beginBinding enters the Binding state; only one upload runs at a time
func (o *Orchestrator) beginBinding() (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.resourceState == Binding {
		return 0, errs.ErrBusy
	}
	o.resourceState = Binding

	return o.epoch, nil
}

// endBinding leaves the Binding state for whatever the binder now holds
func (o *Orchestrator) endBinding() {
	_, bound := o.binder.Current()

	o.mu.Lock()
	defer o.mu.Unlock()

	if bound {
		o.resourceState = Bound
	} else {
		o.resourceState = Unbound
	}
}
