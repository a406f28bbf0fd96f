package service

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"ragdesk/internal/domain"
)

// FileRegistry holds the uploaded documents and the per-file query filter.
// Every mutation is followed by a re-list, because the backend's mutation
// responses are not a reliable description of the file set.
type FileRegistry struct {
	store    domain.FileStore
	notifier domain.Notifier
	log      *zap.Logger

	mu        sync.RWMutex
	files     []domain.FileInfo
	selection *domain.Selection
	subs      subscribers
}

func NewFileRegistry(store domain.FileStore, notifier domain.Notifier, log *zap.Logger) *FileRegistry {
	if log == nil {
		log = zap.NewNop()
	}
	return &FileRegistry{
		store:     store,
		notifier:  orNop(notifier),
		log:       log,
		selection: domain.NewSelection(),
	}
}

// Subscribe registers fn to run after every state change.
func (r *FileRegistry) Subscribe(fn func()) (cancel func()) { return r.subs.add(fn) }

// Load replaces the file set with the backend's list and reconciles the
// selection. On failure the previous state is kept.
func (r *FileRegistry) Load(ctx context.Context) error {
	files, err := r.store.ListFiles(ctx)
	if err != nil {
		r.log.Warn("list files failed", zap.Error(err))
		notifyError(r.notifier, "Failed to fetch files: %s", fetchDetail(err))
		return &domain.FetchError{Err: err}
	}

	r.mu.Lock()
	r.files = append([]domain.FileInfo(nil), files...)
	r.selection.Reconcile(files)
	r.mu.Unlock()

	r.log.Debug("files loaded", zap.Int("count", len(files)))
	r.subs.notify()
	return nil
}

// fetchDetail ignores the backend's detail: any non-2xx listing is reported
// as an unresponsive server.
func fetchDetail(err error) string {
	const unresponsive = "Server failed to respond"
	var be *domain.BackendError
	if errors.As(err, &be) {
		return unresponsive
	}
	return domain.Detail(err, unresponsive)
}

// Upload sends files in a single request, then re-lists. No client-side
// validation is done; the backend decides what it accepts.
func (r *FileRegistry) Upload(ctx context.Context, files []domain.Upload) error {
	if len(files) == 0 {
		return nil
	}
	if err := r.store.Upload(ctx, files); err != nil {
		r.log.Warn("upload failed", zap.Int("files", len(files)), zap.Error(err))
		notifyError(r.notifier, "File upload failed: %s", domain.Detail(err, "Upload failed"))
		return err
	}
	r.log.Info("uploaded", zap.Int("files", len(files)))
	notifySuccess(r.notifier, "File(s) uploaded successfully!")
	_ = r.Load(ctx)
	return nil
}

// Remove deletes file on the backend, re-lists, and prunes its selection
// entry. The name is gone from the local state even when the re-list fails.
func (r *FileRegistry) Remove(ctx context.Context, file domain.FileInfo) error {
	if err := r.store.Delete(ctx, file.Name); err != nil {
		r.log.Warn("delete failed", zap.String("file", file.Name), zap.Error(err))
		notifyError(r.notifier, "File deletion failed: %s", domain.Detail(err, "Delete failed"))
		return err
	}
	r.log.Info("deleted", zap.String("file", file.Name))
	notifySuccess(r.notifier, "File \"%s\" deleted.", file.Name)
	_ = r.Load(ctx)

	r.mu.Lock()
	r.selection.Delete(file.Name)
	kept := r.files[:0:0]
	for _, f := range r.files {
		if f.Name != file.Name {
			kept = append(kept, f)
		}
	}
	r.files = kept
	r.mu.Unlock()

	r.subs.notify()
	return nil
}

// Toggle flips the inclusion flag for name. Unseen names become included.
func (r *FileRegistry) Toggle(name string) {
	r.mu.Lock()
	r.selection.Toggle(name)
	r.mu.Unlock()
	r.subs.notify()
}

// Include marks name as included. Repeated calls keep it included.
func (r *FileRegistry) Include(name string) {
	r.mu.Lock()
	r.selection.Set(name, true)
	r.mu.Unlock()
	r.subs.notify()
}

// Files returns a copy of the current file set.
func (r *FileRegistry) Files() []domain.FileInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.FileInfo(nil), r.files...)
}

// Selection returns a copy of the selection state.
func (r *FileRegistry) Selection() *domain.Selection {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.selection.Clone()
}

// Lookup finds a file by name.
func (r *FileRegistry) Lookup(name string) (domain.FileInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, f := range r.files {
		if f.Name == name {
			return f, true
		}
	}
	return domain.FileInfo{}, false
}
