package service

import (
	"fmt"
	"os"
	"path/filepath"

	"ragdesk/internal/domain"
)

// OpenUploads opens each local path for upload, named by its base name.
// closeAll releases every opened file; it is a no-op on error.
func OpenUploads(paths []string) (uploads []domain.Upload, closeAll func(), err error) {
	var opened []*os.File
	closeAll = func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	for _, p := range paths {
		f, err := os.Open(p)
		if err != nil {
			closeAll()
			return nil, func() {}, &domain.ValidationError{Reason: fmt.Sprintf("cannot open %s: %v", p, err)}
		}
		opened = append(opened, f)
		uploads = append(uploads, domain.Upload{Name: filepath.Base(p), Content: f})
	}
	return uploads, closeAll, nil
}
