package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/tnqbao/gau-box-service/entity"
	"github.com/tnqbao/gau-box-service/infra"
	"github.com/tnqbao/gau-box-service/repository"
	"github.com/tnqbao/gau-box-service/utils"
)

// ErrInvalidQRID rejects a malformed QR identifier before any write.
var ErrInvalidQRID = errors.New(utils.QRIDFormatError)

// PageStore is the raw record-store surface the protocol mutates through.
type PageStore interface {
	RetrievePage(ctx context.Context, pageID string) (*infra.Page, error)
	UpdatePage(ctx context.Context, pageID string, properties map[string]infra.Property) (*infra.Page, error)
	ArchivePage(ctx context.Context, pageID string) error
}

// ObjectStore is the photo-blob surface the protocol mutates through.
type ObjectStore interface {
	EnsurePhotosBucket(ctx context.Context) error
	Upload(ctx context.Context, path string, reader io.Reader, size int64, contentType string) error
	PublicObjectURL(path string) string
	ParsePublicURL(url string) (string, bool)
	ListPrefix(ctx context.Context, prefix string) ([]string, error)
	Remove(ctx context.Context, paths []string) error
}

// BoxLookup re-fetches the authoritative post-mutation snapshot.
type BoxLookup interface {
	GetByQRID(ctx context.Context, qrID string) (*entity.Box, error)
	Invalidate(id, qrID string)
}

// BoxSync orchestrates box mutations across the record store and the object
// store. Each mutation concludes by re-fetching the authoritative Box via
// its effective QR identifier, never by returning a locally built snapshot.
type BoxSync struct {
	pages   PageStore
	storage ObjectStore
	boxes   BoxLookup
	now     func() time.Time
}

func NewBoxSync(pages PageStore, storage ObjectStore, boxes BoxLookup) *BoxSync {
	return &BoxSync{
		pages:   pages,
		storage: storage,
		boxes:   boxes,
		now:     time.Now,
	}
}

// BoxUpdate carries the form-edit mutation: name, description and status are
// always overwritten (empty strings included); QRID is rebound only when it
// differs from the current binding.
type BoxUpdate struct {
	Name        string
	Description string
	Status      string
	QRID        string
}

// refetch returns the authoritative snapshot for the effective QR id.
func (s *BoxSync) refetch(ctx context.Context, qrID string) (*entity.Box, error) {
	box, err := s.boxes.GetByQRID(ctx, qrID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch updated box: %w", err)
	}
	if box == nil {
		return nil, fmt.Errorf("box not found with QR ID: %s", qrID)
	}
	return box, nil
}

// UpdateBox applies a form edit. The returned bool signals that the QR
// binding changed and the caller should redirect to the new canonical path.
func (s *BoxSync) UpdateBox(ctx context.Context, boxID string, upd BoxUpdate) (*entity.Box, bool, error) {
	page, err := s.pages.RetrievePage(ctx, boxID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to update box: %w", err)
	}
	currentQRID := repository.QRIDFromPage(page)

	if upd.QRID != "" && !utils.IsValidQRID(upd.QRID) {
		return nil, false, ErrInvalidQRID
	}

	status := upd.Status
	if status == "" {
		status = entity.StatusPreparing
	}

	patch := repository.BoxPatch{
		Name:        &upd.Name,
		Description: &upd.Description,
		Status:      &status,
	}

	// The QR property is only patched when the binding actually changes, so
	// an unchanged form submit never triggers the redirect contract.
	qrChanged := upd.QRID != "" && upd.QRID != currentQRID
	if qrChanged {
		patch.QRID = &upd.QRID
	}

	if _, err := s.pages.UpdatePage(ctx, boxID, repository.BuildProperties(patch)); err != nil {
		return nil, false, fmt.Errorf("failed to update box: %w", err)
	}

	effectiveQRID := currentQRID
	if qrChanged {
		effectiveQRID = upd.QRID
	}
	s.boxes.Invalidate(boxID, currentQRID)
	if qrChanged {
		s.boxes.Invalidate(boxID, upd.QRID)
	}

	box, err := s.refetch(ctx, effectiveQRID)
	if err != nil {
		return nil, false, err
	}
	return box, qrChanged, nil
}

// RebindQR binds a box to a new QR identifier. Rebinding to the current
// identifier is a no-op: no property patch is written and no redirect is
// signalled.
func (s *BoxSync) RebindQR(ctx context.Context, boxID, qrID string) (*entity.Box, bool, error) {
	page, err := s.pages.RetrievePage(ctx, boxID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to rebind QR ID: %w", err)
	}
	currentQRID := repository.QRIDFromPage(page)

	if qrID == currentQRID {
		box, err := s.refetch(ctx, currentQRID)
		if err != nil {
			return nil, false, err
		}
		return box, false, nil
	}

	if !utils.IsValidQRID(qrID) {
		return nil, false, ErrInvalidQRID
	}

	properties := repository.BuildProperties(repository.BoxPatch{QRID: &qrID})
	if _, err := s.pages.UpdatePage(ctx, boxID, properties); err != nil {
		return nil, false, fmt.Errorf("failed to rebind QR ID: %w", err)
	}

	s.boxes.Invalidate(boxID, currentQRID)
	s.boxes.Invalidate(boxID, qrID)

	box, err := s.refetch(ctx, qrID)
	if err != nil {
		return nil, false, err
	}
	return box, true, nil
}

// PhotoUpload is one inbound photo file.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// AddPhotos uploads every file to the object store first, then appends the
// resulting public URLs to the record's photo list. A failed upload aborts
// before the record is touched; blobs already uploaded in the same batch are
// left behind as orphans.
func (s *BoxSync) AddPhotos(ctx context.Context, boxID string, uploads []PhotoUpload) (*entity.Box, error) {
	if err := s.storage.EnsurePhotosBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure photos bucket: %w", err)
	}

	newFiles := make([]infra.FileRef, 0, len(uploads))
	for _, upload := range uploads {
		if upload.Size > infra.MaxPhotoSize {
			return nil, fmt.Errorf("photo %s exceeds the %d byte limit", upload.Filename, infra.MaxPhotoSize)
		}

		// Timestamp keeps paths unique when the same filename is uploaded twice.
		path := fmt.Sprintf("%s/%d-%s", boxID, s.now().UnixMilli(), upload.Filename)
		if err := s.storage.Upload(ctx, path, upload.Reader, upload.Size, upload.ContentType); err != nil {
			return nil, fmt.Errorf("failed to upload photo %s: %w", upload.Filename, err)
		}

		newFiles = append(newFiles, infra.FileRef{
			Type:     "external",
			Name:     upload.Filename,
			External: &infra.FileLink{URL: s.storage.PublicObjectURL(path)},
		})
	}

	page, err := s.pages.RetrievePage(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("failed to upload photos: %w", err)
	}

	merged := append(repository.PhotoFilesFromPage(page), newFiles...)
	properties := repository.BuildProperties(repository.BoxPatch{Photos: &merged})
	if _, err := s.pages.UpdatePage(ctx, boxID, properties); err != nil {
		return nil, fmt.Errorf("failed to upload photos: %w", err)
	}

	qrID := repository.QRIDFromPage(page)
	if qrID == "" {
		return nil, fmt.Errorf("QR ID not found")
	}
	s.boxes.Invalidate(boxID, qrID)

	return s.refetch(ctx, qrID)
}

// DeletePhoto removes one photo blob and rebuilds the record's photo list
// without the exact matching URL. The blob is deleted before the record is
// patched.
func (s *BoxSync) DeletePhoto(ctx context.Context, boxID, photoURL string) (*entity.Box, error) {
	path, ok := s.storage.ParsePublicURL(photoURL)
	if !ok {
		return nil, fmt.Errorf("invalid photo URL format: %s", photoURL)
	}

	if err := s.storage.Remove(ctx, []string{path}); err != nil {
		return nil, fmt.Errorf("failed to delete photo: %w", err)
	}

	page, err := s.pages.RetrievePage(ctx, boxID)
	if err != nil {
		return nil, fmt.Errorf("failed to delete photo: %w", err)
	}

	remaining := []infra.FileRef{}
	for _, url := range repository.PhotoURLs(repository.PhotoFilesFromPage(page)) {
		if url == photoURL {
			continue
		}
		remaining = append(remaining, infra.FileRef{
			Type:     "external",
			Name:     "Photo",
			External: &infra.FileLink{URL: url},
		})
	}

	properties := repository.BuildProperties(repository.BoxPatch{Photos: &remaining})
	if _, err := s.pages.UpdatePage(ctx, boxID, properties); err != nil {
		return nil, fmt.Errorf("failed to delete photo: %w", err)
	}

	qrID := repository.QRIDFromPage(page)
	if qrID == "" {
		return nil, fmt.Errorf("QR ID not found")
	}
	s.boxes.Invalidate(boxID, qrID)

	return s.refetch(ctx, qrID)
}

// DeleteBox purges every blob under the box's storage namespace, then flags
// the record archived. Object deletion runs first so a storage failure
// leaves the record intact and the operation retryable.
func (s *BoxSync) DeleteBox(ctx context.Context, boxID string) error {
	page, err := s.pages.RetrievePage(ctx, boxID)
	if err != nil {
		return fmt.Errorf("failed to delete box: %w", err)
	}

	paths, err := s.storage.ListPrefix(ctx, boxID+"/")
	if err != nil {
		return fmt.Errorf("failed to list box photos: %w", err)
	}
	if len(paths) > 0 {
		if err := s.storage.Remove(ctx, paths); err != nil {
			return fmt.Errorf("failed to delete box photos: %w", err)
		}
	}

	if err := s.pages.ArchivePage(ctx, boxID); err != nil {
		return fmt.Errorf("failed to delete box: %w", err)
	}

	s.boxes.Invalidate(boxID, repository.QRIDFromPage(page))
	return nil
}
