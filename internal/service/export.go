package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"

	"aidkit/internal/model"
	"aidkit/internal/repository"
	"aidkit/internal/storage"
)

// ErrExportDisabled is returned when no object storage is configured.
var ErrExportDisabled = errors.New("export storage is not configured")

// ExportResult describes an uploaded aid kit snapshot. ID names the
// snapshot for OpenExport.
type ExportResult struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	Size      int64     `json:"size"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ExportService writes aid kit snapshots to object storage.
type ExportService interface {
	// ExportAidKit serialises the kit with all of its stock rows as JSON under
	// exports/aidkits/<id>/<uuid>.json and returns a time-limited download URL.
	ExportAidKit(ctx context.Context, id int64) (*ExportResult, error)

	// OpenExport streams a stored snapshot of kit id back. The caller closes
	// the reader.
	OpenExport(ctx context.Context, id int64, exportID string) (io.ReadCloser, storage.ObjectInfo, error)
}

func exportKey(id int64, exportID string) string {
	return path.Join("exports", "aidkits", strconv.FormatInt(id, 10), exportID+".json")
}

type aidKitExport struct {
	ExportedAt time.Time    `json:"exported_at"`
	AidKit     model.AidKit `json:"aidkit"`
}

type exportService struct {
	kits  repository.AidKitRepository
	store storage.Storage
	ttl   time.Duration
	batch int
	now   func() time.Time
}

// NewExportService constructs a new ExportService. A nil store disables exports.
func NewExportService(kits repository.AidKitRepository, store storage.Storage, ttl time.Duration, page Pagination) ExportService {
	batch := page.Limit
	if batch <= 0 {
		batch = 100
	}
	return &exportService{kits: kits, store: store, ttl: ttl, batch: batch, now: time.Now}
}

// load reads the kit and pages through its stock rows by id.
func (s *exportService) load(ctx context.Context, id int64) (*model.AidKit, error) {
	w := repository.Window{Limit: s.batch, OrderBy: []repository.OrderBy{repository.Asc("id")}}
	kit, err := s.kits.FetchOneByID(ctx, id, w)
	if err != nil {
		return nil, err
	}
	last := kit.Stocks
	for len(last) == s.batch {
		w.Offset = last[len(last)-1].ID
		next, err := s.kits.FetchOneByID(ctx, id, w)
		if err != nil {
			return nil, err
		}
		last = next.Stocks
		kit.Stocks = append(kit.Stocks, last...)
	}
	return kit, nil
}

func (s *exportService) ExportAidKit(ctx context.Context, id int64) (*ExportResult, error) {
	if s.store == nil {
		return nil, ErrExportDisabled
	}
	kit, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	body, err := json.Marshal(aidKitExport{ExportedAt: now, AidKit: *kit})
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}

	exportID := uuid.New().String()
	key := exportKey(id, exportID)
	info, err := s.store.Put(ctx, key, bytes.NewReader(body), storage.PutObjectOptions{
		Size:        int64(len(body)),
		ContentType: "application/json",
		Metadata:    map[string]string{"aidkit-id": strconv.FormatInt(id, 10)},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	url, err := s.store.PresignGet(ctx, info.Key, s.ttl)
	if err != nil {
		if delErr := s.store.Delete(ctx, info.Key); delErr != nil {
			return nil, fmt.Errorf("presign failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("presign failed: %w", err)
	}

	return &ExportResult{
		ID:        exportID,
		Key:       info.Key,
		URL:       url,
		Size:      info.Size,
		ExpiresAt: now.Add(s.ttl),
	}, nil
}

func (s *exportService) OpenExport(ctx context.Context, id int64, exportID string) (io.ReadCloser, storage.ObjectInfo, error) {
	if s.store == nil {
		return nil, storage.ObjectInfo{}, ErrExportDisabled
	}
	parsed, err := uuid.Parse(exportID)
	if err != nil {
		return nil, storage.ObjectInfo{}, fmt.Errorf("%w: export id %q is not a uuid", ErrInvalidArgument, exportID)
	}
	rc, info, err := s.store.Get(ctx, exportKey(id, parsed.String()))
	if errors.Is(err, storage.ErrObjectNotFound) {
		return nil, storage.ObjectInfo{}, fmt.Errorf("%w: export %s of aidkit %d", ErrNotFound, parsed, id)
	}
	if err != nil {
		return nil, storage.ObjectInfo{}, fmt.Errorf("download from storage: %w", err)
	}
	return rc, info, nil
}
