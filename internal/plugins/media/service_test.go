package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plusvans/admin/internal/apperror"
	"github.com/plusvans/admin/internal/listing"
	"github.com/plusvans/admin/internal/plugins/audit"
)

// --- Mock Repository ---

type mockMediaRepo struct {
	created       *MediaFile
	createFn      func(ctx context.Context, file *MediaFile) error
	findByIDFn    func(ctx context.Context, id string) (*MediaFile, error)
	deleteFn      func(ctx context.Context, id string) error
	listFn        func(ctx context.Context, f listing.Filters) ([]MediaFile, error)
	bookingExists bool
}

func (m *mockMediaRepo) Create(ctx context.Context, file *MediaFile) error {
	m.created = file
	if m.createFn != nil {
		return m.createFn(ctx, file)
	}
	return nil
}

func (m *mockMediaRepo) FindByID(ctx context.Context, id string) (*MediaFile, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, apperror.NewNotFound("media file not found")
}

func (m *mockMediaRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockMediaRepo) List(ctx context.Context, f listing.Filters) ([]MediaFile, error) {
	if m.listFn != nil {
		return m.listFn(ctx, f)
	}
	return []MediaFile{}, nil
}

func (m *mockMediaRepo) ListByBooking(ctx context.Context, bookingID string) ([]MediaFile, error) {
	return []MediaFile{}, nil
}

func (m *mockMediaRepo) BookingExists(ctx context.Context, id string) (bool, error) {
	return m.bookingExists, nil
}

func (m *mockMediaRepo) Stats(ctx context.Context) (*Stats, error) {
	return &Stats{}, nil
}

// --- Mock Audit ---

type mockAudit struct {
	entries []*audit.AuditEntry
}

func (m *mockAudit) Log(ctx context.Context, entry *audit.AuditEntry) error {
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAudit) List(ctx context.Context, st *listing.ViewState) (listing.Page[audit.AuditEntry], error) {
	return listing.Page[audit.AuditEntry]{}, nil
}

func (m *mockAudit) Recent(ctx context.Context, limit int) ([]audit.AuditEntry, error) {
	return nil, nil
}

func (m *mockAudit) EntityHistory(ctx context.Context, entityType, entityID string) ([]audit.AuditEntry, error) {
	return nil, nil
}

func assertAppError(t *testing.T, err error, expectedCode int) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %d, got nil", expectedCode)
	}
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected *apperror.AppError, got %T: %v", err, err)
	}
	if appErr.Code != expectedCode {
		t.Errorf("expected status %d, got %d", expectedCode, appErr.Code)
	}
}

var staff = audit.Actor{UserID: "u1", Name: "Dee"}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, h/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding png: %v", err)
	}
	return buf.Bytes()
}

func newTestService(t *testing.T, repo *mockMediaRepo, aud audit.AuditService) (*mediaService, string) {
	t.Helper()
	root := t.TempDir()
	svc := NewMediaService(repo, aud, root, 5*1024*1024).(*mediaService)
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) }
	return svc, root
}

func TestUpload_StoresFileAndThumbnails(t *testing.T) {
	repo := &mockMediaRepo{bookingExists: true}
	aud := &mockAudit{}
	svc, root := newTestService(t, repo, aud)

	file, err := svc.Upload(context.Background(), staff, UploadInput{
		BookingID:        "b1",
		OriginalName:     "../../garage.png",
		MimeType:         "image/png",
		FileBytes:        pngBytes(t, 1000, 500),
		WasteLocation:    " Garage ",
		AccessRestricted: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if file.OriginalName != "garage.png" || file.WasteLocation != "Garage" || !file.Flagged() {
		t.Errorf("unexpected file %+v", file)
	}
	if _, err := os.Stat(filepath.Join(root, file.Filename)); err != nil {
		t.Errorf("expected original on disk: %v", err)
	}
	if len(file.ThumbnailPaths) != 2 {
		t.Fatalf("expected 2 thumbnails, got %v", file.ThumbnailPaths)
	}
	f, err := os.Open(svc.ThumbnailPath(file, "300"))
	if err != nil {
		t.Fatalf("opening thumbnail: %v", err)
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decoding thumbnail: %v", err)
	}
	if cfg.Width != 300 || cfg.Height != 150 {
		t.Errorf("expected 300x150 thumbnail, got %dx%d", cfg.Width, cfg.Height)
	}

	if repo.created != file {
		t.Error("expected record to be saved")
	}
	if len(aud.entries) != 1 || aud.entries[0].Action != audit.ActionMediaUploaded {
		t.Errorf("expected upload audit entry, got %+v", aud.entries)
	}
}

func TestUpload_SmallImageSkipsThumbnails(t *testing.T) {
	svc, _ := newTestService(t, &mockMediaRepo{bookingExists: true}, nil)
	file, err := svc.Upload(context.Background(), staff, UploadInput{
		BookingID: "b1", OriginalName: "a.png", MimeType: "image/png", FileBytes: pngBytes(t, 100, 80),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(file.ThumbnailPaths) != 0 {
		t.Errorf("expected no thumbnails, got %v", file.ThumbnailPaths)
	}
	if svc.ThumbnailPath(file, "300") != svc.FilePath(file) {
		t.Error("expected thumbnail path to fall back to the original")
	}
}

func TestUpload_Validation(t *testing.T) {
	svc, _ := newTestService(t, &mockMediaRepo{bookingExists: true}, nil)
	data := pngBytes(t, 10, 10)

	tests := []struct {
		name  string
		input UploadInput
		code  int
	}{
		{"missing booking", UploadInput{MimeType: "image/png", FileBytes: data}, http.StatusBadRequest},
		{"unsupported type", UploadInput{BookingID: "b1", MimeType: "application/pdf", FileBytes: data}, http.StatusBadRequest},
		{"spoofed type", UploadInput{BookingID: "b1", MimeType: "image/jpeg", FileBytes: data}, http.StatusBadRequest},
		{"too large", UploadInput{BookingID: "b1", MimeType: "image/png", FileBytes: make([]byte, 6*1024*1024)}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(context.Background(), staff, tt.input)
			assertAppError(t, err, tt.code)
		})
	}
}

func TestUpload_UnknownBooking(t *testing.T) {
	svc, _ := newTestService(t, &mockMediaRepo{bookingExists: false}, nil)
	_, err := svc.Upload(context.Background(), staff, UploadInput{
		BookingID: "nope", MimeType: "image/png", FileBytes: pngBytes(t, 10, 10),
	})
	assertAppError(t, err, http.StatusNotFound)
}

func TestUpload_RemovesFilesWhenRecordFails(t *testing.T) {
	repo := &mockMediaRepo{
		bookingExists: true,
		createFn:      func(ctx context.Context, file *MediaFile) error { return errors.New("db down") },
	}
	svc, root := newTestService(t, repo, nil)

	_, err := svc.Upload(context.Background(), staff, UploadInput{
		BookingID: "b1", OriginalName: "a.png", MimeType: "image/png", FileBytes: pngBytes(t, 900, 900),
	})
	assertAppError(t, err, http.StatusInternalServerError)

	entries, _ := os.ReadDir(filepath.Join(root, "2024/03"))
	if len(entries) != 0 {
		t.Errorf("expected stored files to be removed, found %d", len(entries))
	}
}

func TestDelete_RemovesFilesAndAudits(t *testing.T) {
	repo := &mockMediaRepo{bookingExists: true}
	aud := &mockAudit{}
	svc, root := newTestService(t, repo, aud)

	file, err := svc.Upload(context.Background(), staff, UploadInput{
		BookingID: "b1", OriginalName: "a.png", MimeType: "image/png", FileBytes: pngBytes(t, 900, 400),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	repo.findByIDFn = func(ctx context.Context, id string) (*MediaFile, error) { return file, nil }

	if err := svc.Delete(context.Background(), staff, file.ID, "duplicate"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, file.Filename)); !os.IsNotExist(err) {
		t.Errorf("expected original removed, stat err = %v", err)
	}
	last := aud.entries[len(aud.entries)-1]
	if last.Action != audit.ActionMediaDeleted || last.Reason == nil || *last.Reason != "duplicate" {
		t.Errorf("unexpected audit entry %+v", last)
	}
}

func TestValidateMagicBytes(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		mime string
		want bool
	}{
		{"jpeg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, "image/jpeg", true},
		{"png", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, "image/png", true},
		{"webp", []byte("RIFF\x00\x00\x00\x00WEBPVP8 "), "image/webp", true},
		{"png as jpeg", []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A}, "image/jpeg", false},
		{"truncated", []byte{0xFF, 0xD8}, "image/jpeg", false},
		{"gif not accepted", []byte("GIF89a"), "image/gif", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validateMagicBytes(tt.data, tt.mime); got != tt.want {
				t.Errorf("validateMagicBytes() = %v, want %v", got, tt.want)
			}
		})
	}
}
