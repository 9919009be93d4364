package storage

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/tellerdesk/internal/model"
)

type mockUploader struct {
	uploadFn func(ctx context.Context, objectPath string, contentType string, data []byte) (string, error)
	calls    int
}

func (m *mockUploader) Upload(ctx context.Context, objectPath string, contentType string, data []byte) (string, error) {
	m.calls++
	if m.uploadFn != nil {
		return m.uploadFn(ctx, objectPath, contentType, data)
	}
	return "https://storage.example.com/object/public/CBS/" + objectPath, nil
}

var _ Uploader = (*mockUploader)(nil)

const testMaxSize = 5 * 1024 * 1024

func newTestRelay(uploader Uploader) *Relay {
	r := NewRelay(uploader, RelayConfig{MaxSize: testMaxSize})
	r.now = func() time.Time { return time.UnixMilli(1712000000000) }
	return r
}

func validUploadInput() UploadInput {
	return UploadInput{
		DocumentType: "national-id",
		Filename:     "scan.pdf",
		ContentType:  "application/pdf",
		Data:         []byte("%PDF-1.7 test"),
	}
}

func assertUploadRejected(t *testing.T, err error) {
	t.Helper()
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T: %v", err, err)
	}
	if apiErr.Code != model.ErrCodeUploadRejected {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeUploadRejected)
	}
}

func TestRelayUpload_ValidPDF_ReturnsPublicURL(t *testing.T) {
	uploader := &mockUploader{}
	relay := newTestRelay(uploader)

	result, err := relay.Upload(context.Background(), validUploadInput())
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if result.ObjectPath != "1712000000000-national-id-scan.pdf" {
		t.Errorf("object path = %q", result.ObjectPath)
	}
	if !strings.HasPrefix(result.PublicURL, "https://storage.example.com/object/public/CBS/") {
		t.Errorf("public URL = %q", result.PublicURL)
	}
	if uploader.calls != 1 {
		t.Errorf("uploader called %d times, want 1", uploader.calls)
	}
}

func TestRelayUpload_NonPDF_RejectedBeforeStorageCall(t *testing.T) {
	uploader := &mockUploader{}
	relay := newTestRelay(uploader)

	input := validUploadInput()
	input.ContentType = "image/png"
	input.Filename = "scan.png"

	_, err := relay.Upload(context.Background(), input)
	if err == nil {
		t.Fatal("expected rejection for non-PDF content type")
	}
	assertUploadRejected(t, err)

	// ストレージには一切到達しないこと
	if uploader.calls != 0 {
		t.Errorf("uploader called %d times, want 0", uploader.calls)
	}
}

func TestRelayUpload_OversizedFile_RejectedBeforeStorageCall(t *testing.T) {
	uploader := &mockUploader{}
	relay := newTestRelay(uploader)

	input := validUploadInput()
	input.Data = bytes.Repeat([]byte("a"), testMaxSize+1)

	_, err := relay.Upload(context.Background(), input)
	if err == nil {
		t.Fatal("expected rejection for oversized file")
	}
	assertUploadRejected(t, err)

	if uploader.calls != 0 {
		t.Errorf("uploader called %d times, want 0", uploader.calls)
	}
}

func TestRelayUpload_EmptyFile_Rejected(t *testing.T) {
	relay := newTestRelay(&mockUploader{})

	input := validUploadInput()
	input.Data = nil

	_, err := relay.Upload(context.Background(), input)
	if err == nil {
		t.Fatal("expected rejection for empty file")
	}
	assertUploadRejected(t, err)
}

func TestRelayUpload_StorageFailure_ReturnsStorageError(t *testing.T) {
	uploader := &mockUploader{
		uploadFn: func(ctx context.Context, objectPath string, contentType string, data []byte) (string, error) {
			return "", errors.New("connection refused")
		},
	}
	relay := newTestRelay(uploader)

	_, err := relay.Upload(context.Background(), validUploadInput())
	if err == nil {
		t.Fatal("expected storage error")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %T", err)
	}
	if apiErr.Code != model.ErrCodeStorageError {
		t.Errorf("error code = %q, want %q", apiErr.Code, model.ErrCodeStorageError)
	}
}

func TestRelayUpload_ObjectPathSanitized(t *testing.T) {
	var gotPath string
	uploader := &mockUploader{
		uploadFn: func(ctx context.Context, objectPath string, contentType string, data []byte) (string, error) {
			gotPath = objectPath
			return "https://storage.example.com/object/public/CBS/" + objectPath, nil
		},
	}
	relay := newTestRelay(uploader)

	input := validUploadInput()
	input.Filename = "../etc/pass wd.pdf"

	if _, err := relay.Upload(context.Background(), input); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	if strings.ContainsAny(gotPath, "/ ") {
		t.Errorf("object path contains unsafe characters: %q", gotPath)
	}
}
