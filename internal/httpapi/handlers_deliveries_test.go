package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"lunastudios/internal/domain"
	"lunastudios/internal/service"
	"lunastudios/internal/store/postgres"
)

type stubDeliveriesStore struct {
	t *testing.T

	createDeliveryFunc func(context.Context, postgres.CreateDeliveryParams) (domain.PhotoDelivery, error)
}

func (s *stubDeliveriesStore) CreateDelivery(ctx context.Context, p postgres.CreateDeliveryParams) (domain.PhotoDelivery, error) {
	if s.createDeliveryFunc != nil {
		return s.createDeliveryFunc(ctx, p)
	}
	s.t.Fatalf("CreateDelivery called unexpectedly")
	return domain.PhotoDelivery{}, context.Canceled
}

func (s *stubDeliveriesStore) ListDeliveries(context.Context, string, string) ([]domain.PhotoDelivery, error) {
	s.t.Fatalf("ListDeliveries called unexpectedly")
	return nil, context.Canceled
}

func (s *stubDeliveriesStore) GetDelivery(context.Context, string) (domain.PhotoDelivery, string, error) {
	s.t.Fatalf("GetDelivery called unexpectedly")
	return domain.PhotoDelivery{}, "", context.Canceled
}

func (s *stubDeliveriesStore) IncrementDownloadCount(context.Context, string) error {
	s.t.Fatalf("IncrementDownloadCount called unexpectedly")
	return context.Canceled
}

func multipartDelivery(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for field, value := range map[string]string{
		"session_id": "sess-1",
		"title":      "Galería final",
	} {
		if err := mw.WriteField(field, value); err != nil {
			t.Fatalf("write field %s: %v", field, err)
		}
	}
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte("not really a jpeg")); err != nil {
		t.Fatalf("write file part: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestDeliveriesCreateMultipartForbiddenBeforeSaving(t *testing.T) {
	dir := t.TempDir()
	a := &api{uploadDir: dir, uploadMax: 1 << 20}

	body, contentType := multipartDelivery(t, "galeria.jpg")
	req := httptest.NewRequest(http.MethodPost, "/api/photo-deliveries", body)
	req.Header.Set("Content-Type", contentType)
	req = withActor(req, domain.Actor{ID: "client-1", Role: domain.RoleClient})
	rr := httptest.NewRecorder()

	a.handleDeliveriesCreate(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d body=%s", rr.Code, rr.Body.String())
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("forbidden upload left %d file(s) on disk", len(entries))
	}
}

func TestDeliveriesCreateMultipartSavesForAdmin(t *testing.T) {
	dir := t.TempDir()
	deliveries := &stubDeliveriesStore{
		t: t,
		createDeliveryFunc: func(_ context.Context, p postgres.CreateDeliveryParams) (domain.PhotoDelivery, error) {
			return domain.PhotoDelivery{ID: "del-1", SessionID: p.SessionID, Title: p.Title, FileURL: p.FileURL, FileType: p.FileType}, nil
		},
	}
	sessions := &stubPaymentSessions{
		getSessionByIDFunc: func(_ context.Context, id string) (domain.PhotoSession, error) {
			return domain.PhotoSession{ID: id, UserID: "client-1"}, nil
		},
	}
	a := &api{
		deliverySvc: &service.DeliveryService{Deliveries: deliveries, Sessions: sessions},
		uploadDir:   dir,
		uploadMax:   1 << 20,
	}

	body, contentType := multipartDelivery(t, "galeria.jpg")
	req := httptest.NewRequest(http.MethodPost, "/api/photo-deliveries", body)
	req.Header.Set("Content-Type", contentType)
	req = withActor(req, domain.Actor{ID: "admin-1", Role: domain.RoleAdmin})
	rr := httptest.NewRecorder()

	a.handleDeliveriesCreate(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d body=%s", rr.Code, rr.Body.String())
	}
	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	fileURL, _ := resp["file_url"].(string)
	if !strings.HasPrefix(fileURL, "/uploads/") {
		t.Fatalf("unexpected file_url: %q", fileURL)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read upload dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one stored file, got %d", len(entries))
	}
}
