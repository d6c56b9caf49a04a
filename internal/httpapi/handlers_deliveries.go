package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"lunastudios/internal/domain"
	"lunastudios/internal/service"
)

var allowedUploadExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".pdf":  true,
	".zip":  true,
	".rar":  true,
}

func (a *api) handleDeliveriesCreate(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	var in service.CreateDeliveryInput
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		// Reject non-admins before touching the body so nothing lands
		// in the upload dir on a forbidden request.
		if !actor.IsAdmin() {
			WriteDomainError(w, domain.ErrForbidden)
			return
		}
		fileURL, fileType, err := a.saveUpload(w, r)
		if err != nil {
			WriteDomainError(w, err)
			return
		}
		in = service.CreateDeliveryInput{
			SessionID:   r.FormValue("session_id"),
			Title:       r.FormValue("title"),
			Description: r.FormValue("description"),
			FileURL:     fileURL,
			FileType:    fileType,
			ExpiryDate:  parseExpiry(r.FormValue("expiry_date")),
		}
	} else {
		if err := decodeJSONAllowUnknownFields(w, r, &in); err != nil {
			WriteError(w, http.StatusBadRequest, "bad_json", "invalid json")
			return
		}
	}

	d, err := a.deliverySvc.Create(r.Context(), actor, in)
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, d)
}

// saveUpload streams the multipart "file" part to the upload dir under a
// collision-free name and returns its public URL and extension.
func (a *api) saveUpload(w http.ResponseWriter, r *http.Request) (string, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, a.uploadMax)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		return "", "", domain.NewValidationError(map[string]string{"file": "upload too large or malformed"})
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", domain.NewValidationError(map[string]string{"file": "required"})
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedUploadExts[ext] {
		return "", "", domain.NewValidationError(map[string]string{"file": "file type not allowed"})
	}

	if err := os.MkdirAll(a.uploadDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create upload dir: %w", err)
	}

	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
	dst, err := os.Create(filepath.Join(a.uploadDir, name))
	if err != nil {
		return "", "", fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, file); err != nil {
		return "", "", fmt.Errorf("write upload file: %w", err)
	}

	return "/uploads/" + name, strings.TrimPrefix(ext, "."), nil
}

func parseExpiry(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}

func (a *api) handleDeliveriesList(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	deliveries, err := a.deliverySvc.List(r.Context(), actor, strings.TrimSpace(r.URL.Query().Get("session_id")))
	if err != nil {
		WriteDomainError(w, err)
		return
	}
	if deliveries == nil {
		deliveries = []domain.PhotoDelivery{}
	}
	WriteJSON(w, http.StatusOK, deliveries)
}

func (a *api) handleDeliveryDownload(w http.ResponseWriter, r *http.Request) {
	actor, ok := CurrentActor(r.Context())
	if !ok {
		WriteDomainError(w, domain.ErrUnauthorized)
		return
	}

	d, err := a.deliverySvc.Download(r.Context(), actor, r.PathValue("id"))
	if err != nil {
		WriteDomainError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]string{"file_url": d.FileURL, "file_type": d.FileType})
}
