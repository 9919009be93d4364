package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/hitoshi/tellerdesk/internal/metrics"
	"github.com/hitoshi/tellerdesk/internal/model"
	"github.com/hitoshi/tellerdesk/internal/storage"
)

// UploadRelayInterface はアップロードハンドラーが必要とするストレージリレー。
type UploadRelayInterface interface {
	Upload(ctx context.Context, input storage.UploadInput) (*storage.UploadResult, error)
}

// UploadHandler は顧客書類アップロードのHTTPハンドラー。
type UploadHandler struct {
	relay   UploadRelayInterface
	maxSize int64
	metrics metrics.MetricsCollector
}

// NewUploadHandler はUploadHandlerを生成する。maxSizeはmultipart解析時の
// メモリ上限にも使う。
func NewUploadHandler(relay UploadRelayInterface, maxSize int64, collector metrics.MetricsCollector) *UploadHandler {
	return &UploadHandler{relay: relay, maxSize: maxSize, metrics: collector}
}

// uploadResponse はアップロード成功時のレスポンス。
type uploadResponse struct {
	Success bool   `json:"success"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

// Upload は提出書類を受け取りオブジェクトストレージに転送する。
// multipart/form-dataの`file`フィールドと`type`フィールドを要求する。
// POST /api/upload
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// ボディサイズを制限してから解析する。上限超過はリレー側でも再検証される
	r.Body = http.MaxBytesReader(w, r.Body, h.maxSize+1024)

	if err := r.ParseMultipartForm(h.maxSize); err != nil {
		h.recordRejected("invalid_multipart")
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewUploadRejectedError("multipart/form-data形式のリクエストを解析できません"))
		return
	}

	documentType := r.FormValue("type")
	file, header, err := r.FormFile("file")
	if err != nil {
		h.recordRejected("missing_file")
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewUploadRejectedError("fileフィールドは必須です"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest,
			model.NewUploadRejectedError("ファイルの読み込みに失敗しました"))
		return
	}

	result, err := h.relay.Upload(r.Context(), storage.UploadInput{
		DocumentType: documentType,
		Filename:     header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		Data:         data,
	})
	if err != nil {
		h.recordUploadFailure(err)
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordUploadAccepted()
	}

	writeJSON(w, http.StatusOK, uploadResponse{
		Success: true,
		URL:     result.PublicURL,
		Message: "アップロードが完了しました",
	})
}

func (h *UploadHandler) recordRejected(reason string) {
	if h.metrics != nil {
		h.metrics.RecordUploadRejected(reason)
	}
}

func (h *UploadHandler) recordUploadFailure(err error) {
	if h.metrics == nil {
		return
	}
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		return
	}
	switch apiErr.Code {
	case model.ErrCodeUploadRejected:
		h.metrics.RecordUploadRejected("validation")
	case model.ErrCodeStorageError:
		h.metrics.RecordStorageError()
	}
}
