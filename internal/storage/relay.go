package storage

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/hitoshi/tellerdesk/internal/model"
)

// 受け付けるMIMEタイプ。提出書類はPDFのみ。
const acceptedContentType = "application/pdf"

// Uploader はストレージへのオブジェクト転送インターフェース。
type Uploader interface {
	Upload(ctx context.Context, objectPath string, contentType string, data []byte) (string, error)
}

// RelayConfig はアップロード中継の設定。
type RelayConfig struct {
	MaxSize int64 // 受け付ける最大ファイルサイズ（バイト）
}

// Relay は書類アップロードの事前検証とストレージ転送を行う。
type Relay struct {
	uploader Uploader
	config   RelayConfig
	now      func() time.Time // テスト用に差し替え可能
}

// NewRelay はRelayを生成する。
func NewRelay(uploader Uploader, config RelayConfig) *Relay {
	return &Relay{
		uploader: uploader,
		config:   config,
		now:      time.Now,
	}
}

// UploadInput は書類アップロードの入力。
type UploadInput struct {
	DocumentType string // 書類種別（national-id, agreement-form 等）
	Filename     string
	ContentType  string
	Data         []byte
}

// UploadResult はアップロード成功時の結果。
type UploadResult struct {
	ObjectPath string
	PublicURL  string
}

// objectNameSanitizer はオブジェクトパスに使えない文字を除去する。
var objectNameSanitizer = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Upload は書類を検証してストレージに転送する。
// MIMEタイプとサイズの検証はストレージ呼び出しの前に行い、
// 不正なファイルは一切ストレージに到達させない。
func (r *Relay) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	if strings.TrimSpace(input.DocumentType) == "" {
		return nil, model.NewValidationError("書類種別は必須です")
	}
	if strings.TrimSpace(input.Filename) == "" {
		return nil, model.NewValidationError("ファイル名は必須です")
	}

	if input.ContentType != acceptedContentType {
		return nil, model.NewUploadRejectedError(
			fmt.Sprintf("PDF以外のファイルは受け付けられません（%s）", input.ContentType))
	}
	if int64(len(input.Data)) > r.config.MaxSize {
		return nil, model.NewUploadRejectedError(
			fmt.Sprintf("ファイルサイズが上限を超えています（%dバイト > %dバイト）", len(input.Data), r.config.MaxSize))
	}
	if len(input.Data) == 0 {
		return nil, model.NewUploadRejectedError("空のファイルは受け付けられません")
	}

	objectPath := r.buildObjectPath(input.DocumentType, input.Filename)

	publicURL, err := r.uploader.Upload(ctx, objectPath, input.ContentType, input.Data)
	if err != nil {
		return nil, model.NewStorageError("ストレージへの転送に失敗しました")
	}

	slog.Info("document uploaded",
		slog.String("object_path", objectPath),
		slog.Int("size_bytes", len(input.Data)),
	)

	return &UploadResult{
		ObjectPath: objectPath,
		PublicURL:  publicURL,
	}, nil
}

// buildObjectPath は衝突しにくいオブジェクトパスを組み立てる。
// ミリ秒タイムスタンプを先頭に付与し、同名ファイルの上書きを防ぐ。
func (r *Relay) buildObjectPath(documentType, filename string) string {
	millis := r.now().UnixMilli()
	docType := objectNameSanitizer.ReplaceAllString(documentType, "")
	name := objectNameSanitizer.ReplaceAllString(filename, "")
	return fmt.Sprintf("%d-%s-%s", millis, docType, name)
}
