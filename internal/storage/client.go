// Package storage はオブジェクトストレージへの書類アップロード中継を提供する。
// 事前検証済みのファイルをストレージAPIに転送し、公開URLを払い出す。
package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

// Client はオブジェクトストレージAPIのクライアント。
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
	endpoint   string // テスト用にエンドポイントを差し替え可能
	bucket     string
	serviceKey string
}

// NewClient はClientの新しいインスタンスを生成する。
func NewClient(httpClient *http.Client, logger *slog.Logger, endpoint, bucket, serviceKey string) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     logger,
		endpoint:   strings.TrimRight(endpoint, "/"),
		bucket:     bucket,
		serviceKey: serviceKey,
	}
}

// Upload はオブジェクトをバケットにアップロードし、公開URLを返す。
// オブジェクトが格納されるパスは呼び出し側が組み立てる。
func (c *Client) Upload(ctx context.Context, objectPath string, contentType string, data []byte) (string, error) {
	reqURL := fmt.Sprintf("%s/object/%s/%s", c.endpoint, c.bucket, url.PathEscape(objectPath))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("ストレージAPIの呼び出しに失敗しました",
			slog.String("error", err.Error()),
			slog.String("object_path", objectPath),
		)
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		c.logger.Error("ストレージAPIがエラーステータスを返しました",
			slog.Int("http_status", resp.StatusCode),
			slog.String("object_path", objectPath),
		)
		return "", fmt.Errorf("ストレージAPIがステータス %d を返しました", resp.StatusCode)
	}

	return c.PublicURL(objectPath), nil
}

// PublicURL はアップロード済みオブジェクトの公開URLを返す。
func (c *Client) PublicURL(objectPath string) string {
	return fmt.Sprintf("%s/object/public/%s/%s", c.endpoint, c.bucket, url.PathEscape(objectPath))
}
