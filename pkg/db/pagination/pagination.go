package pagination

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

type Pagination struct {
	PageToken string `form:"page_token"`
	PageSize  int    `form:"page_size"`
}

type PageInfo struct {
	NextPageToken string `json:"next_page_token,omitempty"`
	HasMore       bool   `json:"has_more"`
}

// Cursor is the opaque page token payload. Ordering is (created_at desc, id desc).
type Cursor struct {
	ID        string `json:"id"`
	CreatedAt string `json:"created_at"`
}

var ErrInvalidPageToken = errors.New("invalid_page_token")

func EncodeCursor(c Cursor) (string, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

func DecodeCursor(token string) (Cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, ErrInvalidPageToken
	}
	var c Cursor
	if err := json.Unmarshal(raw, &c); err != nil {
		return Cursor{}, ErrInvalidPageToken
	}
	return c, nil
}

// BuildCursorPageInfo inspects a page fetched with limit size+1 and reports
// whether more rows exist, encoding the last in-page item as the next token.
func BuildCursorPageInfo[T any](items []T, size int, token func(T) string) *PageInfo {
	if size <= 0 {
		return nil
	}
	info := &PageInfo{}
	if len(items) > size {
		info.HasMore = true
		info.NextPageToken = token(items[size-1])
	}
	return info
}
