package book

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// CursorData represents the data encoded in a page token. The cursor is a
// row key, not an offset: listing resumes strictly after AfterID.
type CursorData struct {
	AfterID int64 `json:"after_id,omitempty"`
}

// EncodeCursor encodes cursor data to a base64 string
func EncodeCursor(data CursorData) string {
	if data.AfterID == 0 {
		return ""
	}
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return base64.URLEncoding.EncodeToString(jsonBytes)
}

// DecodeCursor decodes a base64 page token to CursorData. A token issued by
// one backend is meaningful to any backend of this package because they all
// share the ascending-ID order.
func DecodeCursor(cursor string) (CursorData, error) {
	if cursor == "" {
		return CursorData{}, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cursor)
	if err != nil {
		return CursorData{}, err
	}

	var data CursorData
	if err := json.Unmarshal(decoded, &data); err != nil {
		return CursorData{}, err
	}
	return data, nil
}

// decodeListRequest validates the common List arguments for every backend.
func decodeListRequest(pageSize int, pageToken string) (int64, error) {
	if pageSize < 1 {
		return 0, fmt.Errorf("%w: page size must be positive", ErrInvalidBook)
	}
	cursor, err := DecodeCursor(pageToken)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed page token", ErrInvalidBook)
	}
	return cursor.AfterID, nil
}
