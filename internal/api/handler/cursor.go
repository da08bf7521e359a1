package handler

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cuongbtq/jobboard/internal/api/domain"
)

// NextCursorHeader carries the opaque position of the next page
const NextCursorHeader = "X-Next-Cursor"

func DecodeJobCursor(cursorStr string) (*domain.Cursor, error) {
	if cursorStr == "" {
		return nil, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cursorStr)
	if err != nil {
		return nil, err
	}

	decodedParts := strings.Split(string(decoded), "|")
	if len(decodedParts) != 2 {
		return nil, fmt.Errorf("invalid cursor format")
	}

	postedAt, err := strconv.ParseInt(decodedParts[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid posted_at in cursor: %w", err)
	}

	id, err := strconv.ParseInt(decodedParts[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid id in cursor: %w", err)
	}

	return &domain.Cursor{
		PostedAt: time.Unix(0, postedAt).UTC(),
		ID:       id,
	}, nil
}

func EncodeJobCursor(cursor *domain.Cursor) string {
	cs := fmt.Sprintf("%d|%d", cursor.PostedAt.UnixNano(), cursor.ID)
	return base64.URLEncoding.EncodeToString([]byte(cs))
}
