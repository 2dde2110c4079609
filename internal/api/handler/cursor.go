package handler

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/cuongbtq/fieldservice-be/internal/storage"
)

// DecodeJobCursor parses the opaque next_cursor value. An empty string means the first page.
func DecodeJobCursor(cursorStr string) (*storage.JobCursor, error) {
	if cursorStr == "" {
		return nil, nil
	}

	decoded, err := base64.URLEncoding.DecodeString(cursorStr)
	if err != nil {
		return nil, errors.Wrap(err, "invalid cursor encoding")
	}

	parts := strings.Split(string(decoded), "|")
	if len(parts) != 2 {
		return nil, errors.New("invalid cursor format")
	}

	var createdAt int64
	if _, err := fmt.Sscanf(parts[0], "%d", &createdAt); err != nil {
		return nil, errors.Wrap(err, "invalid created_at in cursor")
	}
	if _, err := uuid.Parse(parts[1]); err != nil {
		return nil, errors.Wrap(err, "invalid job id in cursor")
	}

	return &storage.JobCursor{
		CreatedAt: time.Unix(0, createdAt).UTC(),
		JobID:     parts[1],
	}, nil
}

func EncodeJobCursor(cursor *storage.JobCursor) string {
	cs := fmt.Sprintf("%d|%s", cursor.CreatedAt.UnixNano(), cursor.JobID)
	return base64.URLEncoding.EncodeToString([]byte(cs))
}
