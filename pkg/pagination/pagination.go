package pagination

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is the wallet history page size when none is requested.
	DefaultLimit = 25
	// MaxLimit caps a single page; the log can grow for years, so clients
	// walk it in pages rather than pulling it whole.
	MaxLimit = 100

	cursorSep = "|"
)

// Params carries the raw limit and cursor a caller passed for one page.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor pins a page boundary to a log row. Rows are ordered newest first by
// (created_at, id); the id breaks timestamp ties so a boundary is never
// skipped or repeated.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// NormalizeLimit clamps a requested limit into [1, MaxLimit], substituting
// DefaultLimit for zero or negative requests.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// LimitWithBuffer adds one row past the normalized limit so the query can
// tell whether another page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}

// EncodeCursor renders a boundary as an opaque URL-safe token.
func EncodeCursor(cursor Cursor) string {
	payload := cursor.CreatedAt.UTC().Format(time.RFC3339Nano) + cursorSep + cursor.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(payload))
}

// ParseCursor decodes a client-supplied token back into a boundary. A blank
// token means the first page and yields (nil, nil).
func ParseCursor(value string) (*Cursor, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	ts, id, found := strings.Cut(string(decoded), cursorSep)
	if !found {
		return nil, fmt.Errorf("malformed cursor")
	}

	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor timestamp: %w", err)
	}
	rowID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid cursor id: %w", err)
	}
	return &Cursor{CreatedAt: createdAt, ID: rowID}, nil
}
