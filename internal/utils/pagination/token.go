package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const timeFormat = time.RFC3339Nano

// Cursor identifies the last ledger entry a client has seen. Entries are ordered
// by date and then insertion sequence, so the pair is unique and stable.
type Cursor struct {
	Date time.Time
	Seq  int64
}

// After reports whether an entry at (date, seq) comes after the cursor.
func (c Cursor) After(date time.Time, seq int64) bool {
	if !date.Equal(c.Date) {
		return date.After(c.Date)
	}
	return seq > c.Seq
}

// EncodeToken creates an opaque page token from an entry date and sequence.
func EncodeToken(date time.Time, seq int64) string {
	tokenStr := fmt.Sprintf("%s|%d", date.UTC().Format(timeFormat), seq)
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses a token produced by EncodeToken.
func DecodeToken(token string) (Cursor, error) {
	decoded, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decoded), "|", 2)
	if len(parts) != 2 {
		return Cursor{}, fmt.Errorf("invalid pagination token format (split)")
	}

	date, err := time.Parse(timeFormat, parts[0])
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (date parse): %w", err)
	}
	seq, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid pagination token format (seq parse): %w", err)
	}
	return Cursor{Date: date, Seq: seq}, nil
}
