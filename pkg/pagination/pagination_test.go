package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, MaxLimit, NormalizeLimit(MaxLimit+10))
	assert.Equal(t, 5, NormalizeLimit(5))
	assert.Equal(t, 6, LimitWithBuffer(5))
}

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2026, 3, 1, 10, 0, 0, 123, time.UTC), ID: uuid.New()}
	out, err := ParseCursor(EncodeCursor(in))
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	assert.Equal(t, in.ID, out.ID)
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	cur, err := ParseCursor("")
	require.NoError(t, err)
	assert.Nil(t, cur)

	_, err = ParseCursor("!!!")
	require.Error(t, err)
	_, err = ParseCursor(EncodeCursor(Cursor{})[:4])
	require.Error(t, err)
}

func TestTrim(t *testing.T) {
	type row struct {
		id uuid.UUID
		at time.Time
	}
	now := time.Now().UTC()
	rows := []row{{uuid.New(), now}, {uuid.New(), now.Add(-time.Second)}, {uuid.New(), now.Add(-2 * time.Second)}}
	cursorOf := func(r row) Cursor { return Cursor{CreatedAt: r.at, ID: r.id} }

	page, next := Trim(rows, 2, cursorOf)
	require.Len(t, page, 2)
	require.NotEmpty(t, next)
	decoded, err := ParseCursor(next)
	require.NoError(t, err)
	assert.Equal(t, rows[1].id, decoded.ID)

	page, next = Trim(rows, 5, cursorOf)
	assert.Len(t, page, 3)
	assert.Empty(t, next)
}
