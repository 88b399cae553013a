package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"minato-cat-support/internal/ports/blob"
)

func TestStore_PutGet(t *testing.T) {
	s := New()
	data := []byte("jpeg")

	ref, err := s.Put(context.Background(), "reports/r1/urgent.jpg", "image/jpeg", data)
	require.NoError(t, err)
	assert.Equal(t, "mem://reports/r1/urgent.jpg", ref)

	data[0] = 'X'
	o, ok := s.Get("reports/r1/urgent.jpg")
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", o.ContentType)
	assert.Equal(t, []byte("jpeg"), o.Data)

	_, err = s.Put(context.Background(), "empty", "", nil)
	assert.ErrorIs(t, err, blob.ErrEmptyObject)
}
