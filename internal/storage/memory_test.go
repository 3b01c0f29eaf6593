package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryProvider(t *testing.T) {
	m := NewMemoryProvider()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.Put("b/2.jpg", "e2", 2, now)
	m.Put("a/1.jpg", "e1", 1, now)
	m.Put("b/3.txt", "e3", 3, now)

	objs, err := m.ListObjects(context.Background(), "b/")
	require.NoError(t, err)
	require.Len(t, objs, 2)
	assert.Equal(t, "b/2.jpg", objs[0].Key)
	assert.Equal(t, "e2", objs[0].ETagValue())

	m.Delete("b/2.jpg")
	objs, err = m.ListObjects(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, objs, 2)
}

func TestMemoryProvider_FailNext(t *testing.T) {
	m := NewMemoryProvider()
	m.FailNext(2)

	_, err := m.ListObjects(context.Background(), "")
	assert.ErrorIs(t, err, ErrInjected)
	_, err = m.ListObjects(context.Background(), "")
	assert.ErrorIs(t, err, ErrInjected)
	_, err = m.ListObjects(context.Background(), "")
	assert.NoError(t, err)
	assert.Equal(t, 3, m.Calls())
}
