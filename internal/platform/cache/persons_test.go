package cache

import (
	"context"
	"testing"
	"time"

	"financeiro-service/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*miniredis.Miniredis, *PersonCache) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := New(context.Background(), mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewPersonCache(client, time.Hour)
}

func TestPersonCacheRoundTrip(t *testing.T) {
	mr, pc := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, pc.SetPersons(ctx, []domain.Person{
		{Code: 1, Name: "MARIA", CpfCnpj: "12345678900"},
		{Code: 2, Name: "JOAO"},
	}))

	found, err := pc.GetPersons(ctx, []int{1, 2, 3})
	require.NoError(t, err)
	assert.Len(t, found, 2)
	assert.Equal(t, "MARIA", found[1].Name)
	_, ok := found[3]
	assert.False(t, ok)

	assert.Equal(t, time.Hour, mr.TTL("financeiro:person:1"))

	mr.FastForward(2 * time.Hour)
	found, err = pc.GetPersons(ctx, []int{1})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestPersonCacheIgnoresCorruptValues(t *testing.T) {
	mr, pc := newTestCache(t)
	require.NoError(t, mr.Set("financeiro:person:9", "{quebrado"))

	found, err := pc.GetPersons(context.Background(), []int{9})
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestNewFailsWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), addr)
	assert.Error(t, err)
}
