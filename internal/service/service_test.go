package service

import (
	"context"
	"testing"

	"linkkit/internal/model"
	"linkkit/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, rc *redis.Client) (*Service, *repository.MemoryStore, *test.Hook) {
	t.Helper()
	logger, hook := test.NewNullLogger()
	repo := repository.NewMemoryStore()
	return NewService(repo, rc, "https://tools.example/short/?utm=x#old", logger), repo, hook
}

// fixedCodes hands out the given codes in order.
func fixedCodes(codes ...string) func() string {
	i := 0
	return func() string {
		c := codes[i%len(codes)]
		i++
		return c
	}
}

func TestShortenAndResolve(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	ctx := context.Background()

	link, err := svc.Shorten(ctx, "https://example.com/page")
	require.NoError(t, err)
	assert.Len(t, link.ShortCode, 6)
	assert.Equal(t, "https://tools.example/short/#"+link.ShortCode, link.ShortURL)

	got, err := svc.Resolve(ctx, link.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page", got)
}

func TestShortenInvalidURLDoesNotMutate(t *testing.T) {
	svc, repo, _ := newTestService(t, nil)
	ctx := context.Background()

	_, err := svc.Shorten(ctx, "not a url")
	assert.ErrorIs(t, err, ErrInvalidURL)
	_, err = repo.Get(ctx, StorageKey)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, err = svc.Shorten(ctx, "https://example.com")
	require.NoError(t, err)
	before, err := repo.Get(ctx, StorageKey)
	require.NoError(t, err)

	_, err = svc.Shorten(ctx, "example.com/missing-scheme")
	assert.ErrorIs(t, err, ErrInvalidURL)
	after, err := repo.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestShortenCollisionLastWriteWins(t *testing.T) {
	svc, _, hook := newTestService(t, nil)
	svc.Codes = fixedCodes("abc123")
	ctx := context.Background()

	_, err := svc.Shorten(ctx, "https://first.example")
	require.NoError(t, err)
	_, err = svc.Shorten(ctx, "https://second.example")
	require.NoError(t, err)

	got, err := svc.Resolve(ctx, "abc123")
	require.NoError(t, err)
	assert.Equal(t, "https://second.example", got)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestShortenMergesIntoExistingMapping(t *testing.T) {
	svc, repo, _ := newTestService(t, nil)
	svc.Codes = fixedCodes("aaaaaa", "bbbbbb")
	ctx := context.Background()

	_, err := svc.Shorten(ctx, "https://a.example")
	require.NoError(t, err)
	_, err = svc.Shorten(ctx, "https://b.example")
	require.NoError(t, err)

	raw, err := repo.Get(ctx, StorageKey)
	require.NoError(t, err)
	assert.JSONEq(t, `{"aaaaaa":"https://a.example","bbbbbb":"https://b.example"}`, string(raw))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "aaaaaa", list[0].ShortCode)
	assert.Equal(t, "https://tools.example/short/#bbbbbb", list[1].ShortURL)
}

func TestResolveMissing(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	_, err := svc.Resolve(context.Background(), "zzzzzz")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLand(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	svc.Codes = fixedCodes("k3y000")
	ctx := context.Background()
	_, err := svc.Shorten(ctx, "https://example.com/page")
	require.NoError(t, err)

	l, err := svc.Land(ctx, "https://tools.example/short/")
	require.NoError(t, err)
	assert.Equal(t, model.LandingIdle, l.Kind)

	l, err = svc.Land(ctx, "https://tools.example/short/#k3y000")
	require.NoError(t, err)
	assert.Equal(t, model.LandingRedirect, l.Kind)
	assert.Equal(t, "https://example.com/page", l.Target)

	l, err = svc.Land(ctx, "https://tools.example/short/?q=1#nope00")
	require.NoError(t, err)
	assert.Equal(t, model.LandingNotFound, l.Kind)
	assert.Equal(t, "nope00", l.Code)
	assert.Equal(t, "https://tools.example/short/", l.Home)
	assert.Empty(t, l.Target)
}

func TestResolveUsesRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	svc, _, _ := newTestService(t, rc)
	svc.Codes = fixedCodes("c4che0")
	ctx := context.Background()

	_, err := svc.Shorten(ctx, "https://example.com/cached")
	require.NoError(t, err)
	v, err := mr.Get("short:c4che0")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/cached", v)
	assert.Equal(t, cacheTTL, mr.TTL("short:c4che0"))

	// a cache entry is served without touching the store
	require.NoError(t, mr.Set("short:only00", "https://cache.example"))
	got, err := svc.Resolve(ctx, "only00")
	require.NoError(t, err)
	assert.Equal(t, "https://cache.example", got)
}

func TestResolvePopulatesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })

	svc, _, _ := newTestService(t, nil)
	svc.Codes = fixedCodes("f111ed")
	ctx := context.Background()
	_, err := svc.Shorten(ctx, "https://example.com/later")
	require.NoError(t, err)

	svc.Redis = rc
	_, err = svc.Resolve(ctx, "f111ed")
	require.NoError(t, err)
	assert.True(t, mr.Exists("short:f111ed"))
}

func TestResolveMalformedCodeSkipsLookup(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rc.Close() })
	svc, _, _ := newTestService(t, rc)

	require.NoError(t, mr.Set("short:favicon.ico", "https://cache.example"))
	for _, code := range []string{"favicon.ico", "", "ABC123", "abc1234"} {
		_, err := svc.Resolve(context.Background(), code)
		assert.ErrorIs(t, err, ErrNotFound, code)
	}
	assert.False(t, mr.Exists("short:ABC123"))
}

func TestResolveSurvivesRedisOutage(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rc.Close() })

	svc, _, _ := newTestService(t, rc)
	svc.Codes = fixedCodes("0utage")
	ctx := context.Background()
	_, err := svc.Shorten(ctx, "https://example.com/down")
	require.NoError(t, err)

	mr.Close()
	got, err := svc.Resolve(ctx, "0utage")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/down", got)
}
