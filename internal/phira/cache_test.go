package phira

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	mu        sync.Mutex
	userCalls int
	userErr   error
}

func (s *stubFetcher) GetUserInfo(ctx context.Context, token string) (UserInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userCalls++
	if s.userErr != nil {
		return UserInfo{}, s.userErr
	}
	return UserInfo{ID: int32(len(token)), Name: token, Language: "zh-CN"}, nil
}

func (s *stubFetcher) GetChartInfo(ctx context.Context, chartID int32) (ChartInfo, error) {
	return ChartInfo{ID: chartID, Name: "chart"}, nil
}

func (s *stubFetcher) GetRecordResult(ctx context.Context, recordID int32) (RecordResult, error) {
	return RecordResult{Score: 1000000}, nil
}

func (s *stubFetcher) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userCalls
}

func TestCachedFetcher_HitThenExpiry(t *testing.T) {
	stub := &stubFetcher{}
	c := NewCachedFetcher(stub)

	clock := time.Now()
	c.now = func() time.Time { return clock }

	ctx := context.Background()
	first, err := c.GetUserInfo(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls())

	second, err := c.GetUserInfo(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, 1, stub.calls(), "second lookup should hit the cache")
	assert.Equal(t, first, second)

	clock = clock.Add(cacheTTL + time.Second)
	_, err = c.GetUserInfo(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls(), "expired entry should refetch")
}

func TestCachedFetcher_ErrorsNotCached(t *testing.T) {
	stub := &stubFetcher{userErr: errors.New("boom")}
	c := NewCachedFetcher(stub)

	ctx := context.Background()
	_, err := c.GetUserInfo(ctx, "tok")
	require.Error(t, err)
	assert.Equal(t, 1, stub.calls())

	stub.mu.Lock()
	stub.userErr = nil
	stub.mu.Unlock()

	_, err = c.GetUserInfo(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, 2, stub.calls(), "the failed lookup must not be cached")
}

func TestCachedFetcher_CapacityEviction(t *testing.T) {
	stub := &stubFetcher{}
	c := NewCachedFetcher(stub)
	c.cap = 2

	clock := time.Now()
	c.now = func() time.Time { return clock }

	ctx := context.Background()
	_, err := c.GetUserInfo(ctx, "a")
	require.NoError(t, err)

	clock = clock.Add(time.Second)
	_, err = c.GetUserInfo(ctx, "bb")
	require.NoError(t, err)

	clock = clock.Add(time.Second)
	_, err = c.GetUserInfo(ctx, "ccc")
	require.NoError(t, err)
	assert.Equal(t, 3, stub.calls())

	// "bb" survived the eviction
	_, err = c.GetUserInfo(ctx, "bb")
	require.NoError(t, err)
	assert.Equal(t, 3, stub.calls())

	// "a" had the earliest expiry and should have been evicted
	_, err = c.GetUserInfo(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 4, stub.calls())
}

func TestCachedFetcher_PassThrough(t *testing.T) {
	c := NewCachedFetcher(&stubFetcher{})

	chart, err := c.GetChartInfo(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, int32(9), chart.ID)

	rec, err := c.GetRecordResult(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1000000), rec.Score)
}
