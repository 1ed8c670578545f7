package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	m := miniredis.RunT(t)
	require.NoError(t, InitWithAddr(m.Addr()))
	t.Cleanup(func() { _ = Close() })
	return m
}

func TestNotInitialized(t *testing.T) {
	_ = Close()

	assert.False(t, Enabled())
	assert.Error(t, HealthCheck())

	_, err := GetIkitai(1)
	assert.ErrorIs(t, err, errNotInitialized)
	assert.Error(t, AddOfflineNotification(1, []byte("{}")))
	_, err = GetPendingCount(1)
	assert.Error(t, err)
}

func TestIkitaiCache(t *testing.T) {
	m := setupMiniredis(t)
	now := time.Date(2026, 10, 17, 10, 0, 0, 0, time.UTC)

	status := &CachedIkitai{
		UserID:    7,
		Latitude:  35.0,
		Longitude: 139.0,
		ExpiresAt: now.Add(time.Hour),
		CreatedAt: now,
	}
	require.NoError(t, SetIkitai(status, now))
	assert.Equal(t, time.Hour, m.TTL(ikitaiKey(7)))

	got, err := GetIkitai(7)
	require.NoError(t, err)
	assert.Equal(t, 35.0, got.Latitude)
	assert.Equal(t, 139.0, got.Longitude)
	assert.True(t, got.ExpiresAt.Equal(status.ExpiresAt))

	// 过期后key被Redis淘汰
	m.FastForward(time.Hour + time.Second)
	_, err = GetIkitai(7)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestIkitaiCacheSkipsExpired(t *testing.T) {
	m := setupMiniredis(t)
	now := time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC)

	status := &CachedIkitai{UserID: 3, ExpiresAt: now.Add(-time.Minute)}
	require.NoError(t, SetIkitai(status, now))
	assert.False(t, m.Exists(ikitaiKey(3)))
}

func TestDeleteIkitai(t *testing.T) {
	setupMiniredis(t)
	now := time.Now()

	require.NoError(t, SetIkitai(&CachedIkitai{UserID: 9, ExpiresAt: now.Add(time.Hour)}, now))
	require.NoError(t, DeleteIkitai(9))
	_, err := GetIkitai(9)
	assert.ErrorIs(t, err, ErrCacheMiss)

	// 删除不存在的key不报错
	assert.NoError(t, DeleteIkitai(9))
}

func TestPendingCount(t *testing.T) {
	m := setupMiniredis(t)

	count, err := GetPendingCount(5)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), count)

	require.NoError(t, SetPendingCount(5, 3))
	assert.Equal(t, PendingCountTTL, m.TTL(pendingCountKey(5)))
	count, err = GetPendingCount(5)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	// 脏计数最多存活一个TTL
	m.FastForward(PendingCountTTL + time.Second)
	count, err = GetPendingCount(5)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), count)

	require.NoError(t, SetPendingCount(5, 3))
	require.NoError(t, ResetPendingCount(5))
	count, err = GetPendingCount(5)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), count)
}

func TestOfflineNotifications(t *testing.T) {
	setupMiniredis(t)

	require.NoError(t, AddOfflineNotification(2, []byte(`{"n":1}`)))
	require.NoError(t, AddOfflineNotification(2, []byte(`{"n":2}`)))

	count, err := GetOfflineNotificationCount(2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	notifications, err := PopOfflineNotifications(2)
	require.NoError(t, err)
	require.Len(t, notifications, 2)
	assert.JSONEq(t, `{"n":1}`, string(notifications[0]))
	assert.JSONEq(t, `{"n":2}`, string(notifications[1]))

	count, err = GetOfflineNotificationCount(2)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestOfflineNotificationsTrimmed(t *testing.T) {
	setupMiniredis(t)

	for i := 0; i < MaxOfflineNotifications+5; i++ {
		require.NoError(t, AddOfflineNotification(4, []byte("{}")))
	}
	count, err := GetOfflineNotificationCount(4)
	require.NoError(t, err)
	assert.Equal(t, int64(MaxOfflineNotifications), count)
}

func TestRequeueOfflineNotifications(t *testing.T) {
	setupMiniredis(t)

	require.NoError(t, AddOfflineNotification(8, []byte(`{"n":3}`)))
	require.NoError(t, RequeueOfflineNotifications(8, [][]byte{[]byte(`{"n":1}`), []byte(`{"n":2}`)}))
	require.NoError(t, RequeueOfflineNotifications(8, nil))

	notifications, err := PopOfflineNotifications(8)
	require.NoError(t, err)
	require.Len(t, notifications, 3)
	for i, want := range []string{`{"n":1}`, `{"n":2}`, `{"n":3}`} {
		assert.JSONEq(t, want, string(notifications[i]))
	}
}
