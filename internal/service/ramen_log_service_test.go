package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rating(v float64) *float64 { return &v }

func visited(day int) *time.Time {
	t := time.Date(2026, 10, day, 12, 0, 0, 0, time.UTC)
	return &t
}

func TestCreateRamenLog(t *testing.T) {
	f := newFixture(t)
	u := f.createUser(t, "alice")

	log, err := f.logs.Create(u.ID, RamenLogInput{
		ShopName:       "  Ichiran  ",
		OrderedItem:    "tonkotsu",
		NoodleHardness: "barikata",
		Toppings:       "egg, nori",
		Rating:         rating(4.26),
		VisitedAt:      visited(10),
	})
	require.NoError(t, err)
	assert.NotZero(t, log.ID)
	assert.Equal(t, "Ichiran", log.ShopName)
	assert.Equal(t, "alice", log.User.Username)
	require.NotNil(t, log.Rating)
	assert.InDelta(t, 4.3, *log.Rating, 1e-9)
}

func TestCreateRamenLogValidation(t *testing.T) {
	f := newFixture(t)
	u := f.createUser(t, "alice")

	_, err := f.logs.Create(u.ID, RamenLogInput{ShopName: "   "})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.logs.Create(u.ID, RamenLogInput{ShopName: "Ichiran", Rating: rating(5.5)})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = f.logs.Create(u.ID, RamenLogInput{ShopName: "Ichiran", Rating: rating(-1)})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestListMineOrdering(t *testing.T) {
	f := newFixture(t)
	u := f.createUser(t, "alice")

	for _, in := range []RamenLogInput{
		{ShopName: "old", VisitedAt: visited(1)},
		{ShopName: "unknown"},
		{ShopName: "new", VisitedAt: visited(15)},
	} {
		_, err := f.logs.Create(u.ID, in)
		require.NoError(t, err)
	}

	logs, err := f.logs.ListMine(u.ID)
	require.NoError(t, err)
	require.Len(t, logs, 3)
	assert.Equal(t, "new", logs[0].ShopName)
	assert.Equal(t, "old", logs[1].ShopName)
	assert.Equal(t, "unknown", logs[2].ShopName)
}

func TestListForViewerRequiresApprovedFollow(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner")
	fan := f.createUser(t, "fan")

	_, err := f.logs.Create(owner.ID, RamenLogInput{ShopName: "Fuunji"})
	require.NoError(t, err)

	_, err = f.logs.ListForViewer(fan.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.logs.ListForViewer(fan.ID, owner.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	// PENDING 仍不可见
	_, err = f.relations.SendFollowRequest(fan.ID, owner.ID)
	require.NoError(t, err)
	_, err = f.logs.ListForViewer(fan.ID, owner.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, _, err = f.relations.ResolveFollowRequest(owner.ID, fan.ID, ActionApprove)
	require.NoError(t, err)
	logs, err := f.logs.ListForViewer(fan.ID, owner.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 1)

	// 本人总是可见
	logs, err = f.logs.ListForViewer(owner.ID, owner.ID)
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestGetRamenLog(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner")
	other := f.createUser(t, "other")

	log, err := f.logs.Create(owner.ID, RamenLogInput{ShopName: "Afuri"})
	require.NoError(t, err)

	got, err := f.logs.Get(owner.ID, log.ID)
	require.NoError(t, err)
	assert.Equal(t, "Afuri", got.ShopName)

	_, err = f.logs.Get(other.ID, log.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.logs.Get(owner.ID, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRamenLog(t *testing.T) {
	f := newFixture(t)
	owner := f.createUser(t, "owner")
	other := f.createUser(t, "other")

	log, err := f.logs.Create(owner.ID, RamenLogInput{ShopName: "Afuri"})
	require.NoError(t, err)

	assert.ErrorIs(t, f.logs.Delete(other.ID, log.ID), ErrForbidden)
	require.NoError(t, f.logs.Delete(owner.ID, log.ID))
	assert.ErrorIs(t, f.logs.Delete(owner.ID, log.ID), ErrNotFound)
}
