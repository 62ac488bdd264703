package snapshot_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dynastyops/valuekeeper/logging"
	"github.com/dynastyops/valuekeeper/snapshot"
	"github.com/dynastyops/valuekeeper/snapshot/mocks"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEngine struct {
	*snapshot.Engine
	ctrl     *gomock.Controller
	values   *mocks.MockValueSource
	registry *mocks.MockRegistrySource
	profiles *mocks.MockProfileSource
	store    *mocks.MockStore
}

func getTestEngine(t *testing.T) *testEngine {
	t.Helper()
	ctrl := gomock.NewController(t)
	values := mocks.NewMockValueSource(ctrl)
	registry := mocks.NewMockRegistrySource(ctrl)
	profiles := mocks.NewMockProfileSource(ctrl)
	store := mocks.NewMockStore(ctrl)
	eng := snapshot.New(logging.NewTestLogger(), snapshot.NewDefaultConfig(), values, registry, profiles, store)
	return &testEngine{
		Engine:   eng,
		ctrl:     ctrl,
		values:   values,
		registry: registry,
		profiles: profiles,
		store:    store,
	}
}

func someValues() []types.ValueRecord {
	return []types.ValueRecord{
		{AssetID: "qb-allen", Scope: types.ScopeDynasty, Value: decimal.NewFromInt(9500), OverallRank: 1},
		{AssetID: "wr-chase", Scope: types.ScopeDynasty, Value: decimal.NewFromInt(9100), OverallRank: 2},
	}
}

func somePlayers() []types.Player {
	return []types.Player{
		{AssetID: "qb-allen", Name: "Josh Allen", Position: "QB", Team: "BUF"},
	}
}

func someProfiles() []types.LeagueProfile {
	return []types.LeagueProfile{
		{LeagueID: "lg-1", Name: "Main Dynasty", Format: types.FormatSuperflex},
	}
}

// expectNoCleanupWork lets Create's trailing cleanup pass through without
// deleting anything.
func (te *testEngine) expectNoCleanupWork() {
	te.store.EXPECT().DeleteExpired(gomock.Any()).Return(int64(0), nil)
	te.store.EXPECT().List(gomock.Any(), gomock.Any(), 0).Return(nil, nil)
}

func TestCreate(t *testing.T) {
	t.Run("full snapshot captures every section", testCreateFull)
	t.Run("typed snapshot captures only its section", testCreateValuesOnly)
	t.Run("expiry follows the per type retention window", testCreateExpiry)
	t.Run("rejects an unknown snapshot type", testCreateUnknownType)
	t.Run("rejects a malformed epoch tag", testCreateBadEpoch)
	t.Run("source read failure aborts the capture", testCreateReadError)
	t.Run("insert failure aborts the capture", testCreateInsertError)
	t.Run("cleanup failure does not fail the capture", testCreateCleanupSoft)
}

func testCreateFull(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	te.values.EXPECT().ReadAll(gomock.Any()).Return(someValues(), nil)
	te.registry.EXPECT().ReadAll(gomock.Any()).Return(somePlayers(), nil)
	te.profiles.EXPECT().ReadAll(gomock.Any()).Return(someProfiles(), nil)

	var stored types.Snapshot
	te.store.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, snap types.Snapshot) error {
			stored = snap
			return nil
		})
	te.expectNoCleanupWork()

	snap, err := te.Create(context.Background(), types.SnapshotTypeFull, "v20260831120000")
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.Equal(t, stored.ID, snap.ID)
	assert.NotEmpty(t, snap.ID)
	assert.Equal(t, types.SnapshotTypeFull, snap.Type)
	assert.Equal(t, types.Epoch("v20260831120000"), snap.Epoch)
	assert.Len(t, snap.Payload.Values, 2)
	assert.Len(t, snap.Payload.Players, 1)
	assert.Len(t, snap.Payload.Profiles, 1)
	assert.Equal(t, map[string]int{"values": 2, "registry": 1, "profiles": 1}, snap.Stats)
	assert.Greater(t, snap.Size, 0)
}

func testCreateValuesOnly(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	// registry and profile sources must not be touched
	te.values.EXPECT().ReadAll(gomock.Any()).Return(someValues(), nil)
	te.store.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
	te.expectNoCleanupWork()

	snap, err := te.Create(context.Background(), types.SnapshotTypeValues, "")
	require.NoError(t, err)
	require.NotNil(t, snap)

	assert.Len(t, snap.Payload.Values, 2)
	assert.Nil(t, snap.Payload.Players)
	assert.Nil(t, snap.Payload.Profiles)
	assert.Equal(t, map[string]int{"values": 2}, snap.Stats)
	assert.Equal(t, types.Epoch(""), snap.Epoch)
}

func testCreateExpiry(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	te.values.EXPECT().ReadAll(gomock.Any()).Return(someValues(), nil)
	te.store.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
	te.expectNoCleanupWork()

	snap, err := te.Create(context.Background(), types.SnapshotTypeValues, "")
	require.NoError(t, err)
	require.NotNil(t, snap)

	// value snapshots default to a 30 day window
	assert.Equal(t, 30*24*time.Hour, snap.ExpiresAt.Sub(snap.CreatedAt))
	assert.False(t, snap.Expired(snap.CreatedAt))
	assert.True(t, snap.Expired(snap.CreatedAt.Add(31*24*time.Hour)))
}

func testCreateUnknownType(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	snap, err := te.Create(context.Background(), types.SnapshotType("weekly"), "")
	require.ErrorIs(t, err, types.ErrUnknownSnapshotType)
	assert.Nil(t, snap)
}

func testCreateBadEpoch(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	snap, err := te.Create(context.Background(), types.SnapshotTypeFull, "20260831120000")
	require.ErrorIs(t, err, types.ErrInvalidEpoch)
	assert.Nil(t, snap)
}

func testCreateReadError(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	boom := errors.New("registry unavailable")
	te.values.EXPECT().ReadAll(gomock.Any()).Return(someValues(), nil)
	te.registry.EXPECT().ReadAll(gomock.Any()).Return(nil, boom)

	snap, err := te.Create(context.Background(), types.SnapshotTypeFull, "")
	require.ErrorIs(t, err, boom)
	assert.Nil(t, snap)
}

func testCreateInsertError(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	boom := errors.New("insert failed")
	te.values.EXPECT().ReadAll(gomock.Any()).Return(someValues(), nil)
	te.store.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(boom)

	snap, err := te.Create(context.Background(), types.SnapshotTypeValues, "")
	require.ErrorIs(t, err, boom)
	assert.Nil(t, snap)
}

func testCreateCleanupSoft(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	te.values.EXPECT().ReadAll(gomock.Any()).Return(someValues(), nil)
	te.store.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
	te.store.EXPECT().DeleteExpired(gomock.Any()).Return(int64(0), errors.New("sweep failed"))

	snap, err := te.Create(context.Background(), types.SnapshotTypeValues, "")
	require.NoError(t, err)
	assert.NotNil(t, snap)
}

func TestCleanupOld(t *testing.T) {
	t.Run("removes expired snapshots", testCleanupExpired)
	t.Run("trims beyond the keep count, newest kept", testCleanupKeepCount)
	t.Run("keeps everything under the keep count", testCleanupUnderKeepCount)
	t.Run("rejects an unknown snapshot type", testCleanupUnknownType)
}

func listOfSnapshots(n int, snapshotType types.SnapshotType) []types.Snapshot {
	now := time.Now()
	snaps := make([]types.Snapshot, 0, n)
	// newest first, matching store ordering
	for i := 0; i < n; i++ {
		snaps = append(snaps, types.Snapshot{
			ID:        string(rune('a' + i)),
			Type:      snapshotType,
			CreatedAt: now.Add(-time.Duration(i) * time.Hour),
		})
	}
	return snaps
}

func testCleanupExpired(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	te.store.EXPECT().DeleteExpired(gomock.Any()).Return(int64(3), nil)
	te.store.EXPECT().List(gomock.Any(), gomock.Any(), 0).Return(nil, nil)

	require.NoError(t, te.CleanupOld(context.Background(), types.SnapshotTypeFull))
}

func testCleanupKeepCount(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	cfg := snapshot.NewDefaultConfig()
	cfg.KeepFull = 3
	te.ReloadConf(cfg)

	snaps := listOfSnapshots(5, types.SnapshotTypeFull)
	te.store.EXPECT().DeleteExpired(gomock.Any()).Return(int64(0), nil)
	te.store.EXPECT().List(gomock.Any(), gomock.Any(), 0).Return(snaps, nil)

	var deleted []string
	te.store.EXPECT().DeleteByIDs(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, ids []string) (int64, error) {
			deleted = ids
			return int64(len(ids)), nil
		})

	require.NoError(t, te.CleanupOld(context.Background(), types.SnapshotTypeFull))

	// the two oldest go, the three newest stay
	assert.Equal(t, []string{snaps[3].ID, snaps[4].ID}, deleted)
}

func testCleanupUnderKeepCount(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	snaps := listOfSnapshots(5, types.SnapshotTypeFull)
	te.store.EXPECT().DeleteExpired(gomock.Any()).Return(int64(0), nil)
	te.store.EXPECT().List(gomock.Any(), gomock.Any(), 0).Return(snaps, nil)

	require.NoError(t, te.CleanupOld(context.Background(), types.SnapshotTypeFull))
}

func testCleanupUnknownType(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	err := te.CleanupOld(context.Background(), types.SnapshotType("hourly"))
	require.ErrorIs(t, err, types.ErrUnknownSnapshotType)
}

func TestLatest(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	full := types.SnapshotTypeFull
	snaps := listOfSnapshots(1, full)
	te.store.EXPECT().List(gomock.Any(), &full, 1).Return(snaps, nil)

	snap, err := te.Latest(context.Background(), &full)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, snaps[0].ID, snap.ID)

	te.store.EXPECT().List(gomock.Any(), &full, 1).Return(nil, nil)
	snap, err = te.Latest(context.Background(), &full)
	require.NoError(t, err)
	assert.Nil(t, snap)
}
