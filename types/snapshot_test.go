package types_test

import (
	"testing"
	"time"

	"github.com/dynastyops/valuekeeper/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotType(t *testing.T) {
	t.Run("single section types cover one section", func(t *testing.T) {
		assert.Equal(t, []types.Section{types.SectionValues}, types.SnapshotTypeValues.Sections())
		assert.Equal(t, []types.Section{types.SectionRegistry}, types.SnapshotTypeRegistry.Sections())
		assert.Equal(t, []types.Section{types.SectionProfiles}, types.SnapshotTypeProfiles.Sections())
	})

	t.Run("full covers every section in restore order", func(t *testing.T) {
		assert.Equal(t,
			[]types.Section{types.SectionValues, types.SectionRegistry, types.SectionProfiles},
			types.SnapshotTypeFull.Sections())
	})

	t.Run("unknown types fail validation", func(t *testing.T) {
		_, err := types.ParseSnapshotType("everything")
		require.ErrorIs(t, err, types.ErrUnknownSnapshotType)
		require.NoError(t, types.SnapshotTypeFull.Validate())
	})

	t.Run("includes", func(t *testing.T) {
		assert.True(t, types.SnapshotTypeFull.Includes(types.SectionProfiles))
		assert.True(t, types.SnapshotTypeValues.Includes(types.SectionValues))
		assert.False(t, types.SnapshotTypeValues.Includes(types.SectionRegistry))
	})
}

func TestSnapshotExpiry(t *testing.T) {
	now := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	snap := types.Snapshot{ExpiresAt: now.Add(time.Hour)}
	assert.False(t, snap.Expired(now))
	assert.True(t, snap.Expired(now.Add(2*time.Hour)))
}

func TestSnapshotPayloadRows(t *testing.T) {
	p := types.SnapshotPayload{
		Values:  []types.ValueRecord{{AssetID: "a"}, {AssetID: "b"}},
		Players: []types.Player{{AssetID: "a"}},
	}
	assert.Equal(t, 2, p.Rows(types.SectionValues))
	assert.Equal(t, 1, p.Rows(types.SectionRegistry))
	assert.Equal(t, 0, p.Rows(types.SectionProfiles))
}
