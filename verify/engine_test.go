package verify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dynastyops/valuekeeper/checksum"
	"github.com/dynastyops/valuekeeper/logging"
	"github.com/dynastyops/valuekeeper/types"
	"github.com/dynastyops/valuekeeper/verify"
	"github.com/dynastyops/valuekeeper/verify/mocks"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	epochOne = types.Epoch("v20260831120000")
	epochTwo = types.Epoch("v20260831130000")
)

type testEngine struct {
	*verify.Engine
	ctrl      *gomock.Controller
	versioned *mocks.MockVersionedStore
	checksums *mocks.MockChecksumStore
}

func getTestEngine(t *testing.T) *testEngine {
	t.Helper()
	ctrl := gomock.NewController(t)
	versioned := mocks.NewMockVersionedStore(ctrl)
	checksums := mocks.NewMockChecksumStore(ctrl)
	eng := verify.New(logging.NewTestLogger(), verify.NewDefaultConfig(), versioned, checksums)
	return &testEngine{
		Engine:    eng,
		ctrl:      ctrl,
		versioned: versioned,
		checksums: checksums,
	}
}

func entriesFor(epoch types.Epoch, values map[string]int64) []types.VersionedValueEntry {
	entries := make([]types.VersionedValueEntry, 0, len(values))
	for id, v := range values {
		entries = append(entries, types.VersionedValueEntry{
			Epoch:   epoch,
			AssetID: id,
			Scope:   types.ScopeDynasty,
			Value:   decimal.NewFromInt(v),
		})
	}
	return entries
}

func checksumFor(entries []types.VersionedValueEntry) string {
	pairs := make([]checksum.Pair, 0, len(entries))
	for _, en := range entries {
		pairs = append(pairs, checksum.Pair{AssetID: en.AssetID, Value: en.Value})
	}
	return checksum.Sum(pairs)
}

func TestVerifyChecksum(t *testing.T) {
	t.Run("matching digest verifies", testVerifyOK)
	t.Run("missing checksum record is not verified", testVerifyMissingRecord)
	t.Run("mutated entries fail verification", testVerifyMismatch)
	t.Run("rejects a malformed epoch", testVerifyBadEpoch)
	t.Run("store failure is returned", testVerifyStoreError)
}

func testVerifyOK(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	entries := entriesFor(epochOne, map[string]int64{"qb-allen": 9500, "wr-chase": 9100})
	rec := &types.ChecksumRecord{
		Kind:  types.ChecksumKindValues,
		Epoch: epochOne,
		Hash:  checksumFor(entries),
	}

	te.checksums.EXPECT().GetByEpoch(gomock.Any(), epochOne).Return(rec, nil)
	te.versioned.EXPECT().ReadByEpoch(gomock.Any(), epochOne).Return(entries, nil)

	ok, err := te.VerifyChecksum(context.Background(), epochOne)
	require.NoError(t, err)
	assert.True(t, ok)
}

func testVerifyMissingRecord(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	te.checksums.EXPECT().GetByEpoch(gomock.Any(), epochOne).Return(nil, nil)

	ok, err := te.VerifyChecksum(context.Background(), epochOne)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testVerifyMismatch(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	entries := entriesFor(epochOne, map[string]int64{"qb-allen": 9500, "wr-chase": 9100})
	rec := &types.ChecksumRecord{
		Kind:  types.ChecksumKindValues,
		Epoch: epochOne,
		Hash:  checksumFor(entries),
	}

	// one row tampered with after the record was written
	entries[0].Value = entries[0].Value.Add(decimal.NewFromInt(1))

	te.checksums.EXPECT().GetByEpoch(gomock.Any(), epochOne).Return(rec, nil)
	te.versioned.EXPECT().ReadByEpoch(gomock.Any(), epochOne).Return(entries, nil)

	ok, err := te.VerifyChecksum(context.Background(), epochOne)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testVerifyBadEpoch(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	ok, err := te.VerifyChecksum(context.Background(), "not-an-epoch")
	require.ErrorIs(t, err, types.ErrInvalidEpoch)
	assert.False(t, ok)
}

func testVerifyStoreError(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	boom := errors.New("connection reset")
	te.checksums.EXPECT().GetByEpoch(gomock.Any(), epochOne).Return(nil, boom)

	ok, err := te.VerifyChecksum(context.Background(), epochOne)
	require.ErrorIs(t, err, boom)
	assert.False(t, ok)
}

func TestCompareEpochs(t *testing.T) {
	t.Run("classifies changed rows with their delta", testCompareChanged)
	t.Run("classifies added and removed rows", testCompareAddedRemoved)
	t.Run("change detail is sorted by magnitude and capped", testCompareSortedCapped)
	t.Run("rejects a malformed epoch", testCompareBadEpoch)
}

func testCompareChanged(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	te.versioned.EXPECT().ReadByEpoch(gomock.Any(), epochOne).
		Return(entriesFor(epochOne, map[string]int64{"A": 100, "B": 200}), nil)
	te.versioned.EXPECT().ReadByEpoch(gomock.Any(), epochTwo).
		Return(entriesFor(epochTwo, map[string]int64{"A": 150, "B": 200}), nil)

	cmp, err := te.CompareEpochs(context.Background(), epochOne, epochTwo)
	require.NoError(t, err)

	assert.Equal(t, 1, cmp.Changed)
	assert.Equal(t, 0, cmp.Added)
	assert.Equal(t, 0, cmp.Removed)
	assert.Equal(t, 1, cmp.Unchanged)

	require.Len(t, cmp.Changes, 1)
	change := cmp.Changes[0]
	assert.Equal(t, "A", change.AssetID)
	assert.True(t, change.OldValue.Equal(decimal.NewFromInt(100)))
	assert.True(t, change.NewValue.Equal(decimal.NewFromInt(150)))
	assert.True(t, change.Change.Equal(decimal.NewFromInt(50)))
}

func testCompareAddedRemoved(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	te.versioned.EXPECT().ReadByEpoch(gomock.Any(), epochOne).
		Return(entriesFor(epochOne, map[string]int64{"A": 100, "B": 200}), nil)
	te.versioned.EXPECT().ReadByEpoch(gomock.Any(), epochTwo).
		Return(entriesFor(epochTwo, map[string]int64{"B": 200, "C": 300}), nil)

	cmp, err := te.CompareEpochs(context.Background(), epochOne, epochTwo)
	require.NoError(t, err)

	assert.Equal(t, 1, cmp.Added)
	assert.Equal(t, 1, cmp.Removed)
	assert.Equal(t, 0, cmp.Changed)
	assert.Equal(t, 1, cmp.Unchanged)
	assert.Empty(t, cmp.Changes)
}

func testCompareSortedCapped(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	before := map[string]int64{}
	after := map[string]int64{}
	for i := 0; i < 150; i++ {
		id := string(rune('a'+i%26)) + string(rune('a'+i/26))
		before[id] = 1000
		// deltas spread from +1 up to -150, mixed signs
		if i%2 == 0 {
			after[id] = 1000 + int64(i+1)
		} else {
			after[id] = 1000 - int64(i+1)
		}
	}

	te.versioned.EXPECT().ReadByEpoch(gomock.Any(), epochOne).
		Return(entriesFor(epochOne, before), nil)
	te.versioned.EXPECT().ReadByEpoch(gomock.Any(), epochTwo).
		Return(entriesFor(epochTwo, after), nil)

	cmp, err := te.CompareEpochs(context.Background(), epochOne, epochTwo)
	require.NoError(t, err)

	assert.Equal(t, 150, cmp.Changed)
	require.Len(t, cmp.Changes, 100)
	for i := 1; i < len(cmp.Changes); i++ {
		prev := cmp.Changes[i-1].Change.Abs()
		cur := cmp.Changes[i].Change.Abs()
		assert.True(t, prev.GreaterThanOrEqual(cur), "changes not sorted at %d", i)
	}
	// the biggest absolute move leads
	assert.True(t, cmp.Changes[0].Change.Abs().Equal(decimal.NewFromInt(150)))
}

func testCompareBadEpoch(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	cmp, err := te.CompareEpochs(context.Background(), epochOne, "later")
	require.ErrorIs(t, err, types.ErrInvalidEpoch)
	assert.Nil(t, cmp)
}

func TestVolatility(t *testing.T) {
	t.Run("reports rise, fall and mean step", testVolatilityOK)
	t.Run("short history yields a zeroed report", testVolatilityShortHistory)
	t.Run("zero window falls back to the configured default", testVolatilityDefaultWindow)
}

func historyFor(assetID string, values ...int64) []types.VersionedValueEntry {
	entries := make([]types.VersionedValueEntry, 0, len(values))
	for i, v := range values {
		entries = append(entries, types.VersionedValueEntry{
			Epoch:   types.Epoch("v2026083100000" + string(rune('0'+i))),
			AssetID: assetID,
			Scope:   types.ScopeDynasty,
			Value:   decimal.NewFromInt(v),
		})
	}
	return entries
}

func testVolatilityOK(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	// steps: +100, -40, +10
	history := historyFor("qb-allen", 1000, 1100, 1060, 1070)
	te.versioned.EXPECT().ReadAssetHistory(gomock.Any(), "qb-allen", types.ScopeDynasty, 4).
		Return(history, nil)

	report, err := te.Volatility(context.Background(), "qb-allen", types.ScopeDynasty, 4)
	require.NoError(t, err)

	assert.Equal(t, 4, report.Epochs)
	assert.True(t, report.MaxRise.Equal(decimal.NewFromInt(100)))
	assert.True(t, report.MaxFall.Equal(decimal.NewFromInt(40)))
	assert.True(t, report.Volatility.Equal(decimal.NewFromInt(50)))
}

func testVolatilityShortHistory(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	te.versioned.EXPECT().ReadAssetHistory(gomock.Any(), "qb-allen", types.ScopeDynasty, 5).
		Return(historyFor("qb-allen", 1000), nil)

	report, err := te.Volatility(context.Background(), "qb-allen", types.ScopeDynasty, 5)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Epochs)
	assert.True(t, report.MaxRise.IsZero())
	assert.True(t, report.MaxFall.IsZero())
	assert.True(t, report.Volatility.IsZero())
}

func testVolatilityDefaultWindow(t *testing.T) {
	te := getTestEngine(t)
	defer te.ctrl.Finish()

	// NewDefaultConfig sets the window to 30
	te.versioned.EXPECT().ReadAssetHistory(gomock.Any(), "qb-allen", types.ScopeDynasty, 30).
		Return(nil, nil)

	report, err := te.Volatility(context.Background(), "qb-allen", types.ScopeDynasty, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Epochs)
}
