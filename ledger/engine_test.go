package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dynastyops/valuekeeper/checksum"
	"github.com/dynastyops/valuekeeper/ledger"
	"github.com/dynastyops/valuekeeper/ledger/mocks"
	"github.com/dynastyops/valuekeeper/logging"
	"github.com/dynastyops/valuekeeper/types"

	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEngine struct {
	*ledger.Engine
	ctrl      *gomock.Controller
	values    *mocks.MockValueSource
	versioned *mocks.MockVersionedStore
	checksums *mocks.MockChecksumStore
}

func getTestEngine(t *testing.T) *testEngine {
	t.Helper()
	ctrl := gomock.NewController(t)
	values := mocks.NewMockValueSource(ctrl)
	versioned := mocks.NewMockVersionedStore(ctrl)
	checksums := mocks.NewMockChecksumStore(ctrl)
	eng := ledger.New(logging.NewTestLogger(), ledger.NewDefaultConfig(), values, versioned, checksums)
	return &testEngine{
		Engine:    eng,
		ctrl:      ctrl,
		values:    values,
		versioned: versioned,
		checksums: checksums,
	}
}

func someValues() []types.ValueRecord {
	return []types.ValueRecord{
		{AssetID: "qb-allen", Scope: types.ScopeDynasty, Value: decimal.NewFromInt(9500), OverallRank: 1, Tier: 1},
		{AssetID: "wr-chase", Scope: types.ScopeDynasty, Value: decimal.NewFromInt(9100), OverallRank: 2, Tier: 1},
	}
}

func TestRecord(t *testing.T) {
	t.Run("records the current value set under a new epoch", testRecordOK)
	t.Run("uses the caller supplied epoch when given", testRecordSuppliedEpoch)
	t.Run("rejects a malformed supplied epoch", testRecordBadEpoch)
	t.Run("read failure is soft, nil result and no error", testRecordReadError)
	t.Run("empty value set is soft, nil result and no error", testRecordEmptySet)
	t.Run("append failure is returned, checksum is not written", testRecordInsertError)
	t.Run("checksum insert failure is returned", testRecordChecksumError)
	t.Run("generated epochs increase across calls", testRecordEpochsIncrease)
}

func testRecordOK(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.ctrl.Finish()
	ctx := context.Background()

	values := someValues()
	eng.values.EXPECT().ReadComputed(gomock.Any()).Times(1).Return(values, nil)

	var gotEntries []types.VersionedValueEntry
	eng.versioned.EXPECT().BulkInsert(gomock.Any(), gomock.Any()).Times(1).
		DoAndReturn(func(_ context.Context, entries []types.VersionedValueEntry) error {
			gotEntries = entries
			return nil
		})
	var gotChecksum types.ChecksumRecord
	eng.checksums.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(1).
		DoAndReturn(func(_ context.Context, rec types.ChecksumRecord) error {
			gotChecksum = rec
			return nil
		})

	res, err := eng.Record(ctx)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 2, res.RowsInserted)
	require.NoError(t, res.Epoch.Validate())
	require.Len(t, gotEntries, 2)
	for i, entry := range gotEntries {
		assert.Equal(t, res.Epoch, entry.Epoch)
		assert.Equal(t, values[i].AssetID, entry.AssetID)
		assert.True(t, values[i].Value.Equal(entry.Value))
	}

	// the digest is reproducible from the written entries alone
	want := checksum.Sum([]checksum.Pair{
		{AssetID: "qb-allen", Value: decimal.NewFromInt(9500)},
		{AssetID: "wr-chase", Value: decimal.NewFromInt(9100)},
	})
	assert.Equal(t, want, res.Checksum)
	assert.Equal(t, want, gotChecksum.Hash)
	assert.Equal(t, res.Epoch, gotChecksum.Epoch)
	assert.Equal(t, 2, gotChecksum.RowCount)
	assert.Equal(t, types.ChecksumKindValues, gotChecksum.Kind)
}

func testRecordSuppliedEpoch(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.ctrl.Finish()

	epoch := types.Epoch("v20260101120000")
	eng.values.EXPECT().ReadComputed(gomock.Any()).Times(1).Return(someValues(), nil)
	eng.versioned.EXPECT().BulkInsert(gomock.Any(), gomock.Any()).Times(1).Return(nil)
	eng.checksums.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(1).Return(nil)

	res, err := eng.Record(context.Background(), epoch)
	require.NoError(t, err)
	require.NotNil(t, res)
	assert.Equal(t, epoch, res.Epoch)
}

func testRecordBadEpoch(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.ctrl.Finish()

	res, err := eng.Record(context.Background(), types.Epoch("not-an-epoch"))
	require.ErrorIs(t, err, types.ErrInvalidEpoch)
	assert.Nil(t, res)
}

func testRecordReadError(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.ctrl.Finish()

	eng.values.EXPECT().ReadComputed(gomock.Any()).Times(1).Return(nil, errors.New("store down"))

	res, err := eng.Record(context.Background())
	require.NoError(t, err)
	assert.Nil(t, res)
}

func testRecordEmptySet(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.ctrl.Finish()

	eng.values.EXPECT().ReadComputed(gomock.Any()).Times(1).Return([]types.ValueRecord{}, nil)

	res, err := eng.Record(context.Background())
	require.NoError(t, err)
	assert.Nil(t, res)
}

func testRecordInsertError(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.ctrl.Finish()

	insertErr := errors.New("bulk insert failed")
	eng.values.EXPECT().ReadComputed(gomock.Any()).Times(1).Return(someValues(), nil)
	eng.versioned.EXPECT().BulkInsert(gomock.Any(), gomock.Any()).Times(1).Return(insertErr)

	res, err := eng.Record(context.Background())
	require.ErrorIs(t, err, insertErr)
	assert.Nil(t, res)
}

func testRecordChecksumError(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.ctrl.Finish()

	checksumErr := errors.New("checksum insert failed")
	eng.values.EXPECT().ReadComputed(gomock.Any()).Times(1).Return(someValues(), nil)
	eng.versioned.EXPECT().BulkInsert(gomock.Any(), gomock.Any()).Times(1).Return(nil)
	eng.checksums.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(1).Return(checksumErr)

	res, err := eng.Record(context.Background())
	require.ErrorIs(t, err, checksumErr)
	assert.Nil(t, res)
}

func testRecordEpochsIncrease(t *testing.T) {
	eng := getTestEngine(t)
	defer eng.ctrl.Finish()

	eng.values.EXPECT().ReadComputed(gomock.Any()).Times(2).Return(someValues(), nil)
	eng.versioned.EXPECT().BulkInsert(gomock.Any(), gomock.Any()).Times(2).Return(nil)
	eng.checksums.EXPECT().Insert(gomock.Any(), gomock.Any()).Times(2).Return(nil)

	first, err := eng.Record(context.Background())
	require.NoError(t, err)
	second, err := eng.Record(context.Background())
	require.NoError(t, err)

	assert.True(t, string(second.Epoch) > string(first.Epoch))
}
