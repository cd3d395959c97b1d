package economy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmikhr/coinpurse-bot/internal/catalog"
	apperrors "github.com/dmikhr/coinpurse-bot/internal/errors"
)

func TestListJobs_DefaultCatalogOrder(t *testing.T) {
	engine := testEngine(newFakeStore(), &scriptSource{})

	assert.Equal(t, []string{"miner", "farmer", "programmer", "cashier"}, engine.ListJobs())
}

func TestChooseJob(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name         string
		job          string
		expectedKind apperrors.Kind
	}{
		{name: "valid job", job: "miner"},
		{name: "unknown job", job: "astronaut", expectedKind: apperrors.KindInvalidJob},
		{name: "empty job", job: "", expectedKind: apperrors.KindInvalidJob},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := newFakeStore()
			engine := testEngine(store, &scriptSource{})

			result, err := engine.ChooseJob(ctx, "42", tc.job)
			if tc.expectedKind != "" {
				require.Error(t, err)
				assert.Equal(t, tc.expectedKind, apperrors.KindOf(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.job, result.Job)
			assert.Equal(t, 1, result.JobLevel)
		})
	}
}

func TestChooseJob_SwitchingResetsLevel(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := testEngine(store, &scriptSource{})

	_, err := engine.ChooseJob(ctx, "42", "miner")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = engine.Promote(ctx, "42")
		require.NoError(t, err)
	}
	assert.Equal(t, 4, store.saved("42").JobLevel)

	result, err := engine.ChooseJob(ctx, "42", "farmer")
	require.NoError(t, err)
	assert.Equal(t, "farmer", result.Job)
	assert.Equal(t, 1, result.JobLevel)
}

func TestPromote(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	engine := testEngine(store, &scriptSource{})

	_, err := engine.Promote(ctx, "42")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNoJob, apperrors.KindOf(err))

	_, err = engine.ChooseJob(ctx, "42", "cashier")
	require.NoError(t, err)

	result, err := engine.Promote(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, 2, result.JobLevel)

	result, err = engine.Promote(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, 3, result.JobLevel)
}

func TestWork_EarningsScaleWithLevel(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	src := &scriptSource{ints: []int64{80, 80}}
	engine := testEngine(store, src)

	_, err := engine.ChooseJob(ctx, "42", "programmer")
	require.NoError(t, err)

	result, err := engine.Work(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, int64(80), result.Earnings)
	assert.Equal(t, int64(180), result.Wallet)

	_, err = engine.Promote(ctx, "42")
	require.NoError(t, err)

	result, err = engine.Work(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, int64(160), result.Earnings)
	assert.Equal(t, int64(340), result.Wallet)
}

func TestWork_RequiresJob(t *testing.T) {
	engine := testEngine(newFakeStore(), &scriptSource{})

	_, err := engine.Work(context.Background(), "42")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindNoJob, apperrors.KindOf(err))
}

func TestWork_JobRemovedFromCatalog(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	cat := catalog.New([]catalog.JobSpec{{Name: "miner", Low: 50, High: 100}}, nil)
	engine := NewEngine(store, cat, testLogger(), WithSource(&scriptSource{}), WithClock(testClock))

	_, err := engine.ChooseJob(ctx, "42", "miner")
	require.NoError(t, err)

	cat.Replace(nil, nil)

	_, err = engine.Work(ctx, "42")
	require.Error(t, err)
	assert.Equal(t, apperrors.KindInvalidJob, apperrors.KindOf(err))
}
