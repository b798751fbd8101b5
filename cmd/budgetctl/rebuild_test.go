package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"budgetbook/internal/models"
	"budgetbook/internal/services/service_mocks"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRebuildSummaries_AllMonths(t *testing.T) {
	ctrl := gomock.NewController(t)
	summaries := service_mocks.NewMockSummaryServiceInterface(ctrl)

	users := []uuid.UUID{uuid.New(), uuid.New()}
	summaries.EXPECT().RebuildAll(gomock.Any(), users[0]).
		Return([]models.YearMonth{models.MustParseYearMonth("2024-01"), models.MustParseYearMonth("2024-02")}, nil)
	summaries.EXPECT().RebuildAll(gomock.Any(), users[1]).
		Return([]models.YearMonth{models.MustParseYearMonth("2024-03")}, nil)

	report, err := rebuildSummaries(context.Background(), summaries, rebuildOptions{userIDs: users, parallel: 2}, quietLogger())
	require.NoError(t, err)

	var out bytes.Buffer
	report.print(&out)
	assert.Equal(t, "rebuilt 3 months for 2 users\n", out.String())
}

func TestRebuildSummaries_SingleMonth(t *testing.T) {
	ctrl := gomock.NewController(t)
	summaries := service_mocks.NewMockSummaryServiceInterface(ctrl)

	userID := uuid.New()
	ym := models.MustParseYearMonth("2024-03")
	summaries.EXPECT().Recompute(gomock.Any(), userID, ym).Return(models.EmptyMonthlySummary(userID, ym), nil)

	report, err := rebuildSummaries(context.Background(), summaries,
		rebuildOptions{userIDs: []uuid.UUID{userID}, month: &ym, parallel: 1}, quietLogger())
	require.NoError(t, err)
	assert.Equal(t, 1, report.months)
}

func TestRebuildSummaries_ContinuesPastFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	summaries := service_mocks.NewMockSummaryServiceInterface(ctrl)

	bad, good := uuid.New(), uuid.New()
	boom := errors.New("deadlock detected")
	summaries.EXPECT().RebuildAll(gomock.Any(), bad).Return(nil, boom)
	summaries.EXPECT().RebuildAll(gomock.Any(), good).Return([]models.YearMonth{models.MustParseYearMonth("2024-05")}, nil)

	report, err := rebuildSummaries(context.Background(), summaries,
		rebuildOptions{userIDs: []uuid.UUID{bad, good}, parallel: 1}, quietLogger())

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), bad.String())
	assert.Equal(t, 1, report.users)

	var out bytes.Buffer
	report.print(&out)
	assert.Equal(t, "rebuilt 1 months for 1 users, 1 users failed\n", out.String())
}

func TestRebuildSummaries_BoundedParallelism(t *testing.T) {
	ctrl := gomock.NewController(t)
	summaries := service_mocks.NewMockSummaryServiceInterface(ctrl)

	var inFlight, peak int32
	summaries.EXPECT().RebuildAll(gomock.Any(), gomock.Any()).Times(8).
		DoAndReturn(func(context.Context, uuid.UUID) ([]models.YearMonth, error) {
			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
			return nil, nil
		})

	users := make([]uuid.UUID, 8)
	for i := range users {
		users[i] = uuid.New()
	}
	_, err := rebuildSummaries(context.Background(), summaries, rebuildOptions{userIDs: users, parallel: 3}, quietLogger())

	require.NoError(t, err)
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(3))
}

func TestRebuildSummaries_CancelledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	summaries := service_mocks.NewMockSummaryServiceInterface(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rebuildSummaries(ctx, summaries, rebuildOptions{userIDs: []uuid.UUID{uuid.New()}, parallel: 1}, quietLogger())
	assert.ErrorIs(t, err, context.Canceled)
}

func parseRebuildFlags(t *testing.T, args ...string) (rebuildOptions, error) {
	t.Helper()
	cmd := rebuildCmd()
	cmd.RunE = func(*cobra.Command, []string) error { return nil }
	require.NoError(t, cmd.ParseFlags(args))
	return rebuildOptionsFromFlags(cmd)
}

func TestRebuildOptionsFromFlags(t *testing.T) {
	userID := uuid.New()

	opts, err := parseRebuildFlags(t, "--user", userID.String(), "--month", "2024-03", "--parallel", "0")
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{userID}, opts.userIDs)
	require.NotNil(t, opts.month)
	assert.Equal(t, "2024-03", opts.month.String())
	assert.Equal(t, 1, opts.parallel)

	opts, err = parseRebuildFlags(t, "--all")
	require.NoError(t, err)
	assert.True(t, opts.all)
	assert.Nil(t, opts.month)

	_, err = parseRebuildFlags(t, "--user", "not-a-uuid")
	assert.Error(t, err)

	_, err = parseRebuildFlags(t, "--user", userID.String(), "--month", "2024-13")
	assert.Error(t, err)
}
