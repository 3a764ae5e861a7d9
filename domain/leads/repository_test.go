package leads

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getcalls/website/internal/testutil"
	"github.com/getcalls/website/pkg/apperror"
)

func TestRepository_ListAndCount(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(testutil.NewDB(t), testutil.DiscardLogger())

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, st := range []Status{StatusSent, StatusFailed, StatusSent} {
		require.NoError(t, repo.Insert(ctx, &Lead{
			ID:           string(rune('a' + i)),
			Name:         "Lead",
			Phone:        "9876543210",
			Email:        "lead@example.com",
			BusinessType: "other",
			Message:      "hello there",
			Plan:         DefaultPlan,
			Status:       st,
			CreatedAt:    base.Add(time.Duration(i) * time.Minute),
			UpdatedAt:    base,
		}))
	}

	all, err := repo.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].ID, "newest first")

	sent, err := repo.List(ctx, StatusSent, 1)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	assert.Equal(t, "c", sent[0].ID)

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[Status]int{StatusSent: 2, StatusFailed: 1}, counts)

	require.NoError(t, repo.UpdateStatus(ctx, "b", StatusSent, "mailgun", ""))
	b, err := repo.Get(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, StatusSent, b.Status)
	assert.Equal(t, "mailgun", b.Provider)
}

func TestRepository_GetMissing(t *testing.T) {
	repo := NewRepository(testutil.NewDB(t), testutil.DiscardLogger())

	_, err := repo.Get(context.Background(), "nope")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
