package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-rapor-api/internal/models"
)

func TestCacheServiceDisabled(t *testing.T) {
	svc := NewCacheService(&cacheRepoStub{}, nil, time.Minute, nil, false)
	hit, err := svc.Get(context.Background(), "k", &[]models.ReportCardDetail{})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, svc.Set(context.Background(), "k", "v", 0))
}

func TestCacheServiceHitAndMiss(t *testing.T) {
	repo := &cacheRepoStub{}
	svc := NewCacheService(repo, NewMetricsService(), time.Minute, nil, true)
	ctx := context.Background()

	var dest []models.ReportCardDetail
	hit, err := svc.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "k", []models.ReportCardDetail{{StudentName: "Ani"}}, 0))
	hit, err = svc.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	require.Len(t, dest, 1)

	require.NoError(t, svc.Invalidate(ctx, "report_cards:list:*"))
	assert.Equal(t, []string{"report_cards:list:*"}, repo.deleted)
}
