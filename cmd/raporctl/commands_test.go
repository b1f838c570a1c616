package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-rapor-api/internal/dto"
	"github.com/noah-isme/sma-rapor-api/internal/models"
	appErrors "github.com/noah-isme/sma-rapor-api/pkg/errors"
)

type engineStub struct {
	generated dto.GenerateReportCardsRequest
	bulk      dto.BulkPromoteRequest
	actor     string
	locks     []string
}

func (e *engineStub) Generate(ctx context.Context, req dto.GenerateReportCardsRequest, actorID string) (*dto.GenerateReportCardsResponse, error) {
	e.generated = req
	e.actor = actorID
	return &dto.GenerateReportCardsResponse{GeneratedCount: 32}, nil
}

func (e *engineStub) Lock(ctx context.Context, id string) (*dto.ToggleLockResponse, error) {
	e.locks = append(e.locks, "lock:"+id)
	return &dto.ToggleLockResponse{Locked: true}, nil
}

func (e *engineStub) Unlock(ctx context.Context, id string) (*dto.ToggleLockResponse, error) {
	if id == "missing" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "report card not found")
	}
	e.locks = append(e.locks, "unlock:"+id)
	return &dto.ToggleLockResponse{Locked: false}, nil
}

func (e *engineStub) BulkPromote(ctx context.Context, req dto.BulkPromoteRequest, actorID string) (*dto.PromotionResult, error) {
	e.bulk = req
	e.actor = actorID
	return &dto.PromotionResult{Processed: 30, Skipped: 2}, nil
}

func (e *engineStub) ActiveTerm(ctx context.Context) (*models.Term, error) {
	return &models.Term{ID: "term-1", Name: "Ganjil 2024/2025", IsActive: true}, nil
}

func run(t *testing.T, eng engine, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd(&cli{eng: eng})
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGenerateCommand(t *testing.T) {
	eng := &engineStub{}
	out, err := run(t, eng, "generate", "--class-group", "cg-1", "--term", "term-1", "--actor", "usr-9")
	require.NoError(t, err)
	assert.Equal(t, dto.GenerateReportCardsRequest{ClassGroupID: "cg-1", TermID: "term-1"}, eng.generated)
	assert.Equal(t, "usr-9", eng.actor)
	assert.Contains(t, out, `"generated_count": 32`)
}

func TestGenerateCommandRequiresFlags(t *testing.T) {
	_, err := run(t, &engineStub{}, "generate", "--class-group", "cg-1")
	require.Error(t, err)
}

func TestLockCommands(t *testing.T) {
	eng := &engineStub{}
	_, err := run(t, eng, "lock", "--id", "rc-1")
	require.NoError(t, err)
	out, err := run(t, eng, "unlock", "--id", "rc-1")
	require.NoError(t, err)
	assert.Contains(t, out, `"locked": false`)
	assert.Equal(t, []string{"lock:rc-1", "unlock:rc-1"}, eng.locks)

	_, err = run(t, eng, "unlock", "--id", "missing")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBulkPromoteCommand(t *testing.T) {
	eng := &engineStub{}
	out, err := run(t, eng, "bulk-promote", "--class-group", "cg-1", "--status", "promoted", "--target", "cg-2")
	require.NoError(t, err)
	assert.Equal(t, "promoted", eng.bulk.Status)
	require.NotNil(t, eng.bulk.TargetClassGroupID)
	assert.Equal(t, "cg-2", *eng.bulk.TargetClassGroupID)
	assert.Contains(t, out, `"skipped": 2`)

	_, err = run(t, eng, "bulk-promote", "--class-group", "cg-1", "--status", "graduated")
	require.NoError(t, err)
	assert.Nil(t, eng.bulk.TargetClassGroupID)
}

func TestActiveTermCommand(t *testing.T) {
	out, err := run(t, &engineStub{}, "active-term")
	require.NoError(t, err)
	assert.Contains(t, out, `"id": "term-1"`)
}

func TestExecuteClosesAfterFailure(t *testing.T) {
	closed := 0
	state := &cli{eng: &engineStub{}, closers: []func() error{func() error {
		closed++
		return nil
	}}}

	err := execute(state, []string{"unlock", "--id", "missing"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Equal(t, 1, closed)
	assert.Empty(t, state.closers)
}

func TestExecuteReportsCloseError(t *testing.T) {
	state := &cli{eng: &engineStub{}, closers: []func() error{func() error { return errors.New("close db: broken pipe") }}}

	err := execute(state, []string{"active-term"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")
}
