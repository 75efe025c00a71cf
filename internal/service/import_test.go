package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-insights/internal/common"
	"github.com/Veraticus/spice-insights/internal/model"
)

type staticSource struct {
	err  error
	got  model.DateRange
	txns []model.Transaction
}

func (s *staticSource) Name() string { return "static" }

func (s *staticSource) Fetch(_ context.Context, r model.DateRange) ([]model.Transaction, error) {
	s.got = r
	return s.txns, s.err
}

func TestImport(t *testing.T) {
	store := &fakeStore{}
	src := &staticSource{txns: monthly("Netflix", 15.99, 3)}
	r := model.LastNDays(now, 90)

	result, err := Import(context.Background(), store, src, 5, r)
	require.NoError(t, err)
	assert.Equal(t, "static", result.Source)
	assert.Equal(t, 3, result.Fetched)
	assert.Equal(t, 3, result.New)
	assert.Zero(t, result.Duplicates())
	assert.Equal(t, r, src.got)

	require.Len(t, store.txns, 3)
	for _, tx := range store.txns {
		assert.Equal(t, int64(5), tx.OwnerID)
		assert.Equal(t, tx.GenerateHash(), tx.Hash)
	}
}

func TestImport_Empty(t *testing.T) {
	store := &fakeStore{}
	result, err := Import(context.Background(), store, &staticSource{}, 1, model.DateRange{})
	require.NoError(t, err)
	assert.Zero(t, result.Fetched)
	assert.Empty(t, store.txns)
}

func TestImport_FetchError(t *testing.T) {
	_, err := Import(context.Background(), &fakeStore{}, &staticSource{err: errors.New("offline")}, 1, model.DateRange{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching from static")
}

func TestImport_UsesContextLogger(t *testing.T) {
	var buf bytes.Buffer
	ctx := common.WithLogger(context.Background(), slog.New(slog.NewTextHandler(&buf, nil)))

	_, err := Import(ctx, &fakeStore{}, &staticSource{txns: monthly("Netflix", 15.99, 2)}, 1, model.DateRange{})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Imported transactions")
	assert.Contains(t, buf.String(), "source=static")
}
