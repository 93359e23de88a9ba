package postgres

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/up2d8/pipeline/internal/pipeline"
)

func TestListSubscribers(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewSubscriberStore(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, topics FROM subscribers").
		WillReturnRows(pgxmock.NewRows([]string{"id", "topics"}).
			AddRow("u1", []string{"AI", "X"}).
			AddRow("u2", []string{"AI", "Y"}))

	subs, err := store.ListSubscribers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []pipeline.Subscriber{
		{ID: "u1", Topics: []string{"AI", "X"}},
		{ID: "u2", Topics: []string{"AI", "Y"}},
	}, subs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListSubscribersEmpty(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewSubscriberStore(mock)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT id, topics FROM subscribers").
		WillReturnRows(pgxmock.NewRows([]string{"id", "topics"}))

	subs, err := store.ListSubscribers(context.Background())
	require.NoError(t, err)
	assert.Empty(t, subs)
}
