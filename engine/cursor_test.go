package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/strata/dialect"
	"github.com/syssam/strata/dialect/sql"
)

const selectUsers = "SELECT `id`, `name`, `version` FROM `users` WHERE `name` LIKE ?"

func TestSelect(t *testing.T) {
	eng, mock := newEngine(t, dialect.SQLite)
	mock.ExpectQuery(selectUsers).
		WithArgs("a%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "version"}).
			AddRow(int64(1), "a8m", int64(1)).
			AddRow(int64(2), nil, int64(3)).
			AddRow(int64(3), "ariel", int64(1))).
		RowsWillBeClosed()

	cur, err := Select[user](context.Background(), eng, sql.FieldHasPrefix("name", "a"))
	require.NoError(t, err)
	users, err := cur.Collect()
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, user{ID: 1, Name: "a8m", Version: 1}, *users[0])
	assert.Equal(t, user{ID: 2, Version: 3}, *users[1], "NULL columns keep the zero value")
	assert.Equal(t, "ariel", users[2].Name)
	assert.False(t, cur.Next(), "cursor cannot be restarted")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelect_EarlyBreak(t *testing.T) {
	eng, mock := newEngine(t, dialect.SQLite)
	mock.ExpectQuery(selectUsers).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "version"}).
			AddRow(int64(1), "a8m", int64(1)).
			AddRow(int64(2), "ariel", int64(1))).
		RowsWillBeClosed()

	cur, err := Select[user](context.Background(), eng, sql.FieldHasPrefix("name", "a"))
	require.NoError(t, err)
	var seen int
	for u, err := range cur.All() {
		require.NoError(t, err)
		assert.EqualValues(t, 1, u.ID)
		seen++
		break
	}
	assert.Equal(t, 1, seen)
	assert.NoError(t, cur.Close(), "closing twice is a no-op")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelect_UnmappedColumns(t *testing.T) {
	eng, mock := newEngine(t, dialect.SQLite)
	mock.ExpectQuery("SELECT `id`, `name`, `version` FROM `users`").
		WillReturnRows(sqlmock.NewRows([]string{"ID", "extra", "Name"}).
			AddRow(int64(7), "ignored", []byte("a8m")))

	cur, err := Select[user](context.Background(), eng)
	require.NoError(t, err)
	defer cur.Close()
	require.True(t, cur.Next())
	assert.Equal(t, &user{ID: 7, Name: "a8m"}, cur.Entity())
	assert.False(t, cur.Next())
	assert.NoError(t, cur.Err())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSelect_Errors(t *testing.T) {
	eng, mock := newEngine(t, dialect.SQLite)
	mock.ExpectQuery(selectUsers).WillReturnError(errors.New("no such table: users"))
	_, err := Select[user](context.Background(), eng, sql.FieldHasPrefix("name", "a"))
	assert.ErrorContains(t, err, "no such table")

	mock.ExpectQuery(selectUsers).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "version"}).
			AddRow(int64(1), "a8m", int64(1)).
			RowError(0, errors.New("connection reset")))
	cur, err := Select[user](context.Background(), eng, sql.FieldHasPrefix("name", "a"))
	require.NoError(t, err)
	_, err = cur.Collect()
	assert.ErrorContains(t, err, "connection reset")

	type ghost struct{}
	_, err = Select[ghost](context.Background(), eng)
	assert.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestQuery_Tx(t *testing.T) {
	eng, mock := newEngine(t, dialect.SQLite)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT `id`, `title`, `deleted_at` FROM `docs`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "deleted_at"}).AddRow(int64(1), "draft", nil))
	mock.ExpectCommit()

	ctx := context.Background()
	tx, err := eng.Driver().Tx(ctx)
	require.NoError(t, err)
	cur, err := Query[doc](ctx, eng, NewOperation(OpSelect, nil, WithTx(tx), WithDeleted()))
	require.NoError(t, err)
	docs, err := cur.Collect()
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Nil(t, docs[0].DeletedAt)
	require.NoError(t, tx.Commit())
	require.NoError(t, mock.ExpectationsWereMet())
}
