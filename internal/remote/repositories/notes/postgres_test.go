package notes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mynote-app/mynote/internal/common"
	"github.com/mynote-app/mynote/internal/remote/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertQ  = `(?s)^INSERT\s+INTO\s+notes\s*\(id,\s*user_id,\s*title,\s*content,\s*status\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+created_at,\s*updated_at$`
	byUserQ  = `(?s)^SELECT\s+.+\s+FROM\s+notes\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+\(title\s+ILIKE\s+\$2\s+OR\s+content\s+ILIKE\s+\$2\)\s+ORDER\s+BY\s+created_at\s+DESC$`
	allDescQ = `(?s)^SELECT\s+.+\s+FROM\s+notes\s+WHERE\s+title\s+ILIKE\s+\$1\s+OR\s+content\s+ILIKE\s+\$1\s+ORDER\s+BY\s+created_at\s+DESC$`
	allAscQ  = `(?s)^SELECT\s+.+\s+FROM\s+notes\s+WHERE\s+title\s+ILIKE\s+\$1\s+OR\s+content\s+ILIKE\s+\$1\s+ORDER\s+BY\s+created_at\s+ASC$`
	updateQ  = `(?s)^UPDATE\s+notes\s+SET\s+title\s*=\s*\$3,\s*content\s*=\s*\$4,\s*status\s*=\s*\$5,\s*updated_at\s*=\s*now\(\)\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2$`
	deleteQ  = `(?s)^DELETE\s+FROM\s+notes\s+WHERE\s+id\s*=\s*\$1\s+AND\s+user_id\s*=\s*\$2$`
	noteID   = "n-1"
)

var noteCols = []string{"id", "user_id", "title", "content", "status", "created_at", "updated_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	orig := newID
	newID = func() string { return noteID }
	t.Cleanup(func() { newID = orig })

	return NewPostgresRepository(db), mock
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%%", containsPattern(""))
	assert.Equal(t, "%todo%", containsPattern("todo"))
	assert.Equal(t, `%50\% off\_now\\%`, containsPattern(`50% off_now\`))
}

func TestCreate_DefaultsStatus(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	ts := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(insertQ).
		WithArgs(noteID, "u1", "Welcome", "Hello", "Active").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(ts, ts))

	got, err := repo.Create(context.Background(), &models.Note{AccountID: "u1", Title: "Welcome", Content: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, noteID, got.ID)
	assert.Equal(t, models.NoteStatusActive, got.Status)
	assert.Equal(t, ts, got.CreatedAt)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.Note{AccountID: "u1", Title: "t", Content: "c"})
	assert.Regexp(t, `db error: .*db down`, err.Error())
}

func TestListByAccount(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	t1 := time.Date(2025, 5, 2, 15, 30, 0, 0, time.UTC)
	t2 := time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectQuery(byUserQ).WithArgs("u1", "%todo%").WillReturnRows(
		sqlmock.NewRows(noteCols).
			AddRow("n-2", "u1", "Todo List", "groceries", "Active", t1, t1).
			AddRow("n-1", "u1", "Welcome", "todo later", "Active", t2, t2))

	got, err := repo.ListByAccount(context.Background(), "u1", "todo")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "n-2", got[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListByAccount_ScanError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(byUserQ).WillReturnRows(
		sqlmock.NewRows(noteCols).AddRow("n-1", "u1", "t", "c", "Active", "not-a-time", "x"))

	_, err := repo.ListByAccount(context.Background(), "u1", "")
	assert.Error(t, err)
}

func TestListAll_Order(t *testing.T) {
	tests := []struct {
		name        string
		newestFirst bool
		query       string
	}{
		{"newest", true, allDescQ},
		{"oldest", false, allAscQ},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			mock.ExpectQuery(tt.query).WithArgs("%%").WillReturnRows(sqlmock.NewRows(noteCols))

			got, err := repo.ListAll(context.Background(), "", tt.newestFirst)
			require.NoError(t, err)
			assert.Empty(t, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUpdate(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	n := &models.Note{ID: noteID, AccountID: "u1", Title: "t2", Content: "c2", Status: "Active"}

	mock.ExpectExec(updateQ).WithArgs(noteID, "u1", "t2", "c2", "Active").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Update(context.Background(), n))

	mock.ExpectExec(updateQ).WithArgs(noteID, "u1", "t2", "c2", "Active").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Update(context.Background(), n), common.ErrorNotFound)
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(deleteQ).WithArgs(noteID, "u1").WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Delete(context.Background(), noteID, "u1"))

	mock.ExpectExec(deleteQ).WithArgs(noteID, "u2").WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, repo.Delete(context.Background(), noteID, "u2"), common.ErrorNotFound)

	mock.ExpectExec(deleteQ).WillReturnError(errors.New("boom"))
	assert.Regexp(t, `db error: .*boom`, repo.Delete(context.Background(), noteID, "u1").Error())
}
