package sessions

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/huntplanur/internal/common"
	"github.com/dmitrijs2005/huntplanur/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

var sessionCols = []string{"id", "code", "owner_id", "name", "place_name", "latitude", "longitude", "is_active", "created_at", "ended_at"}

var summaryCols = append(append([]string{}, sessionCols...), "username", "total", "active", "caller_active")

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	q := `(?s)^INSERT\s+INTO\s+sessions\s*\(id,\s*code,\s*owner_id,\s*name,\s*place_name,\s*latitude,\s*longitude\)\s*VALUES\s*\(\$1,.*\$7\)\s*RETURNING\s+is_active,\s*created_at$`
	lat, lon := 56.95, 24.1
	now := time.Now()
	mock.ExpectQuery(q).
		WithArgs("s-1", "ABC123", "u-1", "Hunt1", "Riga", lat, lon).
		WillReturnRows(sqlmock.NewRows([]string{"is_active", "created_at"}).AddRow(true, now))

	s, err := repo.Create(context.Background(), &models.Session{
		ID: "s-1", Code: "ABC123", OwnerID: "u-1", Name: "Hunt1", PlaceName: "Riga", Latitude: &lat, Longitude: &lon,
	})
	require.NoError(t, err)
	assert.True(t, s.IsActive)
	assert.Equal(t, now, s.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCodeExists(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+sessions\s+WHERE\s+code\s*=\s*\$1\)$`).
		WithArgs("ABC123").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.CodeExists(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLockByCode_UsesForUpdate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	ended := time.Now()
	mock.ExpectQuery(`(?s)^SELECT\s+id,.*FROM\s+sessions\s+WHERE\s+code\s*=\s*\$1\s+FOR\s+UPDATE$`).
		WithArgs("ABC123").
		WillReturnRows(sqlmock.NewRows(sessionCols).
			AddRow("s-1", "ABC123", "u-1", "Hunt1", nil, nil, nil, false, time.Now(), ended))

	s, err := repo.LockByCode(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.False(t, s.IsActive)
	assert.Empty(t, s.PlaceName)
	assert.Nil(t, s.Latitude)
	require.NotNil(t, s.EndedAt)
	assert.Equal(t, ended, *s.EndedAt)
}

func TestShareLockByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)WHERE\s+id\s*=\s*\$1\s+FOR\s+SHARE$`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.ShareLockByID(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByCode_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`WHERE\s+code\s*=\s*\$1$`).WillReturnError(errors.New("conn reset"))

	_, err := repo.GetByCode(context.Background(), "ABC123")
	require.Error(t, err)
	assert.Regexp(t, regexp.MustCompile(`db error: .*conn reset`), err.Error())
}

func TestEnd_OnlyActiveRows(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	at := time.Now()
	mock.ExpectExec(`(?s)^UPDATE\s+sessions\s+SET\s+is_active\s*=\s*FALSE,\s*ended_at\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1\s+AND\s+is_active$`).
		WithArgs("s-1", at).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.End(context.Background(), "s-1", at))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRename(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)^UPDATE\s+sessions\s+SET\s+name\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("s-1", "Evening hunt").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Rename(context.Background(), "s-1", "Evening hunt"))
}

func TestSummary_AnonymousCaller(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)COUNT\(DISTINCT\s+COALESCE\(p\.user_id::text,\s*'guest:'\s*\|\|\s*p\.guest_name\)\).*WHERE\s+s\.code\s*=\s*\$2$`).
		WithArgs(nil, "ABC123").
		WillReturnRows(sqlmock.NewRows(summaryCols).
			AddRow("s-1", "ABC123", "u-1", "Hunt1", "Riga", nil, nil, true, time.Now(), nil, "alice", 3, 2, false))

	sum, err := repo.Summary(context.Background(), "ABC123", "")
	require.NoError(t, err)
	assert.Equal(t, "alice", sum.OwnerName)
	assert.Equal(t, 3, sum.TotalParticipants)
	assert.Equal(t, 2, sum.ActiveParticipants)
	assert.False(t, sum.IsOwner)
}

func TestListOwnedActive(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)WHERE\s+s\.owner_id\s*=\s*\$1\s+AND\s+s\.is_active\s+ORDER\s+BY\s+s\.created_at\s+DESC$`).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows(summaryCols).
			AddRow("s-2", "BBB222", "u-1", "Second", nil, nil, nil, true, time.Now(), nil, "alice", 1, 1, true).
			AddRow("s-1", "AAA111", "u-1", "First", nil, nil, nil, true, time.Now().Add(-time.Hour), nil, "alice", 4, 0, false))

	list, err := repo.ListOwnedActive(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "BBB222", list[0].Code)
	assert.True(t, list[0].IsOwner)
	assert.True(t, list[0].CallerActive)
	assert.Equal(t, 4, list[1].TotalParticipants)
}

func TestListJoined_ExcludesOwned(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)WHERE\s+s\.owner_id\s*<>\s*\$1\s+AND\s+EXISTS`).
		WithArgs("u-2").
		WillReturnRows(sqlmock.NewRows(summaryCols).
			AddRow("s-1", "AAA111", "u-1", "First", nil, nil, nil, false, time.Now(), time.Now(), "alice", 2, 0, false))

	list, err := repo.ListJoined(context.Background(), "u-2")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.False(t, list[0].IsOwner)
}

func TestListHistory_QueryError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)WHERE\s+s\.owner_id\s*=\s*\$1\s+OR\s+EXISTS`).WillReturnError(errors.New("boom"))

	_, err := repo.ListHistory(context.Background(), "u-1")
	require.Error(t, err)
}
