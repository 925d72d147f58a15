package users

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
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

var userCols = []string{"id", "username", "email", "password_hash", "google_id", "avatar_key", "auth_provider", "created_at", "last_login_at"}

const insertQ = `(?s)^INSERT\s+INTO\s+users\s*\(id,\s*username,\s*email,\s*password_hash,\s*google_id,\s*auth_provider\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*RETURNING\s+created_at\s*$`

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery(insertQ).
		WithArgs("u-1", "alice", "alice@example.com", "hash", nil, models.ProviderLocal).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	u := &models.User{ID: "u-1", UserName: "alice", Email: "alice@example.com", PasswordHash: "hash", Provider: models.ProviderLocal}
	got, err := repo.Create(context.Background(), u)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected created_at: %v", got.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestCreate_UniqueViolation(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := repo.Create(context.Background(), &models.User{ID: "u-1", UserName: "alice", Email: "a@b.c"})
	if !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want ErrorAlreadyExists, got %v", err)
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{ID: "u-1"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByLogin_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,.*FROM\s+users\s+WHERE\s+username\s*=\s*\$1\s+OR\s+lower\(email\)\s*=\s*lower\(\$1\)\s+LIMIT\s+1$`
	login := time.Date(2025, 5, 2, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(q).
		WithArgs("alice@example.com").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", "alice", "alice@example.com", "hash", nil, "avatars/u-1", "local", time.Now(), login))

	got, err := repo.GetByLogin(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("GetByLogin error: %v", err)
	}
	if got.ID != "u-1" || got.PasswordHash != "hash" || got.GoogleID != "" || got.AvatarKey != "avatars/u-1" {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.LastLoginAt == nil || !got.LastLoginAt.Equal(login) {
		t.Fatalf("unexpected last login: %v", got.LastLoginAt)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+id,.*WHERE\s+id\s*=\s*\$1$`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestGetByGoogleID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)WHERE\s+google_id\s*=\s*\$1$`).
		WithArgs("g-1").
		WillReturnError(errors.New("db err"))

	_, err := repo.GetByGoogleID(context.Background(), "g-1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUsernameTaken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+EXISTS\s*\(SELECT\s+1\s+FROM\s+users\s+WHERE\s+username\s*=\s*\$1\)$`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	taken, err := repo.UsernameTaken(context.Background(), "alice")
	if err != nil || !taken {
		t.Fatalf("want taken, got %v %v", taken, err)
	}
}

func TestUpdateUsername_Conflict(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+username\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("u-1", "bob").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	if err := repo.UpdateUsername(context.Background(), "u-1", "bob"); !errors.Is(err, common.ErrorAlreadyExists) {
		t.Fatalf("want ErrorAlreadyExists, got %v", err)
	}
}

func TestUpdateAvatar_ClearsWithNull(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET\s+avatar_key\s*=\s*\$2\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("u-1", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.UpdateAvatar(context.Background(), "u-1", ""); err != nil {
		t.Fatalf("UpdateAvatar error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("sql expectations: %v", err)
	}
}

func TestLinkGoogleAndTouchLastLogin(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(`SET\s+google_id`).WithArgs("u-1", "g-1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`SET\s+last_login_at`).WithArgs("u-1", at).WillReturnError(errors.New("boom"))

	if err := repo.LinkGoogle(context.Background(), "u-1", "g-1"); err != nil {
		t.Fatalf("LinkGoogle error: %v", err)
	}
	if err := repo.TouchLastLogin(context.Background(), "u-1", at); err == nil {
		t.Fatal("expected error")
	}
}
