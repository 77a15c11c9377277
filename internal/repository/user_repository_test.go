package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"postboard/internal/models"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	sqlxDB := sqlx.NewDb(db, "postgres")
	t.Cleanup(func() { sqlxDB.Close() })

	return sqlxDB, mock
}

func newTestUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db, cost: bcrypt.MinCost}
}

var userColumns = []string{"user_id", "username", "password_hash", "created_at"}

func TestUserRepository_CreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("hashes password and assigns id", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := newTestUserRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (user_id, username, password_hash, created_at)")).
			WithArgs(sqlmock.AnyArg(), "alice", sqlmock.AnyArg(), sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))

		user, err := repo.CreateUser(ctx, "alice", "password123")
		require.NoError(t, err)

		assert.NotEmpty(t, user.UserID)
		assert.Equal(t, "alice", user.Username)
		assert.NotEqual(t, "password123", user.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("password123")))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation is a duplicate username", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := newTestUserRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

		user, err := repo.CreateUser(ctx, "alice", "password123")

		assert.Nil(t, user)
		assert.ErrorIs(t, err, models.ErrDuplicateUsername)
	})

	t.Run("other database errors are not reclassified", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := newTestUserRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users")).
			WillReturnError(errors.New("connection reset"))

		_, err := repo.CreateUser(ctx, "alice", "password123")

		require.Error(t, err)
		assert.Equal(t, models.KindInternal, models.KindOf(err))
		assert.Contains(t, err.Error(), "insert user")
	})

	t.Run("password longer than bcrypt accepts", func(t *testing.T) {
		db, _ := setupMockDB(t)
		repo := newTestUserRepository(db)

		long := make([]byte, 80)
		for i := range long {
			long[i] = 'a'
		}

		_, err := repo.CreateUser(ctx, "alice", string(long))
		assert.ErrorIs(t, err, models.ErrValidation)
	})
}

func TestUserRepository_GetUserByID(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta("SELECT user_id, username, password_hash, created_at FROM users WHERE user_id = $1")

	t.Run("found", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := newTestUserRepository(db)
		created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

		mock.ExpectQuery(query).
			WithArgs("user-1").
			WillReturnRows(sqlmock.NewRows(userColumns).AddRow("user-1", "alice", "hash", created))

		user, err := repo.GetUserByID(ctx, "user-1")
		require.NoError(t, err)
		assert.Equal(t, &models.User{UserID: "user-1", Username: "alice", PasswordHash: "hash", CreatedAt: created}, user)
	})

	t.Run("missing", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := newTestUserRepository(db)

		mock.ExpectQuery(query).WithArgs("ghost").WillReturnError(sql.ErrNoRows)

		_, err := repo.GetUserByID(ctx, "ghost")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestUserRepository_VerifyPassword(t *testing.T) {
	ctx := context.Background()
	query := regexp.QuoteMeta("SELECT user_id, username, password_hash, created_at FROM users WHERE username = $1")

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)

	tests := []struct {
		name      string
		password  string
		setupMock func(mock sqlmock.Sqlmock)
		wantErr   error
	}{
		{
			name:     "correct password",
			password: "correct horse",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WithArgs("alice").
					WillReturnRows(sqlmock.NewRows(userColumns).AddRow("user-1", "alice", string(hash), time.Now()))
			},
		},
		{
			name:     "wrong password",
			password: "battery staple",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WithArgs("alice").
					WillReturnRows(sqlmock.NewRows(userColumns).AddRow("user-1", "alice", string(hash), time.Now()))
			},
			wantErr: models.ErrAuthenticationFailed,
		},
		{
			name:     "unknown user",
			password: "correct horse",
			setupMock: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(query).WithArgs("alice").WillReturnError(sql.ErrNoRows)
			},
			wantErr: models.ErrAuthenticationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := setupMockDB(t)
			repo := newTestUserRepository(db)
			tt.setupMock(mock)

			user, err := repo.VerifyPassword(ctx, "alice", tt.password)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, user)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "user-1", user.UserID)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("database failure propagates", func(t *testing.T) {
		db, mock := setupMockDB(t)
		repo := newTestUserRepository(db)

		mock.ExpectQuery(query).WithArgs("alice").WillReturnError(errors.New("timeout"))

		_, err := repo.VerifyPassword(ctx, "alice", "x")
		require.Error(t, err)
		assert.NotErrorIs(t, err, models.ErrAuthenticationFailed)
	})
}
