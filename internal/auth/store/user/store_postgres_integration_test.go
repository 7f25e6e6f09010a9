//go:build integration

package user_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"featstack/internal/auth/models"
	userstore "featstack/internal/auth/store/user"
	"featstack/pkg/sentinel"
	"featstack/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *userstore.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = userstore.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateAll(context.Background()))
}

func (s *PostgresStoreSuite) newUser(email, username string) *models.User {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		Username:     username,
		PasswordHash: "$2a$04$fakehashforintegration",
		Role:         models.RoleUser,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (s *PostgresStoreSuite) TestCreateAndFind() {
	ctx := context.Background()
	user := s.newUser("ada@example.com", "ada")
	s.Require().NoError(s.store.Create(ctx, user))

	byID, err := s.store.FindByID(ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("ada@example.com", byID.Email)
	s.Equal(models.RoleUser, byID.Role)
	s.Nil(byID.LastLoginAt, "fresh accounts have never logged in")

	byEmail, err := s.store.FindByEmail(ctx, "ada@example.com")
	s.Require().NoError(err)
	s.Equal(user.ID, byEmail.ID)

	_, err = s.store.FindByEmail(ctx, "nobody@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

// TestDuplicateConstraintMapping pins the translation of Postgres unique
// violations into field-tagged duplicate errors, driven by the
// users_<column>_key constraint names.
func (s *PostgresStoreSuite) TestDuplicateConstraintMapping() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newUser("ada@example.com", "ada")))

	err := s.store.Create(ctx, s.newUser("ada@example.com", "ada2"))
	field, ok := sentinel.IsDuplicate(err)
	s.Require().True(ok, "expected a duplicate error, got %v", err)
	s.Equal("email", field)

	err = s.store.Create(ctx, s.newUser("ada2@example.com", "ada"))
	field, ok = sentinel.IsDuplicate(err)
	s.Require().True(ok, "expected a duplicate error, got %v", err)
	s.Equal("username", field)
}

func (s *PostgresStoreSuite) TestUpdateDuplicateMapping() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, s.newUser("ada@example.com", "ada")))
	other := s.newUser("grace@example.com", "grace")
	s.Require().NoError(s.store.Create(ctx, other))

	other.Email = "ada@example.com"
	err := s.store.Update(ctx, other)
	field, ok := sentinel.IsDuplicate(err)
	s.Require().True(ok, "expected a duplicate error, got %v", err)
	s.Equal("email", field)
}

func (s *PostgresStoreSuite) TestUpdateLastLogin() {
	ctx := context.Background()
	user := s.newUser("ada@example.com", "ada")
	s.Require().NoError(s.store.Create(ctx, user))

	at := time.Now().UTC().Truncate(time.Microsecond)
	s.Require().NoError(s.store.UpdateLastLogin(ctx, user.ID, at))

	found, err := s.store.FindByID(ctx, user.ID)
	s.Require().NoError(err)
	s.Require().NotNil(found.LastLoginAt)
	s.WithinDuration(at, *found.LastLoginAt, time.Second)

	s.ErrorIs(s.store.UpdateLastLogin(ctx, uuid.NewString(), at), sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestUpdatePassword() {
	ctx := context.Background()
	user := s.newUser("ada@example.com", "ada")
	s.Require().NoError(s.store.Create(ctx, user))

	s.Require().NoError(s.store.UpdatePassword(ctx, user.ID, "$2a$04$replacedhash", time.Now()))

	found, err := s.store.FindByID(ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("$2a$04$replacedhash", found.PasswordHash)
}

func (s *PostgresStoreSuite) TestDelete() {
	ctx := context.Background()
	user := s.newUser("ada@example.com", "ada")
	s.Require().NoError(s.store.Create(ctx, user))

	s.Require().NoError(s.store.Delete(ctx, user.ID))
	s.ErrorIs(s.store.Delete(ctx, user.ID), sentinel.ErrNotFound)

	_, err := s.store.FindByID(ctx, user.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListAndCount() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Microsecond)
	for i := 0; i < 3; i++ {
		user := s.newUser(uuid.NewString()+"@example.com", "user-"+uuid.NewString())
		user.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		user.Username = []string{"first", "second", "third"}[i]
		s.Require().NoError(s.store.Create(ctx, user))
	}

	total, err := s.store.Count(ctx)
	s.Require().NoError(err)
	s.Equal(3, total)

	page, err := s.store.List(ctx, 0, 2)
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Equal("third", page[0].Username, "newest first")
	s.Equal("second", page[1].Username)

	rest, err := s.store.List(ctx, 2, 2)
	s.Require().NoError(err)
	s.Require().Len(rest, 1)
	s.Equal("first", rest[0].Username)
}
