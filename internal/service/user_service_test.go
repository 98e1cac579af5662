package service

import (
	"context"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// fakeUserRepo is an in-memory UserRepository.
type fakeUserRepo struct {
	nextID uint
	users  map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[uint]*models.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uint) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) CountPublishedPosts(_ context.Context, _ uint) (int64, error) {
	return 0, nil
}

type stubFollowCounts struct {
	repository.FollowRepository
	followers, following int64
}

func (s stubFollowCounts) CountFollowers(context.Context, uint) (int64, error) {
	return s.followers, nil
}

func (s stubFollowCounts) CountFollowing(context.Context, uint) (int64, error) {
	return s.following, nil
}

func TestSignupHashesPasswordAndNormalizesEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, stubFollowCounts{})

	user, err := svc.Signup(context.Background(), SignupInput{
		Username: "  alice  ",
		Email:    " Alice@Example.COM ",
		Password: "password123",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "password123", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("password123")))
}

func TestSignupRejectsDuplicates(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, stubFollowCounts{})
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	_, err = svc.Signup(ctx, SignupInput{Username: "other", Email: "alice@example.com", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, err.(*models.AppError).Code)

	_, err = svc.Signup(ctx, SignupInput{Username: "alice", Email: "second@example.com", Password: "password123"})
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, err.(*models.AppError).Code)
}

func TestLoginFailuresShareOneMessage(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, stubFollowCounts{})
	ctx := context.Background()

	_, err := svc.Signup(ctx, SignupInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	_, unknownEmail := svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "password123"})
	_, wrongPassword := svc.Login(ctx, LoginInput{Email: "alice@example.com", Password: "wrong-password"})

	require.Error(t, unknownEmail)
	require.Error(t, wrongPassword)
	// Unknown email and wrong password must be indistinguishable to the caller.
	assert.Equal(t, unknownEmail.Error(), wrongPassword.Error())
	assert.Equal(t, models.CodeUnauthorized, unknownEmail.(*models.AppError).Code)
	assert.Equal(t, models.CodeUnauthorized, wrongPassword.(*models.AppError).Code)

	user, err := svc.Login(ctx, LoginInput{Email: "ALICE@example.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
}

func TestGetProfilePopulatesCounts(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, stubFollowCounts{followers: 4, following: 2})
	ctx := context.Background()

	created, err := svc.Signup(ctx, SignupInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	profile, err := svc.GetProfile(ctx, created.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 4, profile.FollowerCount)
	assert.EqualValues(t, 2, profile.FollowingCount)

	_, err = svc.GetProfile(ctx, 999)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, err.(*models.AppError).Code)
}

func TestUpdateProfileOnlyTouchesProvidedFields(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, stubFollowCounts{})
	ctx := context.Background()

	created, err := svc.Signup(ctx, SignupInput{Username: "alice", Email: "alice@example.com", Password: "password123"})
	require.NoError(t, err)

	bio := "  Writes about databases.  "
	updated, err := svc.UpdateProfile(ctx, UpdateProfileInput{UserID: created.ID, Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Writes about databases.", updated.Bio)

	avatar := "https://cdn.example.com/a.png"
	updated, err = svc.UpdateProfile(ctx, UpdateProfileInput{UserID: created.ID, Avatar: &avatar})
	require.NoError(t, err)
	assert.Equal(t, avatar, updated.Avatar)
	assert.Equal(t, "Writes about databases.", updated.Bio, "bio untouched when not provided")
}
