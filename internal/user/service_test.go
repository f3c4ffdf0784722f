package user

import (
	"context"
	"errors"
	"testing"

	"nextgen-storefront/internal/cart"
	"nextgen-storefront/internal/metrics"
	"nextgen-storefront/internal/product"
	"nextgen-storefront/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Login(ctx context.Context, in LoginInput) (*Session, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockRepository) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Session), args.Error(1)
}

func (m *MockRepository) Me(ctx context.Context) (*User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) UpdateProfilePicture(ctx context.Context, image string) error {
	args := m.Called(ctx, image)
	return args.Error(0)
}

func newTestService(t *testing.T) (*MockRepository, cart.Service, Service) {
	t.Helper()
	repo := new(MockRepository)
	carts := cart.NewService(cart.NewRepository(storage.NewMemoryStore()), metrics.NewCounters())
	return repo, carts, NewService(repo, carts)
}

func TestService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo, _, svc := newTestService(t)
		repo.On("Login", ctx, LoginInput{Email: "lebo@example.com", Password: "pw"}).
			Return(&Session{User: User{ID: "u1", Email: "lebo@example.com", Username: "lebo"}, Token: "tok"}, nil)

		sess, err := svc.Login(ctx, LoginInput{Email: "  Lebo@Example.com ", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, "tok", sess.Token)
		assert.Equal(t, "Welcome back, lebo!", sess.Message)
		repo.AssertExpectations(t)
	})

	t.Run("Greets by email without username", func(t *testing.T) {
		repo, _, svc := newTestService(t)
		repo.On("Login", ctx, mock.Anything).
			Return(&Session{User: User{ID: "u1", Email: "a@b.co"}, Token: "tok"}, nil)

		sess, err := svc.Login(ctx, LoginInput{Email: "a@b.co", Password: "pw"})
		require.NoError(t, err)
		assert.Equal(t, "Welcome back, a@b.co!", sess.Message)
	})

	t.Run("Invalid input never reaches the backend", func(t *testing.T) {
		repo, _, svc := newTestService(t)

		_, err := svc.Login(ctx, LoginInput{Email: "not-an-email"})
		var ie *InputError
		require.ErrorAs(t, err, &ie)
		assert.ElementsMatch(t, []string{"email", "password"}, ie.Fields)
		repo.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})

	t.Run("Rejected", func(t *testing.T) {
		repo, _, svc := newTestService(t)
		repo.On("Login", ctx, mock.Anything).Return(nil, ErrWrongPassword)

		_, err := svc.Login(ctx, LoginInput{Email: "a@b.co", Password: "pw"})
		assert.ErrorIs(t, err, ErrWrongPassword)
	})
}

func TestService_Signup(t *testing.T) {
	ctx := context.Background()
	valid := SignupInput{Username: "lebo", Email: "lebo@example.com", Password: "Secret123", Phone: "0821234567", AgreeTerms: true}

	t.Run("Success", func(t *testing.T) {
		repo, _, svc := newTestService(t)
		repo.On("Signup", ctx, valid).
			Return(&Session{User: User{ID: "u9", Username: "lebo"}, Token: "tok"}, nil)

		sess, err := svc.Signup(ctx, valid)
		require.NoError(t, err)
		assert.Equal(t, "Account created for lebo!", sess.Message)
	})

	t.Run("Terms must be accepted", func(t *testing.T) {
		repo, _, svc := newTestService(t)
		in := valid
		in.AgreeTerms = false

		_, err := svc.Signup(ctx, in)
		assert.ErrorIs(t, err, ErrTermsNotAccepted)
		repo.AssertNotCalled(t, "Signup", mock.Anything, mock.Anything)
	})

	t.Run("Bad date of birth", func(t *testing.T) {
		_, _, svc := newTestService(t)
		in := valid
		in.Dob = "31/12/1999"

		_, err := svc.Signup(ctx, in)
		var ie *InputError
		require.ErrorAs(t, err, &ie)
		assert.Equal(t, []string{"dob"}, ie.Fields)
	})

	t.Run("Backend message passes through", func(t *testing.T) {
		repo, _, svc := newTestService(t)
		repo.On("Signup", ctx, mock.Anything).Return(nil, &RejectedError{Message: "Email already exists"})

		_, err := svc.Signup(ctx, valid)
		assert.EqualError(t, err, "Email already exists")
	})
}

func TestService_Logout(t *testing.T) {
	ctx := context.Background()
	_, carts, svc := newTestService(t)

	_, err := carts.Add(ctx, "u1", product.Product{ID: "p1", Brand: "ASUS", Model: "ROG", Price: decimal.NewFromInt(100)})
	require.NoError(t, err)
	_, err = carts.Add(ctx, "", product.Product{ID: "p2", Brand: "MSI", Model: "Katana", Price: decimal.NewFromInt(100)})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, "u1"))

	assert.Empty(t, carts.Items(ctx, "u1"))
	assert.Len(t, carts.Items(ctx, ""), 1)
}

func TestService_SetProfilePicture(t *testing.T) {
	ctx := context.Background()
	image := "data:image/png;base64,iVBORw0KGgo="

	t.Run("Success", func(t *testing.T) {
		repo, _, svc := newTestService(t)
		repo.On("Me", ctx).Return(&User{ID: "u1", Email: "a@b.co"}, nil)
		repo.On("UpdateProfilePicture", ctx, image).Return(nil)

		u, err := svc.SetProfilePicture(ctx, image)
		require.NoError(t, err)
		assert.Equal(t, image, u.ProfilePicture)
		repo.AssertExpectations(t)
	})

	t.Run("Not a data URI", func(t *testing.T) {
		repo, _, svc := newTestService(t)

		_, err := svc.SetProfilePicture(ctx, "https://example.com/me.png")
		assert.ErrorIs(t, err, ErrInvalidImage)
		repo.AssertNotCalled(t, "Me", mock.Anything)
	})

	t.Run("Upload fails", func(t *testing.T) {
		repo, _, svc := newTestService(t)
		repo.On("Me", ctx).Return(&User{ID: "u1"}, nil)
		repo.On("UpdateProfilePicture", ctx, image).Return(errors.New("boom"))

		_, err := svc.SetProfilePicture(ctx, image)
		assert.Error(t, err)
	})
}

func TestPasswordStrength(t *testing.T) {
	tests := []struct {
		pw   string
		want Strength
	}{
		{"abc", Weak},
		{"abcdef", Medium},
		{"abcdefgh1", Medium},
		{"Abcdefg1", Strong},
		{"Abc1", Weak},
	}
	for _, tt := range tests {
		t.Run(tt.pw, func(t *testing.T) {
			assert.Equal(t, tt.want, PasswordStrength(tt.pw))
		})
	}
}
