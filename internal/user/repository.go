package user

import (
	"context"
	"errors"

	"nextgen-storefront/internal/backend"
	"nextgen-storefront/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Login(ctx context.Context, in LoginInput) (*Session, error)
	Signup(ctx context.Context, in SignupInput) (*Session, error)
	Me(ctx context.Context) (*User, error)
	UpdateProfilePicture(ctx context.Context, image string) error
}

type repository struct {
	client backend.Client
}

func NewRepository(client backend.Client) Repository {
	return &repository{client: client}
}

func (r *repository) Login(ctx context.Context, in LoginInput) (*Session, error) {
	resp, err := r.client.Login(ctx, backend.LoginRequest{Email: in.Email, Password: in.Password})
	if err != nil {
		logger.FromCtx(ctx).Warn("backend login failed", zap.String("email", in.Email), zap.Error(err))
		return nil, mapAuthError(err, "Login failed. Please try again.")
	}
	return sessionFrom(resp)
}

func (r *repository) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	resp, err := r.client.Signup(ctx, backend.SignupRequest{
		Email:    in.Email,
		Username: in.Username,
		Phone:    in.Phone,
		Dob:      in.Dob,
		Password: in.Password,
	})
	if err != nil {
		logger.FromCtx(ctx).Warn("backend signup failed", zap.String("email", in.Email), zap.Error(err))
		return nil, mapAuthError(err, "Signup failed. Please try again.")
	}
	return sessionFrom(resp)
}

func (r *repository) Me(ctx context.Context) (*User, error) {
	rec, err := r.client.Me(ctx)
	if err != nil {
		if errors.Is(err, backend.ErrUnauthorized) {
			return nil, ErrNotLoggedIn
		}
		return nil, err
	}
	u := FromRecord(*rec)
	return &u, nil
}

func (r *repository) UpdateProfilePicture(ctx context.Context, image string) error {
	err := r.client.UpdateProfilePicture(ctx, image)
	if errors.Is(err, backend.ErrUnauthorized) {
		return ErrNotLoggedIn
	}
	return err
}

func sessionFrom(resp *backend.AuthResponse) (*Session, error) {
	if resp.Token == "" {
		return nil, ErrNoToken
	}
	return &Session{User: FromRecord(resp.User), Token: resp.Token}, nil
}

func FromRecord(rec backend.UserRecord) User {
	id := rec.ID.String()
	if id == "" {
		id = rec.MongoID.String()
	}
	return User{
		ID:             id,
		Email:          rec.Email,
		Username:       rec.Username,
		Phone:          rec.Phone,
		ProfilePicture: rec.ProfilePicture,
	}
}

// mapAuthError turns the backend's known messages into sentinels and
// keeps any other message it sent. Transport failures get fallback.
func mapAuthError(err error, fallback string) error {
	var be *backend.Error
	if !errors.As(err, &be) {
		return &RejectedError{Message: fallback}
	}
	switch be.Message {
	case ErrInvalidCredentials.Error():
		return ErrInvalidCredentials
	case ErrAccountNotFound.Error():
		return ErrAccountNotFound
	case ErrWrongPassword.Error():
		return ErrWrongPassword
	case "":
		return &RejectedError{Message: fallback}
	}
	return &RejectedError{Message: be.Message}
}
