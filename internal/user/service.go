package user

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"nextgen-storefront/internal/cart"
	"nextgen-storefront/internal/logger"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type Service interface {
	Login(ctx context.Context, in LoginInput) (*Session, error)
	Signup(ctx context.Context, in SignupInput) (*Session, error)
	// Logout forgets the owner's cart. Tokens live with the client.
	Logout(ctx context.Context, owner string) error
	Profile(ctx context.Context) (*User, error)
	SetProfilePicture(ctx context.Context, image string) (*User, error)
}

type service struct {
	repo     Repository
	carts    cart.Service
	validate *validator.Validate
}

func NewService(repo Repository, carts cart.Service) Service {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return &service{repo: repo, carts: carts, validate: v}
}

func (s *service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Login"),
	)

	in = in.normalized()
	if err := s.check(in); err != nil {
		return nil, err
	}

	sess, err := s.repo.Login(ctx, in)
	if err != nil {
		log.Info("login rejected", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}
	sess.Message = fmt.Sprintf("Welcome back, %s!", sess.User.DisplayName())

	log.Info("login completed", zap.String("user_id", sess.User.ID))
	return sess, nil
}

func (s *service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "service"),
		zap.String("method", "Signup"),
	)

	if !in.AgreeTerms {
		return nil, ErrTermsNotAccepted
	}
	in = in.normalized()
	if err := s.check(in); err != nil {
		return nil, err
	}

	sess, err := s.repo.Signup(ctx, in)
	if err != nil {
		log.Info("signup rejected", zap.String("email", in.Email), zap.Error(err))
		return nil, err
	}
	sess.Message = fmt.Sprintf("Account created for %s!", sess.User.DisplayName())

	log.Info("signup completed",
		zap.String("user_id", sess.User.ID),
		zap.String("password_strength", string(PasswordStrength(in.Password))),
	)
	return sess, nil
}

func (s *service) Logout(ctx context.Context, owner string) error {
	if err := s.carts.Clear(ctx, owner); err != nil {
		logger.FromCtx(ctx).Warn("cart not cleared on logout", zap.Error(err))
		return err
	}
	return nil
}

func (s *service) Profile(ctx context.Context) (*User, error) {
	return s.repo.Me(ctx)
}

func (s *service) SetProfilePicture(ctx context.Context, image string) (*User, error) {
	image = strings.TrimSpace(image)
	if err := s.validate.Var(image, "required,datauri"); err != nil {
		return nil, ErrInvalidImage
	}

	u, err := s.repo.Me(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateProfilePicture(ctx, image); err != nil {
		logger.FromCtx(ctx).Warn("profile picture upload failed", zap.String("user_id", u.ID), zap.Error(err))
		return nil, err
	}
	u.ProfilePicture = image
	return u, nil
}

func (s *service) check(in any) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return &InputError{Fields: fields}
}
