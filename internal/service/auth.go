package service

import (
	"context"

	"yatube/internal/forms"
	"yatube/internal/models"
	"yatube/internal/utils"

	"golang.org/x/crypto/bcrypt"
)

const (
	msgUsernameTaken = "A user with that username already exists."
	msgBadLogin      = "Please enter a correct username and password. Note that both fields may be case-sensitive."
)

// Signup registers the account described by form. A nil user with a nil
// error means the form carries errors.
func (s *Service) Signup(ctx context.Context, form *forms.SignupForm) (*models.User, error) {
	if !form.Valid() {
		return nil, nil
	}

	user, err := s.createUser(ctx, form.Username, form.Password1, form.FirstName, form.LastName)
	if utils.IsErrorCode(err, utils.ErrDuplicate) {
		form.Errors.Add("username", msgUsernameTaken)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("user signed up", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login checks the credentials in form. A nil user with a nil error means
// the form carries errors.
func (s *Service) Login(ctx context.Context, form *forms.LoginForm) (*models.User, error) {
	if !form.Valid() {
		return nil, nil
	}

	user, err := s.store.GetUserByUsername(ctx, form.Username)
	if utils.IsNotFound(err) {
		form.Errors.Add(forms.NonField, msgBadLogin)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Password)); err != nil {
		form.Errors.Add(forms.NonField, msgBadLogin)
		return nil, nil
	}
	return user, nil
}

func (s *Service) createUser(ctx context.Context, username, password, firstName, lastName string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrInvalidInput, "failed to hash password", err)
	}

	user := &models.User{
		Username:     username,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
