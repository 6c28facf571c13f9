package forms

import (
	"strings"

	"evex/pkg/models"
)

// RegisterForm is the sign-up page. UserType defaults to student.
type RegisterForm struct {
	Username        string      `json:"username" validate:"required,min=3,max=150"`
	Email           string      `json:"email" validate:"required,email"`
	Password        string      `json:"password" validate:"required,strongpw"`
	ConfirmPassword string      `json:"confirm_password" validate:"required,eqfield=Password"`
	UserType        models.Role `json:"user_type" validate:"oneof=student organizer"`
	FirstName       string      `json:"first_name" validate:"required"`
	LastName        string      `json:"last_name" validate:"required"`
	ContactNumber   string      `json:"contact_number"`
	Department      string      `json:"department"`
}

// Register normalizes and validates f and returns the upstream body.
func Register(f RegisterForm) (models.RegisterRequest, error) {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	if f.UserType == models.RoleAnonymous {
		f.UserType = models.RoleStudent
	}

	if err := Struct(&f); err != nil {
		return models.RegisterRequest{}, err
	}

	return models.RegisterRequest{
		Username:      f.Username,
		Email:         f.Email,
		Password:      f.Password,
		UserType:      f.UserType,
		FirstName:     f.FirstName,
		LastName:      f.LastName,
		ContactNumber: strings.TrimSpace(f.ContactNumber),
		Department:    strings.TrimSpace(f.Department),
	}, nil
}

// Login only checks presence; the backend judges the credentials.
func Login(req models.LoginRequest) (models.LoginRequest, error) {
	req.Username = strings.TrimSpace(req.Username)
	var errs Errors
	if req.Username == "" {
		errs = append(errs, FieldError{Field: "username", Tag: "required", Message: "The field 'username' is required."})
	}
	if req.Password == "" {
		errs = append(errs, FieldError{Field: "password", Tag: "required", Message: "The field 'password' is required."})
	}
	if len(errs) > 0 {
		return req, errs
	}
	return req, nil
}
