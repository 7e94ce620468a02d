package handler

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"

	"github.com/dtroode/account-service/internal/apierror"
	"github.com/dtroode/account-service/internal/model"
)

const passwordSpecials = "@$!%*?&"

var phonePattern = regexp.MustCompile(`^[0-9]{10,15}$`)

type validatable interface {
	Validate() error
}

// bindJSON decodes the request body into req and validates it.
func bindJSON(c *gin.Context, req validatable) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return apierror.NewErrValidation(map[string]string{"body": "must be a valid JSON object"})
	}
	return validate(req)
}

// bindQuery decodes the query string into req and validates it.
func bindQuery(c *gin.Context, req validatable) error {
	if err := c.ShouldBindQuery(req); err != nil {
		return apierror.NewErrValidation(map[string]string{"query": err.Error()})
	}
	return validate(req)
}

func validate(req validatable) error {
	err := req.Validate()
	if err == nil {
		return nil
	}

	var fieldErrs validation.Errors
	if !errors.As(err, &fieldErrs) {
		return apierror.NewErrInternal(fmt.Errorf("failed to validate request: %w", err))
	}

	details := make(map[string]string, len(fieldErrs))
	for field, fieldErr := range fieldErrs {
		details[field] = fieldErr.Error()
	}
	return apierror.NewErrValidation(details)
}

func emailRules() []validation.Rule {
	return []validation.Rule{validation.Required, validation.Length(0, 255), is.Email}
}

func passwordRules() []validation.Rule {
	return []validation.Rule{validation.Required, validation.Length(8, 128), validation.By(passwordComplexity)}
}

func nameRules() []validation.Rule {
	return []validation.Rule{validation.Required, validation.Length(1, 50)}
}

// passwordComplexity requires a lowercase letter, an uppercase letter, a digit and a special character.
func passwordComplexity(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	if !lower || !upper || !digit || !special {
		return errors.New("must contain at least one lowercase letter, one uppercase letter, one number and one of " + passwordSpecials)
	}
	return nil
}

// intRange validates an optional integer query parameter.
func intRange(min, max int) validation.RuleFunc {
	return func(value interface{}) error {
		v, _ := value.(*int)
		if v == nil {
			return nil
		}
		if *v < min || *v > max {
			if max == math.MaxInt {
				return fmt.Errorf("must be no less than %d", min)
			}
			return fmt.Errorf("must be between %d and %d", min, max)
		}
		return nil
	}
}

type registerRequest struct {
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Phone     *string `json:"phone"`
}

func (r *registerRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, emailRules()...),
		validation.Field(&r.Password, passwordRules()...),
		validation.Field(&r.FirstName, nameRules()...),
		validation.Field(&r.LastName, nameRules()...),
		validation.Field(&r.Phone, validation.Match(phonePattern).Error("must be 10 to 15 digits")),
	)
}

func (r *registerRequest) registration() model.Registration {
	return model.Registration{
		Email:     normalizeEmail(r.Email),
		Password:  r.Password,
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		Phone:     r.Phone,
	}
}

func (r *registerRequest) draft() model.AccountDraft {
	return model.AccountDraft{
		Email:     normalizeEmail(r.Email),
		Password:  r.Password,
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		Phone:     r.Phone,
		Role:      model.RoleUser,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r *loginRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r *forgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (r *resetPasswordRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, passwordRules()...),
	)
}

type profileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
}

func (r *profileRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FirstName, validation.NilOrNotEmpty, validation.Length(1, 50)),
		validation.Field(&r.LastName, validation.NilOrNotEmpty, validation.Length(1, 50)),
		validation.Field(&r.Phone, validation.Match(phonePattern).Error("must be 10 to 15 digits")),
	)
}

func (r *profileRequest) update() model.ProfileUpdate {
	return model.ProfileUpdate{
		FirstName: trimmed(r.FirstName),
		LastName:  trimmed(r.LastName),
		Phone:     r.Phone,
	}
}

type updateUserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
	IsActive  *bool   `json:"isActive"`
	Role      *string `json:"role"`
}

func (r *updateUserRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.FirstName, validation.NilOrNotEmpty, validation.Length(1, 50)),
		validation.Field(&r.LastName, validation.NilOrNotEmpty, validation.Length(1, 50)),
		validation.Field(&r.Phone, validation.Match(phonePattern).Error("must be 10 to 15 digits")),
		validation.Field(&r.Role, validation.NilOrNotEmpty, validation.In(
			string(model.RoleUser), string(model.RoleAdmin), string(model.RoleSuperAdmin),
		)),
	)
}

func (r *updateUserRequest) patch() model.AccountPatch {
	patch := model.AccountPatch{
		FirstName: trimmed(r.FirstName),
		LastName:  trimmed(r.LastName),
		Phone:     r.Phone,
		IsActive:  r.IsActive,
	}
	if r.Role != nil {
		role := model.Role(*r.Role)
		patch.Role = &role
	}
	return patch
}

type listUsersQuery struct {
	Page      *int   `form:"page" json:"page"`
	Limit     *int   `form:"limit" json:"limit"`
	SortBy    string `form:"sortBy" json:"sortBy"`
	SortOrder string `form:"sortOrder" json:"sortOrder"`
	Search    string `form:"search" json:"search"`
	IsActive  *bool  `form:"isActive" json:"isActive"`
}

func (q *listUsersQuery) Validate() error {
	return validation.ValidateStruct(q,
		validation.Field(&q.Page, validation.By(intRange(1, math.MaxInt))),
		validation.Field(&q.Limit, validation.By(intRange(1, 100))),
		validation.Field(&q.SortBy, validation.In(
			string(model.SortByCreatedAt), string(model.SortByEmail), string(model.SortByFirstName),
			string(model.SortByLastName), string(model.SortByLastLogin),
		)),
		validation.Field(&q.SortOrder, validation.In("asc", "desc")),
		validation.Field(&q.Search, validation.Length(0, 255)),
	)
}

func (q *listUsersQuery) filter() model.AccountFilter {
	f := model.AccountFilter{
		SortBy:   model.SortField(q.SortBy),
		SortDesc: q.SortOrder == "desc",
		Search:   strings.TrimSpace(q.Search),
		IsActive: q.IsActive,
	}
	if q.Page != nil {
		f.Page = *q.Page
	}
	if q.Limit != nil {
		f.Limit = *q.Limit
	}
	return f
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
