package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dtroode/account-service/internal/model"
)

const statusSuccess = "success"

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respond(c *gin.Context, code int, message string, data any) {
	c.JSON(code, envelope{Status: statusSuccess, Message: message, Data: data})
}

// accountResponse is the only account representation rendered to callers.
type accountResponse struct {
	ID            uuid.UUID  `json:"id"`
	Email         string     `json:"email"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	Phone         *string    `json:"phone"`
	IsActive      bool       `json:"isActive"`
	EmailVerified bool       `json:"emailVerified"`
	LastLogin     *time.Time `json:"lastLogin"`
	Role          model.Role `json:"role"`
	HasAvatar     bool       `json:"hasAvatar"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

func newAccountResponse(a model.Account) accountResponse {
	return accountResponse{
		ID:            a.ID,
		Email:         a.Email,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		Phone:         a.Phone,
		IsActive:      a.IsActive,
		EmailVerified: a.EmailVerified,
		LastLogin:     a.LastLogin,
		Role:          a.Role,
		HasAvatar:     a.AvatarKey != nil,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func newAccountResponses(accounts []model.Account) []accountResponse {
	out := make([]accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, newAccountResponse(a))
	}
	return out
}

type sessionData struct {
	User   accountResponse `json:"user"`
	Tokens model.TokenPair `json:"tokens"`
}

type userData struct {
	User accountResponse `json:"user"`
}

type tokensData struct {
	Tokens model.TokenPair `json:"tokens"`
}

type usersData struct {
	Users      []accountResponse `json:"users"`
	Pagination model.Pagination  `json:"pagination"`
}
