package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/aluiziolira/cosmetics-storefront/models"
	"github.com/aluiziolira/cosmetics-storefront/parser"
)

// AuthResult is what a successful login or signup hands to the session.
type AuthResult struct {
	Token  string
	UserID string
	User   *models.User
}

type authBody struct {
	Token  string          `json:"token"`
	UserID string          `json:"userId"`
	User   *parser.RawUser `json:"user"`
}

func (b authBody) result(op string) (*AuthResult, error) {
	if b.Token == "" {
		return nil, AuthError{Op: op, Message: "no token in response"}
	}
	res := &AuthResult{Token: b.Token, UserID: b.UserID}
	if b.User != nil {
		u := parser.NormalizeUser(*b.User)
		res.User = &u
		if res.UserID == "" {
			res.UserID = u.ID
		}
	}
	return res, nil
}

// Login exchanges credentials for a token.
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	email = strings.TrimSpace(email)
	if err := parser.ValidateLogin(email, password); err != nil {
		return nil, err
	}
	rq, err := jsonRequest(http.MethodPost, "/user/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	var body authBody
	if err := c.do(ctx, "login", rq, &body); err != nil {
		return nil, err
	}
	return body.result("login")
}

// Signup registers a wholesale customer.
func (c *Client) Signup(ctx context.Context, form models.SignupForm) (*AuthResult, error) {
	if err := parser.ValidateSignup(form); err != nil {
		return nil, err
	}
	rq, err := jsonRequest(http.MethodPost, "/user/signup", form)
	if err != nil {
		return nil, err
	}
	var body authBody
	if err := c.do(ctx, "signup", rq, &body); err != nil {
		return nil, err
	}
	return body.result("signup")
}

// GetUser fetches a user profile. It needs a token.
func (c *Client) GetUser(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, AuthError{Op: "get user", Message: "Please log in to continue"}
	}
	var body struct {
		User *parser.RawUser `json:"user"`
	}
	err := c.do(ctx, "get user", request{
		method:     http.MethodGet,
		path:       "/user/single-user/" + url.PathEscape(id),
		auth:       true,
		idempotent: true,
	}, &body)
	if err != nil {
		return nil, err
	}
	if body.User == nil {
		return nil, TransportError{Op: "get user", StatusCode: http.StatusNotFound, Message: "User not found"}
	}
	u := parser.NormalizeUser(*body.User)
	return &u, nil
}

// ApproveUser marks a pending registration as approved.
func (c *Client) ApproveUser(ctx context.Context, id string) error {
	return c.setUserStatus(ctx, "approve user", "/admin/approve/", id)
}

// RejectUser marks a pending registration as rejected.
func (c *Client) RejectUser(ctx context.Context, id string) error {
	return c.setUserStatus(ctx, "reject user", "/admin/reject/", id)
}

func (c *Client) setUserStatus(ctx context.Context, op, prefix, id string) error {
	if id == "" {
		return ValidationError{Field: "id", Message: "user id is required"}
	}
	return c.do(ctx, op, request{
		method: http.MethodPut,
		path:   prefix + url.PathEscape(id),
		auth:   true,
	}, nil)
}
