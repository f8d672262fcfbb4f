// Package authapi talks to the Serene Minds backend for credential checks and account flows.
package authapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"

	"github.com/serene-minds/dashboard/core"
	"github.com/serene-minds/dashboard/core/user"
)

const (
	loginPath          = "/auth/login"
	registerPath       = "/auth/register"
	forgotPasswordPath = "/auth/forgot-password"
	resetPasswordPath  = "/auth/reset-password"

	unreachableMsg = "Unable to reach the server, please try again later."
	unexpectedMsg  = "Something went wrong, please try again."
)

// APIError is a failed call. Message is safe to show to the user.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("auth api: %s (status %d): %v", e.Message, e.Status, e.Err)
	}
	return fmt.Sprintf("auth api: %s (status %d)", e.Message, e.Status)
}

func (e *APIError) Unwrap() error { return e.Err }

// Message returns the user-visible message of err, or a generic one.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return unexpectedMsg
}

// Result is the {user, token} pair of a successful login.
type Result struct {
	User  user.User `json:"user"`
	Token string    `json:"token"`
}

// Client calls the auth endpoints of the backend.
type Client struct {
	baseURL string
	rest    *rest.Client
}

func NewClient(conf core.AuthAPIConfig) *Client {
	timeout := conf.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(conf.BaseURL, "/"),
		rest:    &rest.Client{HTTPClient: &http.Client{Timeout: timeout}},
	}
}

// Login checks credentials and returns the logged-in user and its token.
func (c *Client) Login(ctx context.Context, email, password string) (Result, error) {
	var res Result
	err := c.post(ctx, loginPath, map[string]string{"email": email, "password": password}, &res)
	if err != nil {
		return Result{}, err
	}
	if res.Token == "" || !res.User.Valid() {
		return Result{}, &APIError{Status: http.StatusBadGateway, Message: unexpectedMsg, Err: errors.New("incomplete login response")}
	}
	return res, nil
}

// RegisterRequest is the payload of Register.
type RegisterRequest struct {
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Password string    `json:"password"`
	Role     user.Role `json:"role,omitempty"`
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	return c.post(ctx, registerPath, req, nil)
}

// RequestPasswordReset asks the backend to mail a reset link to email.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	return c.post(ctx, forgotPasswordPath, map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, token, password string) error {
	return c.post(ctx, resetPasswordPath, map[string]string{"token": token, "password": password}, nil)
}

func (c *Client) post(ctx context.Context, path string, payload, dest interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshalling request")
	}

	req := rest.Request{
		Method:  rest.Post,
		BaseURL: c.baseURL + path,
		Headers: map[string]string{
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
		Body: body,
	}
	resp, err := c.rest.SendWithContext(ctx, req)
	if err != nil {
		return &APIError{Status: http.StatusServiceUnavailable, Message: unreachableMsg, Err: errors.Wrapf(err, "POST %s", path)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{Status: resp.StatusCode, Message: errorMessage(resp)}
	}
	if dest == nil || strings.TrimSpace(resp.Body) == "" {
		return nil
	}
	if err = json.Unmarshal([]byte(resp.Body), dest); err != nil {
		return &APIError{Status: resp.StatusCode, Message: unexpectedMsg, Err: errors.Wrap(err, "decoding response")}
	}
	return nil
}

// errorMessage extracts {"error": ...} or {"message": ...} from a failed response.
func errorMessage(resp *rest.Response) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal([]byte(resp.Body), &body); err == nil {
		if body.Error != "" {
			return body.Error
		}
		if body.Message != "" {
			return body.Message
		}
	}
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return "Invalid email or password."
	case http.StatusTooManyRequests:
		return "Too many attempts, please wait and try again."
	}
	return unexpectedMsg
}
