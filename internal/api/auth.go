package api

import (
	"context"
	"net/http"

	"github.com/shopfront/shopfront/internal/domain"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type wireUser struct {
	ID    ID     `json:"_id"`
	AltID ID     `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u wireUser) toDomain() domain.User {
	id := string(u.ID)
	if id == "" {
		id = string(u.AltID)
	}
	return domain.User{ID: id, Name: u.Name, Email: u.Email}
}

// Login exchanges credentials for a {user, token} session.
func (c *Client) Login(ctx context.Context, email, password string) (domain.Session, error) {
	var resp struct {
		User  wireUser `json:"user"`
		Token string   `json:"token"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return domain.Session{}, err
	}
	user := resp.User.toDomain()
	return domain.Session{User: &user, Token: resp.Token}, nil
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register creates an unverified account; the backend mails an OTP to
// the given address. The returned message is shown to the user.
func (c *Client) Register(ctx context.Context, name, email, password string) (string, error) {
	var resp struct {
		UserID  ID     `json:"userId"`
		Message string `json:"message"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/auth/register", registerRequest{Name: name, Email: email, Password: password}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Message == "" {
		resp.Message = "Registration successful"
	}
	return resp.Message, nil
}

type otpRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp,omitempty"`
}

// VerifyOTP confirms the one-time password mailed at registration.
func (c *Client) VerifyOTP(ctx context.Context, email, otp string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/auth/verify-otp", otpRequest{Email: email, OTP: otp}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}

// ResendOTP requests a fresh one-time password.
func (c *Client) ResendOTP(ctx context.Context, email string) (string, error) {
	var resp struct {
		Message string `json:"message"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/auth/resend-otp", otpRequest{Email: email}, &resp)
	if err != nil {
		return "", err
	}
	return resp.Message, nil
}
