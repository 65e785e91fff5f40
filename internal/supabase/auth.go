package supabase

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/supabase-go"
)

// AuthClient delegates credential handling to Supabase Auth (GoTrue).
// Tokens it returns are HS256-signed with the project JWT secret, which
// is what the auth middleware verifies against.
type AuthClient struct {
	client *supabase.Client
}

type AuthSession struct {
	UserID      uuid.UUID
	Email       string
	AccessToken string
}

func NewAuthClient(supabaseURL, serviceRoleKey string) (*AuthClient, error) {
	client, err := supabase.NewClient(supabaseURL, serviceRoleKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}
	return &AuthClient{client: client}, nil
}

// SignUp registers the identity and signs it in to obtain a token.
func (a *AuthClient) SignUp(email, password string) (*AuthSession, error) {
	_, err := a.client.Auth.Signup(types.SignupRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("signup failed: %w", err)
	}
	return a.SignIn(email, password)
}

func (a *AuthClient) SignIn(email, password string) (*AuthSession, error) {
	token, err := a.client.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		return nil, fmt.Errorf("sign in failed: %w", err)
	}
	return &AuthSession{
		UserID:      token.User.ID,
		Email:       token.User.Email,
		AccessToken: token.AccessToken,
	}, nil
}
