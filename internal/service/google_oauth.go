package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"album-service/internal/config"
	"album-service/internal/models"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

type GoogleOAuthService struct {
	oauth2Config *oauth2.Config
	userInfoURL  string
}

func NewGoogleOAuthService(cfg *config.GoogleOAuthConfig) *GoogleOAuthService {
	return newGoogleOAuthService(cfg, google.Endpoint, googleUserInfoURL)
}

func newGoogleOAuthService(cfg *config.GoogleOAuthConfig, endpoint oauth2.Endpoint, userInfoURL string) *GoogleOAuthService {
	return &GoogleOAuthService{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint:     endpoint,
		},
		userInfoURL: userInfoURL,
	}
}

func (s *GoogleOAuthService) AuthCodeURL(state string) string {
	return s.oauth2Config.AuthCodeURL(state)
}

// FetchProfile exchanges the code and reads the signed-in user's profile
func (s *GoogleOAuthService) FetchProfile(ctx context.Context, code string) (*models.GoogleUserInfo, error) {
	token, err := s.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build user info request: %w", err)
	}

	resp, err := s.oauth2Config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to get user info: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d: %s", resp.StatusCode, body)
	}

	var userInfo models.GoogleUserInfo
	if err := json.Unmarshal(body, &userInfo); err != nil {
		return nil, fmt.Errorf("failed to parse user info: %w", err)
	}
	if userInfo.Email == "" {
		return nil, fmt.Errorf("user info has no email")
	}
	return &userInfo, nil
}
