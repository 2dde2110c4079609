// Package google wraps the Google OAuth consent flow and Calendar event creation.
package google

import (
	"context"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// OAuth drives the offline-access consent flow for Calendar
type OAuth struct {
	config *oauth2.Config
}

func NewOAuth(clientID, clientSecret, redirectURL string) *OAuth {
	return &OAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     googleoauth.Endpoint,
			Scopes:       []string{calendar.CalendarEventsScope},
		},
	}
}

// AuthURL returns the consent page URL. Forcing the consent prompt makes Google
// issue a refresh token even for users who granted access before.
func (o *OAuth) AuthURL(state string) string {
	return o.config.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// Exchange trades an authorization code for a refresh token
func (o *OAuth) Exchange(ctx context.Context, code string) (string, error) {
	if code == "" {
		return "", errors.New("missing authorization code")
	}

	token, err := o.config.Exchange(ctx, code)
	if err != nil {
		return "", errors.Wrap(err, "failed to exchange authorization code")
	}
	if token.RefreshToken == "" {
		return "", errors.New("google did not return a refresh token")
	}
	return token.RefreshToken, nil
}

// TokenSource returns an auto-refreshing source for a stored refresh token
func (o *OAuth) TokenSource(ctx context.Context, refreshToken string) oauth2.TokenSource {
	return o.config.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
}
