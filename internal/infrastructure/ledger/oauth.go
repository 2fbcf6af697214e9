package ledger

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/jhoicas/ledger-sync/internal/application/ledgersync"
	"github.com/jhoicas/ledger-sync/internal/domain"
	"github.com/jhoicas/ledger-sync/internal/domain/entity"
)

const (
	defaultAuthURL  = "https://appcenter.intuit.com/connect/oauth2"
	defaultTokenURL = "https://oauth.platform.intuit.com/oauth2/v1/tokens/bearer"
	accountingScope = "com.intuit.quickbooks.accounting"
)

// OAuthConfig credenciales de la app registrada en el proveedor de identidad del ledger.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	Scopes       []string
	HTTPClient   *http.Client // opcional; lo usa oauth2 para el intercambio
}

var (
	_ ledgersync.TokenRefresher = (*OAuthRefresher)(nil)
	_ ledgersync.OAuthFlow      = (*OAuthRefresher)(nil)
)

// OAuthRefresher implementa el refresh grant, la URL de consentimiento y el intercambio de código
// usando golang.org/x/oauth2.
type OAuthRefresher struct {
	cfg        *oauth2.Config
	httpClient *http.Client
	now        func() time.Time
}

// NewOAuthRefresher construye el adaptador aplicando los endpoints por defecto del ledger.
func NewOAuthRefresher(c OAuthConfig) *OAuthRefresher {
	authURL := c.AuthURL
	if authURL == "" {
		authURL = defaultAuthURL
	}
	tokenURL := c.TokenURL
	if tokenURL == "" {
		tokenURL = defaultTokenURL
	}
	scopes := c.Scopes
	if len(scopes) == 0 {
		scopes = []string{accountingScope}
	}
	return &OAuthRefresher{
		cfg: &oauth2.Config{
			ClientID:     c.ClientID,
			ClientSecret: c.ClientSecret,
			RedirectURL:  c.RedirectURL,
			Scopes:       scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		httpClient: c.HTTPClient,
		now:        time.Now,
	}
}

func (r *OAuthRefresher) ctx(ctx context.Context) context.Context {
	if r.httpClient != nil {
		return context.WithValue(ctx, oauth2.HTTPClient, r.httpClient)
	}
	return ctx
}

// Refresh ejecuta el refresh-token grant. Cualquier respuesta no exitosa del proveedor
// se devuelve envolviendo domain.ErrRefreshFailed. RealmID no viene en la respuesta:
// lo conserva el llamador.
func (r *OAuthRefresher) Refresh(ctx context.Context, refreshToken string) (*entity.SyncToken, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh token vacío", domain.ErrRefreshFailed)
	}
	// Sin access token el TokenSource siempre ejecuta el grant.
	src := r.cfg.TokenSource(r.ctx(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, refreshError(err)
	}
	return r.toSyncToken(tok, refreshToken), nil
}

// AuthCodeURL URL de consentimiento con el state firmado por el llamador.
func (r *OAuthRefresher) AuthCodeURL(state string) string {
	return r.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// Exchange canjea el código de autorización por el primer par de tokens.
func (r *OAuthRefresher) Exchange(ctx context.Context, code string) (*entity.SyncToken, error) {
	tok, err := r.cfg.Exchange(r.ctx(ctx), code)
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) && re.Response != nil {
			return nil, fmt.Errorf("ledger: intercambio de código rechazado (HTTP %d %s): %w", re.Response.StatusCode, re.ErrorCode, domain.ErrUnauthorized)
		}
		return nil, fmt.Errorf("ledger: intercambio de código: %w", err)
	}
	return r.toSyncToken(tok, ""), nil
}

func refreshError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return fmt.Errorf("%w: HTTP %d %s", domain.ErrRefreshFailed, re.Response.StatusCode, re.ErrorCode)
	}
	return fmt.Errorf("%w: %v", domain.ErrRefreshFailed, err)
}

func (r *OAuthRefresher) toSyncToken(tok *oauth2.Token, previousRefresh string) *entity.SyncToken {
	now := r.now()
	st := &entity.SyncToken{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
		UpdatedAt:    now,
	}
	if st.RefreshToken == "" {
		st.RefreshToken = previousRefresh
	}
	if st.ExpiresAt.IsZero() {
		st.ExpiresAt = now.Add(time.Hour)
	}
	if secs, ok := tok.Extra("x_refresh_token_expires_in").(float64); ok && secs > 0 {
		st.RefreshTokenExpiresAt = now.Add(time.Duration(secs) * time.Second)
	}
	return st
}
