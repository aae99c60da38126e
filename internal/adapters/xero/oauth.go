package xero

import (
	"context"
	"errors"
	"net/http"

	"github.com/SscSPs/xero_import_app/internal/apperrors"
	"github.com/SscSPs/xero_import_app/internal/core/domain"
	"github.com/SscSPs/xero_import_app/internal/core/ports/gateways"
	"golang.org/x/oauth2"
)

const identityService = "xero-identity"

// OAuthEndpoints are the identity server URLs plus the redirect registered with Xero.
type OAuthEndpoints struct {
	AuthURL        string
	TokenURL       string
	ConnectionsURL string
	RedirectURL    string
}

// OAuthClient implements gateways.OAuthGateway. Client id and secret differ per company,
// so an oauth2.Config is built per call.
type OAuthClient struct {
	endpoints  OAuthEndpoints
	httpClient *http.Client
	// connections reuses the JSON client; the connections URL is absolute.
	connections *Client
}

// NewOAuthClient shares the HTTP client of api for token and connection calls.
func NewOAuthClient(endpoints OAuthEndpoints, api *Client) *OAuthClient {
	return &OAuthClient{
		endpoints:   endpoints,
		httpClient:  api.httpClient,
		connections: &Client{httpClient: api.httpClient},
	}
}

var _ gateways.OAuthGateway = (*OAuthClient)(nil)

func (o *OAuthClient) config(client gateways.OAuthClient) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     client.ClientID,
		ClientSecret: client.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:   o.endpoints.AuthURL,
			TokenURL:  o.endpoints.TokenURL,
			AuthStyle: oauth2.AuthStyleInHeader,
		},
		RedirectURL: o.endpoints.RedirectURL,
		Scopes:      client.Scopes,
	}
}

func (o *OAuthClient) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
}

// AuthCodeURL builds the authorize URL the user is redirected to.
func (o *OAuthClient) AuthCodeURL(client gateways.OAuthClient, state string) string {
	return o.config(client).AuthCodeURL(state)
}

// Exchange trades an authorization code for tokens.
func (o *OAuthClient) Exchange(ctx context.Context, client gateways.OAuthClient, code string) (domain.TokenSet, error) {
	tok, err := o.config(client).Exchange(o.withHTTPClient(ctx), code)
	if err != nil {
		return domain.TokenSet{}, translateTokenError(err)
	}
	return toTokenSet(tok), nil
}

// Refresh runs the refresh_token grant once.
func (o *OAuthClient) Refresh(ctx context.Context, client gateways.OAuthClient, refreshToken string) (domain.TokenSet, error) {
	if refreshToken == "" {
		return domain.TokenSet{}, errors.New("xero: no refresh token stored")
	}
	// An empty access token makes the source go straight to the token endpoint.
	src := o.config(client).TokenSource(o.withHTTPClient(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return domain.TokenSet{}, translateTokenError(err)
	}
	ts := toTokenSet(tok)
	if ts.RefreshToken == "" {
		ts.RefreshToken = refreshToken
	}
	return ts, nil
}

type xeroConnection struct {
	ID         string `json:"id"`
	TenantID   string `json:"tenantId"`
	TenantType string `json:"tenantType"`
	TenantName string `json:"tenantName"`
}

// Connections lists the tenants the access token may act on, in Xero's order.
func (o *OAuthClient) Connections(ctx context.Context, accessToken string) ([]domain.Tenant, error) {
	var conns []xeroConnection
	if err := o.connections.do(ctx, domain.XeroAuth{AccessToken: accessToken}, http.MethodGet, o.endpoints.ConnectionsURL, nil, nil, &conns); err != nil {
		return nil, err
	}
	out := make([]domain.Tenant, 0, len(conns))
	for _, c := range conns {
		out = append(out, domain.Tenant{ID: c.TenantID, Name: c.TenantName, Type: c.TenantType})
	}
	return out, nil
}

func toTokenSet(tok *oauth2.Token) domain.TokenSet {
	return domain.TokenSet{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		Expiry:       tok.Expiry,
	}
}

func translateTokenError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		msg := re.ErrorDescription
		if msg == "" {
			msg = re.ErrorCode
		}
		if msg == "" {
			msg = string(re.Body)
		}
		status := http.StatusBadGateway
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		return &apperrors.ExternalAPIError{Service: identityService, Status: status, Message: msg}
	}
	return err
}
