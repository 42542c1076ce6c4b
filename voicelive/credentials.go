package voicelive

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// credential injects authentication into the WebSocket handshake request.
type credential interface {
	authorize(ctx context.Context, header http.Header) error
	close()
}

// apiKeyCredential authenticates with a static subscription key.
type apiKeyCredential struct {
	key string
}

func (c *apiKeyCredential) authorize(_ context.Context, header http.Header) error {
	header.Set("api-key", c.key)
	return nil
}

func (c *apiKeyCredential) close() {}

// tokenCredential authenticates with an Entra ID client-credentials grant.
// Tokens are cached and refreshed by the underlying token source.
type tokenCredential struct {
	source oauth2.TokenSource
	cancel context.CancelFunc
}

func newTokenCredential(tenantID, clientID, clientSecret string) *tokenCredential {
	cfg := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", tenantID),
		Scopes:       []string{"https://ai.azure.com/.default"},
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &tokenCredential{
		source: cfg.TokenSource(ctx),
		cancel: cancel,
	}
}

func (c *tokenCredential) authorize(_ context.Context, header http.Header) error {
	token, err := c.source.Token()
	if err != nil {
		return fmt.Errorf("acquire token: %w", err)
	}
	header.Set("Authorization", token.Type()+" "+token.AccessToken)
	return nil
}

func (c *tokenCredential) close() {
	c.cancel()
}
