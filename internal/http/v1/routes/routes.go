package routes

import (
	"net/url"

	"github.com/danielgtaylor/huma/v2"

	"github.com/janisto/fitsocial/internal/http/v1/feed"
	"github.com/janisto/fitsocial/internal/http/v1/follows"
	"github.com/janisto/fitsocial/internal/http/v1/profile"
	"github.com/janisto/fitsocial/internal/http/v1/profiles"
	"github.com/janisto/fitsocial/internal/http/v1/session"
	"github.com/janisto/fitsocial/internal/http/v1/settings"
	"github.com/janisto/fitsocial/internal/platform/auth"
	"github.com/janisto/fitsocial/internal/social"
)

// Register wires all HTTP routes into the provided API router.
func Register(api huma.API, client *social.Client, tokens auth.TokenStore) {
	prefix := apiPrefix(api)

	// Secured operations resolve the signed-in identity first.
	api.UseMiddleware(auth.NewSessionMiddleware(api, client.Identity))

	session.Register(api, session.Deps{
		Tokens:     tokens,
		Identities: client.Identity,
		Sessions:   client,
	})
	profile.Register(api, client.Directory)
	profiles.Register(api, client.Directory)
	follows.Register(api, client.Graph, prefix)
	feed.Register(api, client.Feed, prefix)
	settings.Register(api, client.Settings)
}

func apiPrefix(api huma.API) string {
	for _, s := range api.OpenAPI().Servers {
		if u, err := url.Parse(s.URL); err == nil && u.Path != "" {
			return u.Path
		}
	}
	return ""
}
