package bot

import (
	"strconv"

	"golang.org/x/oauth2"
)

// AuthorizeURL is discord oauth2 authorization endpoint
const AuthorizeURL = "https://discord.com/oauth2/authorize"

// InviteURL returns url adding bot with given application id and permissions to a server
func InviteURL(clientID string, permissions int64) string {
	conf := &oauth2.Config{
		ClientID: clientID,
		Endpoint: oauth2.Endpoint{
			AuthURL: AuthorizeURL,
		},
		Scopes: []string{"bot", "applications.commands"},
	}

	return conf.AuthCodeURL("", oauth2.SetAuthURLParam("permissions", strconv.FormatInt(permissions, 10)))
}
