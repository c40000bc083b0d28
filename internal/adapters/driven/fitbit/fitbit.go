// Package fitbit provides the provider-facing adapters: the OAuth2
// token endpoint client and the intraday heart-rate API client.
package fitbit

// Provider endpoints. The authorization URL is browser-facing; the
// token and API URLs are called directly.
const (
	AuthorizationURL  = "https://www.fitbit.com/oauth2/authorize"
	DefaultTokenURL   = "https://api.fitbit.com/oauth2/token"
	DefaultAPIBaseURL = "https://api.fitbit.com"
)

// Scopes is the full scope set requested at authorization. Requesting
// everything up front avoids a re-authorization round when new data
// types are bridged later.
var Scopes = []string{
	"activity",
	"heartrate",
	"nutrition",
	"oxygen_saturation",
	"respiratory_rate",
	"settings",
	"sleep",
	"temperature",
	"weight",
}
