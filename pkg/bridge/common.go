package bridge

const (
	InstallEndpoint  = "/install"
	CallbackEndpoint = "/auth/callback"
)

// AccessGrant is the result of a successful authorization-code exchange
// with a shop's admin token endpoint.
type AccessGrant struct {
	// AccessToken is the long-lived admin API token for the shop.
	AccessToken string `json:"access_token"`

	// Scope is the comma-separated list of scopes the merchant granted,
	// which may be narrower than the list requested at install time.
	Scope string `json:"scope"`
}
