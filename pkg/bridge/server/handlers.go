package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/ahbyass/shopify-admin-api-token-generator/pkg/bridge"
	"github.com/ahbyass/shopify-admin-api-token-generator/pkg/bridge/config"
	"github.com/ahbyass/shopify-admin-api-token-generator/pkg/bridge/shopify"
	"github.com/ahbyass/shopify-admin-api-token-generator/pkg/bridge/state"
)

// Server handles the install and callback endpoints of the token flow.
type Server struct {
	Config config.Config
	Log    *zap.SugaredLogger
	States state.Store

	// EndpointFor maps a shop domain to its OAuth endpoints. Tests point it
	// at a local fake.
	EndpointFor func(shop string) oauth2.Endpoint
}

func New(cfg config.Config, log *zap.SugaredLogger, states state.Store) *Server {
	return &Server{
		Config:      cfg,
		Log:         log,
		States:      states,
		EndpointFor: shopify.Endpoint,
	}
}

// Router returns the HTTP routes. Both endpoints are GET-only; gorilla
// answers other methods with 405.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc(bridge.InstallEndpoint, s.Install).Methods(http.MethodGet)
	r.HandleFunc(bridge.CallbackEndpoint, s.Callback).Methods(http.MethodGet)
	return r
}

func (s *Server) oauthConfig(shop string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.Config.APIKey,
		ClientSecret: s.Config.APISecret,
		RedirectURL:  s.Config.RedirectURI,
		// Shopify expects the comma-separated scope list as a single scope
		// value; oauth2 would join a slice with spaces.
		Scopes:   []string{s.Config.Scopes},
		Endpoint: s.EndpointFor(shop),
	}
}

func (s *Server) fail(w http.ResponseWriter, req *http.Request, err *flowError) {
	code := err.status()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	fmt.Fprintln(w, err.public())

	s.Log.Errorw("request rejected",
		"remote", req.RemoteAddr,
		"uri", req.RequestURI,
		"status", code,
		"kind", err.kindLabel(),
		"error", err.err,
	)
}

// Install starts the authorization flow: validate the shop, issue a state
// token, and send the browser to the shop's authorize screen.
func (s *Server) Install(w http.ResponseWriter, req *http.Request) {
	shop := req.URL.Query().Get("shop")
	if !shopify.IsValidShop(shop) {
		s.fail(w, req, inputErr(fmt.Errorf("invalid shop domain: %q", shop)))
		return
	}

	token, err := s.States.Issue()
	if err != nil {
		s.fail(w, req, internalErr(fmt.Errorf("issuing state token: %w", err)))
		return
	}

	authURL := s.oauthConfig(shop).AuthCodeURL(token)
	http.Redirect(w, req, authURL, http.StatusFound)
	s.Log.Infow("install redirect", "remote", req.RemoteAddr, "shop", shop)
}

// Callback validates the redirect back from the shop and exchanges the
// authorization code for an access token.
//
// Gate order matters: the state token is consumed only after the signature
// check passes, so an unauthenticated caller can neither burn another
// flow's state nor probe which tokens exist.
func (s *Server) Callback(w http.ResponseWriter, req *http.Request) {
	params := req.URL.Query()

	shop := params.Get("shop")
	if !shopify.IsValidShop(shop) {
		s.fail(w, req, inputErr(fmt.Errorf("invalid shop domain: %q", shop)))
		return
	}

	code := params.Get("code")
	if code == "" {
		s.fail(w, req, inputErr(fmt.Errorf("authorization code missing from callback")))
		return
	}

	stateToken := params.Get("state")
	if stateToken == "" || !s.States.Peek(stateToken) {
		s.fail(w, req, authErr(fmt.Errorf("state token missing, unknown, or expired")))
		return
	}

	if !shopify.VerifyHMAC(params, []byte(s.Config.APISecret)) {
		s.fail(w, req, authErr(fmt.Errorf("hmac verification failed for shop %s", shop)))
		return
	}

	if !s.States.Consume(stateToken) {
		// Lost a race with a concurrent callback, or expired between Peek
		// and now.
		s.fail(w, req, authErr(fmt.Errorf("state token already redeemed")))
		return
	}

	grant, err := s.exchange(req.Context(), shop, code)
	if err != nil {
		s.fail(w, req, upstreamErr(err))
		return
	}

	s.Log.Infow("access token issued",
		"shop", shop,
		"scope", grant.Scope,
		"access_token", grant.AccessToken,
		"online", s.Config.OnlineTokens,
	)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "App installed for %s.\nGranted scopes: %s\nThe access token has been written to the server log.\n", shop, grant.Scope)
}
