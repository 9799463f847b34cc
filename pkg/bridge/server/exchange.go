package server

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"

	"github.com/ahbyass/shopify-admin-api-token-generator/pkg/bridge"
)

// exchangeTimeout bounds the code-exchange call. A timeout is an upstream
// failure the user retries by restarting from the install endpoint.
const exchangeTimeout = 10 * time.Second

// exchange posts the authorization code to the shop's access_token endpoint
// and returns the resulting grant. The state token is already consumed by
// the time this runs, so no registry lock is held across the network call.
func (s *Server) exchange(ctx context.Context, shop, code string) (*bridge.AccessGrant, error) {
	ctx, cancel := context.WithTimeout(ctx, exchangeTimeout)
	defer cancel()

	var opts []oauth2.AuthCodeOption
	if s.Config.OnlineTokens {
		opts = append(opts, oauth2.SetAuthURLParam("grant_options[]", "per-user"))
	}

	// AuthStyleInParams sends client_id and client_secret form-encoded in
	// the request body. A response without an access_token field is an
	// error from Exchange.
	token, err := s.oauthConfig(shop).Exchange(ctx, code, opts...)
	if err != nil {
		return nil, fmt.Errorf("exchanging code with %s: %w", shop, err)
	}

	scope, _ := token.Extra("scope").(string)
	return &bridge.AccessGrant{AccessToken: token.AccessToken, Scope: scope}, nil
}
