// Package shopify holds the protocol-specific pieces of the install flow:
// the shop domain guard, the callback HMAC scheme, and the per-shop OAuth
// endpoints.
package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/oauth2"
)

// Shopify sends two signature parameters on legacy callbacks; neither is
// part of the signed message.
const (
	HMACParam      = "hmac"
	signatureParam = "signature"
)

var shopPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]*\.myshopify\.com$`)

// IsValidShop reports whether shop is a plausible *.myshopify.com domain.
// This is a syntactic guard against host-header and redirect injection, not
// a check that the shop exists.
func IsValidShop(shop string) bool {
	return shopPattern.MatchString(shop)
}

// Endpoint returns the OAuth endpoints for a shop's admin.
func Endpoint(shop string) oauth2.Endpoint {
	return oauth2.Endpoint{
		AuthURL:   fmt.Sprintf("https://%s/admin/oauth/authorize", shop),
		TokenURL:  fmt.Sprintf("https://%s/admin/oauth/access_token", shop),
		AuthStyle: oauth2.AuthStyleInParams,
	}
}

// VerifyHMAC reports whether the hmac parameter in params matches the
// HMAC-SHA256 of the remaining parameters under secret. The comparison is
// constant-time and a missing hmac parameter is simply false; this function
// never panics on attacker-controlled input.
func VerifyHMAC(params url.Values, secret []byte) bool {
	provided := params.Get(HMACParam)
	if provided == "" {
		return false
	}
	expected := ComputeHMAC(params, secret)
	return hmac.Equal([]byte(expected), []byte(provided))
}

// ComputeHMAC returns the lowercase hex HMAC-SHA256 of the canonical signed
// message for params under secret.
func ComputeHMAC(params url.Values, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(signedMessage(params)))
	return hex.EncodeToString(mac.Sum(nil))
}

// signedMessage canonicalizes params the way Shopify documents: drop the
// hmac and signature parameters, join repeated values with commas in
// received order, sort the remaining keys bytewise, and percent-encode each
// key=value pair joined with &.
func signedMessage(params url.Values) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if k == HMACParam || k == signatureParam {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		v := strings.Join(params[k], ",")
		pairs = append(pairs, encodeComponent(k)+"="+encodeComponent(v))
	}
	return strings.Join(pairs, "&")
}

// encodeComponent percent-encodes s as a URL component. url.QueryEscape is
// form encoding, which renders spaces as "+"; the signed message needs %20.
func encodeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
