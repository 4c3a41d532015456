package shopify

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed: %d - %s", e.Status, strings.TrimSpace(e.Body))
}

// Unauthorized reports whether the shop rejected the access token.
func (e *APIError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

// ExpiredCredentialError means the stored access token no longer works and the
// merchant has to re-run the OAuth flow. Retrying cannot help.
type ExpiredCredentialError struct {
	Shop string
}

func (e *ExpiredCredentialError) Error() string {
	return "access token is invalid or expired for shop: " + e.Shop
}

// TransientFetchError wraps any other failure while paging the catalog.
type TransientFetchError struct {
	Shop string
	Err  error
}

func (e *TransientFetchError) Error() string {
	return fmt.Sprintf("failed to fetch products for %s: %v", e.Shop, e.Err)
}

func (e *TransientFetchError) Unwrap() error {
	return e.Err
}

func classifyFetchError(shop string, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Unauthorized() {
		return &ExpiredCredentialError{Shop: shop}
	}
	return &TransientFetchError{Shop: shop, Err: err}
}
