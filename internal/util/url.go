package util

import (
	"net/url"
	"strings"
)

// VerificationURL builds the browser URL a user opens to approve a CLI login,
// with the user code pre-filled as a query parameter.
func VerificationURL(frontendURL, userCode string) string {
	base := strings.TrimRight(frontendURL, "/")
	return base + "/cli/verify?userCode=" + url.QueryEscape(userCode)
}
