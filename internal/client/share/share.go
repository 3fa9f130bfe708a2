// Package share builds the links a customer hands out: the profile link that
// logs them in on open, and the QR image URL that encodes it.
package share

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/stampcard/internal/models"
)

const (
	DefaultQREndpoint = "https://api.qrserver.com/v1/create-qr-code/"
	QRSize            = "200x200"
)

// ProfileURL returns <base>/<escaped username>/profile.
func ProfileURL(base, username string) (string, error) {
	name := models.NormalizeUsername(username)
	if name == "" {
		return "", fmt.Errorf("empty username")
	}

	base = strings.TrimRight(base, "/")
	if _, err := url.Parse(base); err != nil {
		return "", fmt.Errorf("profile base %q: %w", base, err)
	}

	return base + "/" + url.PathEscape(name) + "/profile", nil
}

// QRCodeURL returns the image endpoint URL encoding profileURL.
func QRCodeURL(endpoint, profileURL string) (string, error) {
	if endpoint == "" {
		endpoint = DefaultQREndpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("qr endpoint %q: %w", endpoint, err)
	}

	q := "size=" + QRSize + "&data=" + url.QueryEscape(profileURL)
	if u.RawQuery != "" {
		q = u.RawQuery + "&" + q
	}
	u.RawQuery = q
	return u.String(), nil
}
