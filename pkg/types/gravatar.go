package types

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// Gravatar defaults.
const (
	DefaultGravatarRating   = "g"
	DefaultGravatarImageset = "mm"
	DefaultGravatarSize     = 80
)

var gravatarRatings = map[string]bool{"g": true, "pg": true, "r": true, "x": true}

// GravatarURL builds the gravatar image URL for an email address. An
// unknown rating falls back to "g" and an empty imageset to "mm".
func GravatarURL(email, rating, imageset string, size int, https bool) string {
	if !gravatarRatings[rating] {
		rating = DefaultGravatarRating
	}
	if imageset == "" {
		imageset = DefaultGravatarImageset
	}
	scheme := "http"
	if https {
		scheme = "https"
	}
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("%s://www.gravatar.com/avatar/%s?s=%d&d=%s&r=%s",
		scheme, hex.EncodeToString(sum[:]), size, url.QueryEscape(imageset), rating)
}

// Gravatar returns the gravatar URL for the comment's email.
func (c *Comment) Gravatar(rating, imageset string, size int) string {
	return GravatarURL(c.email, rating, imageset, size, c.services().Config.HTTPS)
}
