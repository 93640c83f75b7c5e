// Package signedrequest parses and generates the platform's signed
// requests: payloads delivered to embedded applications as
// "<signature>.<payload>", where both segments are base64url-encoded
// and the signature is an HMAC-SHA256 over the encoded payload keyed
// with the application secret.
package signedrequest

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Errors returned by Parse.
var (
	// ErrMalformed indicates the input is not two dot-separated segments.
	ErrMalformed = errors.New("signed request malformed")

	// ErrCorruptPayload indicates the payload could not be decoded.
	ErrCorruptPayload = errors.New("signed request had a corrupted payload")

	// ErrUnknownAlgorithm indicates an algorithm other than HMAC-SHA256.
	ErrUnknownAlgorithm = errors.New("signed request is using an unknown algorithm")

	// ErrSignatureMismatch indicates the signature did not verify.
	ErrSignatureMismatch = errors.New("signed request signature mismatch")
)

// SignedRequest describes one verified signed request.
type SignedRequest struct {
	// User describes the user that generated the signed request.
	User User

	// Page describes the page the request was generated from, if any.
	Page *Page

	// Data is the contents of the app_data parameter, if any.
	Data any

	// Raw is the decoded payload in its original form. Nil for
	// instances constructed by hand.
	Raw map[string]any
}

// User describes a platform user.
type User struct {
	// ID is the user's platform ID. Empty when the user has not
	// authorized the application.
	ID string

	// Locale and Country as reported by the platform.
	Locale  string
	Country string

	// AgeMin and AgeMax bound the user's age bracket. Both zero when
	// the payload carried no age.
	AgeMin int
	AgeMax int

	// OAuthToken is the user's access token, nil when the user has not
	// authorized the application.
	OAuthToken *OAuthToken
}

// HasAuthorizedApplication reports whether the user granted the
// application an access token.
func (u User) HasAuthorizedApplication() bool {
	return u.OAuthToken != nil
}

// OAuthToken is an access token issued by a user.
type OAuthToken struct {
	Token    string
	IssuedAt time.Time

	// ExpiresAt is zero when the token never expires.
	ExpiresAt time.Time
}

// HasExpired reports whether the token is past its expiry.
func (t *OAuthToken) HasExpired() bool {
	if t.ExpiresAt.IsZero() {
		return false
	}
	return t.ExpiresAt.Before(time.Now())
}

// Page describes the platform page a signed request originated from.
type Page struct {
	ID      string
	IsLiked bool
	IsAdmin bool
}

// Parse verifies and decodes a signed request with the application
// secret key.
func Parse(signedRequest string, applicationSecret []byte) (*SignedRequest, error) {
	encodedSignature, encodedPayload, found := strings.Cut(signedRequest, ".")
	if !found {
		return nil, ErrMalformed
	}

	signature, err := decodeSegment(encodedSignature)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}
	payload, err := decodeSegment(encodedPayload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}

	var data map[string]any
	if err := json.Unmarshal(payload, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}

	algorithm, _ := data["algorithm"].(string)
	if !strings.EqualFold(algorithm, "HMAC-SHA256") {
		return nil, ErrUnknownAlgorithm
	}

	mac := hmac.New(sha256.New, applicationSecret)
	mac.Write([]byte(encodedPayload))
	if !hmac.Equal(signature, mac.Sum(nil)) {
		return nil, ErrSignatureMismatch
	}

	sr := &SignedRequest{
		User: parseUser(data),
		Data: data["app_data"],
		Raw:  data,
	}

	if pageData, ok := data["page"].(map[string]any); ok {
		sr.Page = &Page{
			ID:      idString(pageData["id"]),
			IsLiked: boolValue(pageData["liked"]),
			IsAdmin: boolValue(pageData["admin"]),
		}
	}

	return sr, nil
}

// Generate produces a signed request from this instance, signed with
// the application secret key. Parse accepts its output.
func (sr *SignedRequest) Generate(applicationSecret []byte) (string, error) {
	payload := map[string]any{
		"algorithm": "HMAC-SHA256",
	}

	if sr.Data != nil {
		payload["app_data"] = sr.Data
	}

	if sr.Page != nil {
		page := map[string]any{}
		if sr.Page.ID != "" {
			page["id"] = sr.Page.ID
		}
		if sr.Page.IsLiked {
			page["liked"] = true
		}
		if sr.Page.IsAdmin {
			page["admin"] = true
		}
		payload["page"] = page
	}

	user := map[string]any{}
	if sr.User.Country != "" {
		user["country"] = sr.User.Country
	}
	if sr.User.Locale != "" {
		user["locale"] = sr.User.Locale
	}
	if sr.User.AgeMax > 0 {
		user["age"] = map[string]any{
			"min": sr.User.AgeMin,
			"max": sr.User.AgeMax,
		}
	}
	payload["user"] = user

	if token := sr.User.OAuthToken; token != nil {
		if token.Token != "" {
			payload["oauth_token"] = token.Token
		}
		if token.ExpiresAt.IsZero() {
			payload["expires"] = 0
		} else {
			payload["expires"] = token.ExpiresAt.Unix()
		}
		if !token.IssuedAt.IsZero() {
			payload["issued_at"] = token.IssuedAt.Unix()
		}
	}

	if sr.User.ID != "" {
		payload["user_id"] = sr.User.ID
	}

	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("encode payload: %w", err)
	}
	encodedPayload := base64.URLEncoding.EncodeToString(encoded)

	mac := hmac.New(sha256.New, applicationSecret)
	mac.Write([]byte(encodedPayload))
	encodedSignature := base64.URLEncoding.EncodeToString(mac.Sum(nil))

	return encodedSignature + "." + encodedPayload, nil
}

func parseUser(data map[string]any) User {
	user := User{
		ID: idString(data["user_id"]),
	}

	if userData, ok := data["user"].(map[string]any); ok {
		user.Locale, _ = userData["locale"].(string)
		user.Country, _ = userData["country"].(string)

		if age, ok := userData["age"].(map[string]any); ok {
			user.AgeMin = intValue(age["min"])
			if max, ok := age["max"]; ok {
				user.AgeMax = intValue(max)
			} else {
				// Open-ended brackets cap at 99.
				user.AgeMax = 99
			}
		}
	}

	if token, ok := data["oauth_token"].(string); ok {
		user.OAuthToken = &OAuthToken{
			Token:    token,
			IssuedAt: time.Unix(int64(intValue(data["issued_at"])), 0),
		}
		if expires := intValue(data["expires"]); expires > 0 {
			user.OAuthToken.ExpiresAt = time.Unix(int64(expires), 0)
		}
	}

	return user
}

// decodeSegment decodes a base64url segment, restoring padding the
// platform strips.
func decodeSegment(segment string) ([]byte, error) {
	if m := len(segment) % 4; m != 0 {
		segment += strings.Repeat("=", 4-m)
	}
	return base64.URLEncoding.DecodeString(segment)
}

func idString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	default:
		return ""
	}
}

func intValue(value any) int {
	f, _ := value.(float64)
	return int(f)
}

func boolValue(value any) bool {
	b, _ := value.(bool)
	return b
}
