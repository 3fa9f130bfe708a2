// Package models holds the data shared by the client core and the record
// service: user records, the language tag and the singleton session value.
package models

import "strings"

// Goal is the number of stamps that earns a reward.
const Goal = 15

type Language string

const (
	LanguageKhmer   Language = "kh"
	LanguageEnglish Language = "en"

	// DefaultLanguage is the primary locale.
	DefaultLanguage = LanguageKhmer
)

func (l Language) Valid() bool {
	return l == LanguageKhmer || l == LanguageEnglish
}

// ParseLanguage maps a tag onto a supported language; anything else falls
// back to DefaultLanguage.
func ParseLanguage(s string) Language {
	l := Language(strings.ToLower(strings.TrimSpace(s)))
	if !l.Valid() {
		return DefaultLanguage
	}
	return l
}

// User is one customer record. Field order is the stable export order.
type User struct {
	Username string   `json:"username"`
	Stamps   int      `json:"stamps"`
	Language Language `json:"language"`
}

// NormalizeUsername returns the canonical (trimmed, lower-cased) form of a
// username.
func NormalizeUsername(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ClampStamps bounds n into [0, Goal].
func ClampStamps(n int) int {
	if n < 0 {
		return 0
	}
	if n > Goal {
		return Goal
	}
	return n
}

// Normalized returns a copy with the username in canonical form and an empty
// language replaced by the default one. Stamps are left untouched.
func (u User) Normalized() User {
	u.Username = NormalizeUsername(u.Username)
	if u.Language == "" {
		u.Language = DefaultLanguage
	}
	return u
}

// RewardReached reports whether the card is full.
func (u User) RewardReached() bool {
	return u.Stamps >= Goal
}
