package validation

import (
	"regexp"
	"strings"
)

const (
	// MobileLength - длина номера телефона без кода страны.
	MobileLength = 10
	// MaxPasswordBytes - предел bcrypt, считается в байтах, а не в символах.
	MaxPasswordBytes = 72
)

var mobileRegex = regexp.MustCompile(`^[0-9]{10}$`)

// NormalizeEmail приводит email к каноничному виду: без пробелов по краям, в нижнем регистре.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
