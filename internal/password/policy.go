// Package password implements the credential policy: format checks for
// emails and passwords, and generation of random initial passwords.
package password

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
	"unicode"
)

const (
	upperChars   = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	lowerChars   = "abcdefghijklmnopqrstuvwxyz"
	digitChars   = "0123456789"
	specialChars = "@#$%^&+=-_'.!"

	generatedLength = 10
	minLength       = 6
	maxLength       = 40
)

var emailPattern = regexp.MustCompile(`^[\w\-.]+@([\w\-]+\.)+[\w\-]{2,4}$`)

func CheckEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// CheckPassword enforces length 6-40 with at least one uppercase letter, one
// digit and one symbol from specialChars. Written as explicit class scans
// because RE2 has no lookahead.
func CheckPassword(password string) bool {
	length := len([]rune(password))
	if length < minLength || length > maxLength {
		return false
	}

	var hasUpper, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(specialChars, r):
			hasSpecial = true
		}
	}

	return hasUpper && hasDigit && hasSpecial
}

// Generate produces a random password of generatedLength characters with at
// least one character from each class, then shuffles so the guaranteed
// characters are not positionally predictable. All randomness is crypto/rand.
func Generate() (string, error) {
	all := upperChars + lowerChars + digitChars + specialChars

	out := make([]rune, 0, generatedLength)
	for _, set := range []string{upperChars, lowerChars, digitChars, specialChars} {
		r, err := randomRune(set)
		if err != nil {
			return "", err
		}
		out = append(out, r)
	}

	for len(out) < generatedLength {
		r, err := randomRune(all)
		if err != nil {
			return "", err
		}
		out = append(out, r)
	}

	// Fisher-Yates
	for i := len(out) - 1; i > 0; i-- {
		j, err := randomIndex(i + 1)
		if err != nil {
			return "", err
		}
		out[i], out[j] = out[j], out[i]
	}

	return string(out), nil
}

func randomRune(set string) (rune, error) {
	idx, err := randomIndex(len(set))
	if err != nil {
		return 0, err
	}
	return rune(set[idx]), nil
}

func randomIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("read random index: %w", err)
	}
	return int(v.Int64()), nil
}
