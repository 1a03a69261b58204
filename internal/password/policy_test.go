package password

import (
	"strings"
	"testing"
	"unicode"

	"github.com/stretchr/testify/require"
)

func TestCheckEmail(t *testing.T) {
	t.Parallel()

	valid := []string{
		"user@example.com",
		"first.last@example.com",
		"user-name@sub.domain.org",
		"user_1@example.io",
	}
	for _, email := range valid {
		require.True(t, CheckEmail(email), "expected %q to be valid", email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@no-local-part.com",
		"user@",
		"user@domain",
		"user@domain.toolongtld",
		"user name@example.com",
	}
	for _, email := range invalid {
		require.False(t, CheckEmail(email), "expected %q to be invalid", email)
	}
}

func TestCheckPassword(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		password string
		want     bool
	}{
		{"all classes present", "Abc123!", true},
		{"minimum length", "A1!bcd", true},
		{"maximum length", "A1!" + strings.Repeat("a", 37), true},
		{"too short", "A1!bc", false},
		{"too long", "A1!" + strings.Repeat("a", 38), false},
		{"no uppercase", "abc123!", false},
		{"no digit", "Abcdef!", false},
		{"no special", "Abc1234", false},
		{"special outside allowed set", "Abc123~", false},
		{"empty", "", false},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, CheckPassword(tc.password))
		})
	}
}

func TestGenerate(t *testing.T) {
	t.Parallel()

	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		generated, err := Generate()
		require.NoError(t, err)
		require.Len(t, []rune(generated), generatedLength)

		// Every generated password must satisfy the same policy the API
		// enforces on user-chosen passwords.
		require.True(t, CheckPassword(generated), "generated password %q fails policy", generated)

		var hasLower bool
		for _, r := range generated {
			if unicode.IsLower(r) {
				hasLower = true
			}
		}
		require.True(t, hasLower, "generated password %q has no lowercase", generated)

		seen[generated] = struct{}{}
	}

	require.Greater(t, len(seen), 45, "generated passwords should be overwhelmingly unique")
}
