package validation

import (
	"os"
	"strings"
	"testing"
)

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		expected bool
	}{
		{"Valid username", "john_doe", true},
		{"Valid username with numbers", "user123", true},
		{"Valid username minimum length", "abc", true},
		{"Valid username maximum length", "a1234567890123456789012345678901", true},
		{"Username too short", "ab", false},
		{"Username too long", "a12345678901234567890123456789012", false},
		{"Username with spaces", "john doe", false},
		{"Username with special chars", "john-doe", false},
		{"Username with uppercase", "JohnDoe", true},
		{"Empty username", "", false},
		{"Username with only numbers", "12345", true},
		{"Username with surrounding spaces", "  john_doe  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidateUsername(tt.username)
			if result != tt.expected {
				t.Errorf("ValidateUsername(%q) = %v, want %v", tt.username, result, tt.expected)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	os.Unsetenv("PASSWORD_MIN_LENGTH")

	tests := []struct {
		name     string
		password string
		expected bool
	}{
		{"Valid password", "mysecurepassword123", true},
		{"Valid password minimum length", "12345678", true},
		{"Password too short", "short", false},
		{"Password with special chars", "p@ssw0rd!123", true},
		{"Password with spaces", "my secure password", true},
		{"Empty password", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ValidatePassword(tt.password)
			if result != tt.expected {
				t.Errorf("ValidatePassword(%q) = %v, want %v", tt.password, result, tt.expected)
			}
		})
	}
}

func TestPasswordMinLength(t *testing.T) {
	tests := []struct {
		name        string
		envValue    string
		expected    int
		shouldUnset bool
	}{
		{"Default minimum length", "", 8, true},
		{"Custom minimum length", "12", 12, false},
		{"Invalid env value", "invalid", 8, false},
		{"Below floor", "2", 8, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldUnset {
				os.Unsetenv("PASSWORD_MIN_LENGTH")
			} else {
				os.Setenv("PASSWORD_MIN_LENGTH", tt.envValue)
			}

			result := PasswordMinLength()
			if result != tt.expected {
				t.Errorf("PasswordMinLength() = %d, want %d", result, tt.expected)
			}
		})
	}
	os.Unsetenv("PASSWORD_MIN_LENGTH")
}

func TestMaxMessageLength(t *testing.T) {
	os.Unsetenv("MAX_MESSAGE_LENGTH")
	if got := MaxMessageLength(); got != 4000 {
		t.Errorf("MaxMessageLength() = %d, want 4000", got)
	}
	os.Setenv("MAX_MESSAGE_LENGTH", "500")
	if got := MaxMessageLength(); got != 500 {
		t.Errorf("MaxMessageLength() = %d, want 500", got)
	}
	os.Setenv("MAX_MESSAGE_LENGTH", "-1")
	if got := MaxMessageLength(); got != 4000 {
		t.Errorf("MaxMessageLength() = %d, want 4000", got)
	}
	os.Unsetenv("MAX_MESSAGE_LENGTH")
}

func TestTrimAndLimit(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		limit    int
		expected string
	}{
		{"Normal string", "hello world", 20, "hello world"},
		{"String with spaces", "  hello world  ", 20, "hello world"},
		{"String exceeding limit", "hello world this is too long", 10, "hello worl"},
		{"Empty string", "", 20, ""},
		{"String at limit", "hello", 5, "hello"},
		{"No limit", strings.Repeat("a", 100), 0, strings.Repeat("a", 100)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := TrimAndLimit(tt.input, tt.limit)
			if result != tt.expected {
				t.Errorf("TrimAndLimit(%q, %d) = %q, want %q", tt.input, tt.limit, result, tt.expected)
			}
		})
	}
}

func TestValidateGroupName(t *testing.T) {
	tests := []struct {
		name     string
		group    string
		expected bool
	}{
		{"Valid name", "Engineering", true},
		{"Name with spaces", "Project Alpha", true},
		{"Empty name", "", false},
		{"Whitespace only", "   ", false},
		{"Too long", strings.Repeat("x", 65), false},
		{"At limit", strings.Repeat("x", 64), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateGroupName(tt.group); got != tt.expected {
				t.Errorf("ValidateGroupName(%q) = %v, want %v", tt.group, got, tt.expected)
			}
		})
	}
}
