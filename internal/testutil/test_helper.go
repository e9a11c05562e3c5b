// Package testutil holds shared helpers for package tests.
package testutil

import (
	"os"

	"gorm.io/gorm"
)

// SetupTestEnv sets the environment variables services read during tests.
func SetupTestEnv() {
	os.Setenv("JWT_SECRET", "test-secret-key-for-testing-only")
	os.Setenv("PASSWORD_MIN_LENGTH", "8")
}

// TeardownTestEnv clears them again.
func TeardownTestEnv() {
	os.Unsetenv("JWT_SECRET")
	os.Unsetenv("PASSWORD_MIN_LENGTH")
}

// RecordNotFound returns the gorm sentinel for missing rows, so repository
// doubles can fail the way the real ones do.
func RecordNotFound() error {
	return gorm.ErrRecordNotFound
}
