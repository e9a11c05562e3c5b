package service

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"hash"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/relaychat/relaychat-backend/internal/models"
	"github.com/relaychat/relaychat-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
)

type AuthService struct {
	userRepo repository.UserRepositoryInterface
}

func NewAuthService(userRepo repository.UserRepositoryInterface) *AuthService {
	return &AuthService{userRepo: userRepo}
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthResponse struct {
	Token string              `json:"token"`
	User  models.UserResponse `json:"user"`
}

// Login verifies credentials against whatever hash scheme the stored value
// uses and issues an access token on success.
func (s *AuthService) Login(input LoginInput) (*AuthResponse, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, &ValidationError{Reason: "missing credentials"}
	}

	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		return nil, ErrUnauthorized
	}
	if !user.IsActive() {
		return nil, ErrUnauthorized
	}
	if !VerifyPassword(user.Password, input.Password) {
		return nil, ErrUnauthorized
	}

	sessionID := uuid.NewString()
	if err := s.userRepo.RecordLogin(user.ID, sessionID); err != nil {
		log.Printf("failed to record login for user %d: %v", user.ID, err)
	}

	token, err := s.generateToken(user)
	if err != nil {
		return nil, persistence(err)
	}

	return &AuthResponse{Token: token, User: user.ToResponse()}, nil
}

func (s *AuthService) Logout(userID uint) error {
	return s.userRepo.RecordLogout(userID)
}

func (s *AuthService) generateToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"exp":      time.Now().Add(time.Hour * 24 * 7).Unix(), // 7 days
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(os.Getenv("JWT_SECRET")))
}

// VerifyPassword checks a plaintext password against a stored credential of
// unknown provenance. Schemes are tried in fixed priority order; the first
// one that recognizes the stored format is authoritative, so a bcrypt
// mismatch is a denial even if the raw strings happen to be equal. Plaintext
// comparison is the last resort only when no scheme recognized the format.
func VerifyPassword(stored, password string) bool {
	stored = strings.TrimSpace(stored)
	if stored == "" {
		return false
	}

	// 1) Salted adaptive hash: "pbkdf2:<algo>[:<iterations>]$<salt>$<hexhash>"
	if strings.HasPrefix(stored, "pbkdf2:") {
		return checkPBKDF2(stored, password)
	}

	// 2) bcrypt family
	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}

	// 3) Legacy native hash: "*" + uppercase hex SHA1(SHA1(password))
	if strings.HasPrefix(stored, "*") && len(stored) == 41 {
		inner := sha1.Sum([]byte(password))
		outer := sha1.Sum(inner[:])
		candidate := "*" + strings.ToUpper(hex.EncodeToString(outer[:]))
		return subtle.ConstantTimeCompare([]byte(candidate), []byte(strings.ToUpper(stored))) == 1
	}

	// 4) Bare unsalted hex digests, distinguished purely by length.
	if isHex(stored) {
		lower := strings.ToLower(stored)
		switch len(lower) {
		case 32:
			sum := md5.Sum([]byte(password))
			return hex.EncodeToString(sum[:]) == lower
		case 40:
			sum := sha1.Sum([]byte(password))
			return hex.EncodeToString(sum[:]) == lower
		case 64:
			sum := sha256.Sum256([]byte(password))
			return hex.EncodeToString(sum[:]) == lower
		}
	}

	// 5) Plaintext equality, only for unrecognized formats.
	return subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// checkPBKDF2 verifies werkzeug-style hashes: pbkdf2:sha256:600000$salt$hex.
func checkPBKDF2(stored, password string) bool {
	parts := strings.SplitN(stored, "$", 3)
	if len(parts) != 3 {
		return false
	}
	method, salt, expected := parts[0], parts[1], parts[2]

	methodParts := strings.Split(method, ":")
	if len(methodParts) < 2 {
		return false
	}

	var newHash func() hash.Hash
	switch methodParts[1] {
	case "sha256":
		newHash = sha256.New
	case "sha1":
		newHash = sha1.New
	default:
		return false
	}

	iterations := 260000
	if len(methodParts) >= 3 {
		n, err := strconv.Atoi(methodParts[2])
		if err != nil || n <= 0 {
			return false
		}
		iterations = n
	}

	expectedBytes, err := hex.DecodeString(expected)
	if err != nil {
		return false
	}

	derived := pbkdf2.Key([]byte(password), []byte(salt), iterations, len(expectedBytes), newHash)
	return subtle.ConstantTimeCompare(derived, expectedBytes) == 1
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
