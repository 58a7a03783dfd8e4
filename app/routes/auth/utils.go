package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/gerarddekkers/builder-backend/app/config"
	"golang.org/x/crypto/bcrypt"
)

const tokenValidityHours = 24

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// Token format: base64url(userId:username:role:expiresAt:signature) without
// padding. Tokens in the older username:role:expiresAt:signature layout are
// still accepted.

func GenerateToken(userId int64, username, role string) string {
	expiresAt := time.Now().Add(tokenValidityHours * time.Hour).Unix()
	payload := strconv.FormatInt(userId, 10) + ":" + username + ":" + role + ":" + strconv.FormatInt(expiresAt, 10)
	signature := sign(payload)
	return base64.RawURLEncoding.EncodeToString([]byte(payload + ":" + signature))
}

func ValidateToken(token string) bool {
	parts := decodeParts(token)
	if parts == nil {
		return false
	}

	var expiresAtRaw, signature, payload string
	if len(parts) == 5 {
		expiresAtRaw = parts[3]
		signature = parts[4]
		payload = strings.Join(parts[:4], ":")
	} else {
		expiresAtRaw = parts[2]
		signature = parts[3]
		payload = strings.Join(parts[:3], ":")
	}

	expiresAt, err := strconv.ParseInt(expiresAtRaw, 10, 64)
	if err != nil {
		return false
	}
	if time.Now().Unix() > expiresAt {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(sign(payload)))
}

// ExtractUserId returns the empty string for legacy tokens, which carry no
// user id.
func ExtractUserId(token string) string {
	parts := decodeParts(token)
	if parts != nil && len(parts) == 5 {
		return parts[0]
	}
	return ""
}

func ExtractUsername(token string) string {
	parts := decodeParts(token)
	if parts == nil {
		return ""
	}
	if len(parts) == 5 {
		return parts[1]
	}
	return parts[0]
}

func ExtractRole(token string) string {
	parts := decodeParts(token)
	if parts == nil {
		return ""
	}
	if len(parts) == 5 {
		return parts[2]
	}
	return parts[1]
}

func decodeParts(token string) []string {
	if strings.TrimSpace(token) == "" {
		return nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil
	}
	parts := strings.Split(string(decoded), ":")
	if len(parts) != 4 && len(parts) != 5 {
		return nil
	}
	return parts
}

func sign(data string) string {
	mac := hmac.New(sha256.New, []byte(config.AppConfig.Auth.TokenSecret))
	mac.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}
