package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apierrors "github.com/diogo/gatewaychat/internal/errors"
	"github.com/diogo/gatewaychat/internal/gateway"
)

// TokenCookieName is the browser cookie that carries the gateway token
const TokenCookieName = "puter_auth_token"

// Environment variables checked before token.json
const (
	EnvToken        = "GATEWAYCHAT_TOKEN"
	EnvOpenAIKey    = "OPENAI_API_KEY"
	EnvAnthropicKey = "ANTHROPIC_API_KEY"
)

// tokenFile is the on-disk shape of token.json
type tokenFile struct {
	Token string `json:"token"`
}

// CookieListItem represents a cookie in browser export format
type CookieListItem struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// GetTokenPath returns the path to the token file
func GetTokenPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "token.json"), nil
}

// LoadToken loads the token from token.json
func LoadToken() (string, error) {
	path, err := GetTokenPath()
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w. Please log in first:\n  gatewaychat login --token <token>", apierrors.ErrNoToken)
		}
		return "", fmt.Errorf("failed to read token file: %w", err)
	}

	return parseToken(data)
}

// parseToken accepts {"token": ...}, a cookie dict {name: value}, a cookie
// list export [{name, value}] or a bare token string.
func parseToken(data []byte) (string, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return "", apierrors.ErrNoToken
	}

	var dict map[string]any
	if err := json.Unmarshal(data, &dict); err == nil {
		for _, key := range []string{"token", TokenCookieName} {
			if v, ok := dict[key].(string); ok && v != "" {
				return v, nil
			}
		}
		return "", fmt.Errorf("%w: expected \"token\" or %q key", apierrors.ErrNoToken, TokenCookieName)
	}

	var list []CookieListItem
	if err := json.Unmarshal(data, &list); err == nil {
		for _, item := range list {
			if item.Name == TokenCookieName && item.Value != "" {
				return item.Value, nil
			}
		}
		return "", fmt.Errorf("%w: missing cookie %s", apierrors.ErrNoToken, TokenCookieName)
	}

	if strings.ContainsAny(trimmed, "{}[]\"\n ") {
		return "", fmt.Errorf("invalid token format: expected {\"token\": ...}, a cookie export or a bare token")
	}
	return trimmed, nil
}

// SaveToken saves the token to token.json
func SaveToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apierrors.ErrNoToken
	}

	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(tokenFile{Token: token}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	// owner read/write only
	if err := os.WriteFile(filepath.Join(configDir, "token.json"), data, 0o600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}

	return nil
}

// ImportToken imports a token from a file in any format parseToken accepts
func ImportToken(sourcePath string) error {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("source file not found: %s", sourcePath)
		}
		return fmt.Errorf("could not read file: %w", err)
	}

	token, err := parseToken(data)
	if err != nil {
		return err
	}

	return SaveToken(token)
}

// ResolveToken returns the credential for provider. GATEWAYCHAT_TOKEN wins,
// then the provider's own key variable, then token.json.
func ResolveToken(provider string) (string, error) {
	if v := strings.TrimSpace(os.Getenv(EnvToken)); v != "" {
		return v, nil
	}

	switch provider {
	case gateway.ProviderOpenAI:
		if v := strings.TrimSpace(os.Getenv(EnvOpenAIKey)); v != "" {
			return v, nil
		}
	case gateway.ProviderAnthropic:
		if v := strings.TrimSpace(os.Getenv(EnvAnthropicKey)); v != "" {
			return v, nil
		}
	}

	return LoadToken()
}

// MaskToken shortens a token for display
func MaskToken(token string) string {
	if len(token) <= 12 {
		return strings.Repeat("*", len(token))
	}
	return token[:6] + "..." + token[len(token)-4:]
}
