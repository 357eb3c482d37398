package remote

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/treehole/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// RoleServiceRole is the Supabase role that bypasses row-level security.
const RoleServiceRole = "service_role"

// APIKeyInfo describes what can be learned about a key without its secret.
type APIKeyInfo struct {
	JWT       bool
	Role      string
	ExpiresAt time.Time
}

type apiKeyClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// InspectAPIKey reads the claims of a JWT-shaped key without verifying its
// signature. Opaque keys (e.g. sb_publishable_...) are accepted as is.
// An expired JWT key yields common.ErrRemoteUnavailable.
func InspectAPIKey(key string, now time.Time) (APIKeyInfo, error) {
	if strings.TrimSpace(key) == "" {
		return APIKeyInfo{}, fmt.Errorf("empty api key: %w", common.ErrRemoteUnavailable)
	}
	if strings.Count(key, ".") != 2 {
		return APIKeyInfo{}, nil
	}

	claims := &apiKeyClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, claims); err != nil {
		return APIKeyInfo{}, fmt.Errorf("malformed api key: %w: %w", common.ErrRemoteUnavailable, err)
	}

	info := APIKeyInfo{JWT: true, Role: claims.Role}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
		if !now.Before(info.ExpiresAt) {
			return info, fmt.Errorf("api key expired at %s: %w", info.ExpiresAt.Format(time.RFC3339), common.ErrRemoteUnavailable)
		}
	}
	return info, nil
}
