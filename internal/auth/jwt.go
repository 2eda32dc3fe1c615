package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fuel-backend/internal/config"
	"fuel-backend/internal/timeutil"
)

// Roles
const (
	RoleAdmin     = "admin"
	RoleAssistant = "assistant"
	RoleClient    = "client"
	RoleExternal  = "external"
)

// StaffRoles may use the staff API; PortalRoles the client portal.
var (
	StaffRoles  = []string{RoleAdmin, RoleAssistant}
	PortalRoles = []string{RoleClient, RoleExternal}
)

// IsPortalRole reports whether role acts on behalf of one client.
func IsPortalRole(role string) bool {
	return role == RoleClient || role == RoleExternal
}

type Claims struct {
	Role string `json:"role"`
	// ClientID is the client a portal token acts for; empty for staff.
	ClientID string `json:"client_id,omitempty"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTManager(cfg *config.Config) *JWTManager {
	ttl := time.Duration(cfg.JWT.ExpirationHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &JWTManager{secret: []byte(cfg.JWT.Secret), issuer: cfg.JWT.Issuer, ttl: ttl, now: timeutil.Now}
}

// GenerateToken signs a token for subject acting in role. Portal roles
// must name the client they act for.
func (j *JWTManager) GenerateToken(subject, role, clientID string) (string, error) {
	return j.GenerateTokenTTL(subject, role, clientID, j.ttl)
}

// GenerateTokenTTL is GenerateToken with an explicit lifetime.
func (j *JWTManager) GenerateTokenTTL(subject, role, clientID string, ttl time.Duration) (string, error) {
	role = strings.ToLower(strings.TrimSpace(role))
	switch role {
	case RoleAdmin, RoleAssistant:
		clientID = ""
	case RoleClient, RoleExternal:
		if strings.TrimSpace(clientID) == "" {
			return "", fmt.Errorf("role %s needs a client id", role)
		}
	default:
		return "", fmt.Errorf("unknown role %q", role)
	}

	now := j.now()
	claims := &Claims{
		Role:     role,
		ClientID: strings.TrimSpace(clientID),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    j.issuer,
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(j.secret)
}

// ValidateToken verifies a JWT token and returns the claims
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return j.secret, nil
	}, jwt.WithIssuer(j.issuer), jwt.WithTimeFunc(j.now))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if IsPortalRole(claims.Role) && claims.ClientID == "" {
		return nil, errors.New("portal token without client id")
	}
	return claims, nil
}
