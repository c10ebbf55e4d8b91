package token

import (
	"fmt"
	"sync"
	"time"

	jwtv5 "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/hertz-contrib/jwt"

	"ContactHub/config"
	"ContactHub/pkg/errors"
)

const (
	IdentityKey = "uid"
	EmailKey    = "email"
	TypeKey     = "type"

	typeRefresh = "refresh"
)

var (
	// 这个实例会被 middleware 和 token 包共同使用
	sharedGenerator *jwt.HertzJWTMiddleware
	mu              sync.RWMutex
)

// Pair 登录或刷新后下发给客户端的令牌对
type Pair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int // access token 剩余秒数

	// RefreshID 即 refresh token 的 jti，服务端用它登记与吊销
	RefreshID        string
	RefreshExpiresAt time.Time
}

// RefreshClaims 校验通过的 refresh token 中的信息
type RefreshClaims struct {
	UserID string
	ID     string
}

func Init() error {
	g, err := jwt.New(&jwt.HertzJWTMiddleware{
		Key:         []byte(config.Cfg.JWTSecret),
		Timeout:     time.Duration(config.Cfg.JWTExpireMinutes) * time.Minute,
		MaxRefresh:  time.Duration(config.Cfg.JWTRefreshDays) * 24 * time.Hour,
		IdentityKey: IdentityKey,
		TimeFunc:    time.Now,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token generator: %w", err)
	}

	mu.Lock()
	sharedGenerator = g
	mu.Unlock()
	return nil
}

// GetGenerator 获取共享的 token 生成器（供 middleware 使用）
func GetGenerator() *jwt.HertzJWTMiddleware {
	mu.RLock()
	defer mu.RUnlock()
	return sharedGenerator
}

// GenerateTokenPair 生成 access token 和 refresh token
func GenerateTokenPair(userID, email string) (Pair, error) {
	g := GetGenerator()
	if g == nil {
		return Pair{}, fmt.Errorf("token generator not initialized")
	}

	now := g.TimeFunc()
	expiresAt := now.Add(g.Timeout)

	accessClaims := jwtv5.MapClaims{
		IdentityKey: userID,
		EmailKey:    email,
		"iat":       now.Unix(),
		"exp":       expiresAt.Unix(),
	}
	access, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, accessClaims).SignedString(g.Key)
	if err != nil {
		return Pair{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshID := uuid.NewString()
	refreshExpiresAt := now.Add(g.MaxRefresh)
	refreshClaims := jwtv5.MapClaims{
		IdentityKey: userID,
		EmailKey:    email,
		TypeKey:     typeRefresh,
		"jti":       refreshID,
		"iat":       now.Unix(),
		"exp":       refreshExpiresAt.Unix(),
	}
	refresh, err := jwtv5.NewWithClaims(jwtv5.SigningMethodHS256, refreshClaims).SignedString(g.Key)
	if err != nil {
		return Pair{}, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return Pair{
		AccessToken:      access,
		RefreshToken:     refresh,
		ExpiresIn:        int(g.Timeout.Seconds()),
		RefreshID:        refreshID,
		RefreshExpiresAt: refreshExpiresAt,
	}, nil
}

// ValidateRefreshToken 验证 refresh token，返回用户 ID 与 jti
func ValidateRefreshToken(tokenString string) (RefreshClaims, error) {
	g := GetGenerator()
	if g == nil {
		return RefreshClaims{}, fmt.Errorf("token generator not initialized")
	}

	claims := jwtv5.MapClaims{}
	token, err := jwtv5.ParseWithClaims(tokenString, claims, func(token *jwtv5.Token) (interface{}, error) {
		return g.Key, nil
	},
		jwtv5.WithValidMethods([]string{jwtv5.SigningMethodHS256.Alg()}),
		jwtv5.WithTimeFunc(g.TimeFunc),
	)
	if err != nil || !token.Valid {
		return RefreshClaims{}, fmt.Errorf("%w: %v", errors.InvalidToken, err)
	}

	if t, _ := claims[TypeKey].(string); t != typeRefresh {
		return RefreshClaims{}, errors.InvalidToken.WithMessage("Not a refresh token")
	}

	uid, _ := claims[IdentityKey].(string)
	jti, _ := claims["jti"].(string)
	if uid == "" || jti == "" {
		return RefreshClaims{}, errors.InvalidToken.WithMessage("Refresh token is missing claims")
	}

	return RefreshClaims{UserID: uid, ID: jti}, nil
}

// IsRefreshClaims access 守卫用它拒绝被当作 access token 使用的 refresh token
func IsRefreshClaims(claims map[string]interface{}) bool {
	t, _ := claims[TypeKey].(string)
	return t == typeRefresh
}
