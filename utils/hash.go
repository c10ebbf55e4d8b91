package utils

import (
	"errors"

	"golang.org/x/crypto/bcrypt"

	"ContactHub/config"
)

// HashPassword 使用配置的 cost 生成 bcrypt 哈希，盐值由 bcrypt 内置
func HashPassword(password string) (string, error) {
	cost := config.Cfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ComparePassword 密码不匹配时返回 false, nil；哈希损坏等情况返回错误
func ComparePassword(hash, password string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
