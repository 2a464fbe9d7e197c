package jwt

import (
	"testing"
	"time"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/config"
)

func newTestManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:               "test-secret-at-least-16-chars",
		AccessTokenTTL:          15 * time.Minute,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 168 * time.Hour,
	})
}

func TestGenerateAndParseAccessToken(t *testing.T) {
	mgr := newTestManager()

	token, err := mgr.GenerateAccessToken("user-001", "admin")
	if err != nil {
		t.Fatalf("生成 Access Token 失败: %v", err)
	}

	claims, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 Token 失败: %v", err)
	}
	if claims.UserID != "user-001" {
		t.Errorf("期望 UserID=user-001，实际=%s", claims.UserID)
	}
	if claims.Role != "admin" {
		t.Errorf("期望 Role=admin，实际=%s", claims.Role)
	}
	if claims.TokenType != "access" {
		t.Errorf("期望 TokenType=access，实际=%s", claims.TokenType)
	}
	if claims.ID == "" {
		t.Error("期望 jti 非空")
	}
}

func TestGenerateRefreshToken_RememberMe(t *testing.T) {
	mgr := newTestManager()

	token, err := mgr.GenerateRefreshToken("user-002", "user", true)
	if err != nil {
		t.Fatalf("生成 Refresh Token 失败: %v", err)
	}

	claims, err := mgr.ParseToken(token)
	if err != nil {
		t.Fatalf("解析 Token 失败: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("期望 TokenType=refresh，实际=%s", claims.TokenType)
	}
	if !claims.RememberMe {
		t.Error("期望 RememberMe=true")
	}
	// remember me 有效期应长于默认 24h
	if claims.ExpiresAt.Time.Before(time.Now().Add(25 * time.Hour)) {
		t.Error("remember me Token 有效期应长于默认值")
	}
}

func TestParseToken_Invalid(t *testing.T) {
	mgr := newTestManager()

	if _, err := mgr.ParseToken("not-a-token"); err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}

	// 用不同密钥签发的 Token 应校验失败
	other := NewManager(&config.AuthConfig{
		JWTSecret:      "another-secret-16-chars!",
		AccessTokenTTL: time.Minute,
	})
	token, err := other.GenerateAccessToken("user-003", "user")
	if err != nil {
		t.Fatalf("生成 Token 失败: %v", err)
	}
	if _, err := mgr.ParseToken(token); err != ErrTokenInvalid {
		t.Errorf("期望 ErrTokenInvalid，实际: %v", err)
	}
}
