package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher хеширует и проверяет пароли через bcrypt.
// Соль генерируется bcrypt на каждый вызов, сравнение выполняется за постоянное время.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher создаёт хешер с заданной сложностью.
// Значения вне допустимого диапазона bcrypt заменяются на bcrypt.DefaultCost.
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash возвращает bcrypt-хеш пароля.
func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("password hasher: %w", err)
	}
	return string(digest), nil
}

// Verify сравнивает пароль с хешем. Пустой хеш никогда не совпадает.
func (h *PasswordHasher) Verify(plaintext, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
