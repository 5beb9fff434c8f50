package crypto

import (
	"crypto/rand"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = bcrypt.DefaultCost

// NewSalt 生成用户级随机盐。盐单独落库（sys_user.salt），
// 与明文拼接后再进 bcrypt，保持旧库 password+salt 双列契约。
func NewSalt() []byte {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return []byte("0000000000000000") // rand 不可用时兜底
	}
	return b
}

// HashPassword 生成 bcrypt 哈希，输入为明文+盐
func HashPassword(plain string, salt []byte) (string, error) {
	bs, err := bcrypt.GenerateFromPassword(append([]byte(plain), salt...), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

// VerifyPassword 校验明文+盐与存储哈希
func VerifyPassword(plain string, salt []byte, stored string) bool {
	if !strings.HasPrefix(stored, "$2a$") && !strings.HasPrefix(stored, "$2b$") && !strings.HasPrefix(stored, "$2y$") {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), append([]byte(plain), salt...)) == nil
}
