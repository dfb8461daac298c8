package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword 生成 bcrypt 哈希，密码超过 72 字节时返回错误
func HashPassword(password string) (string, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedPassword), nil
}

// VerifyPassword 比较明文密码与存储的哈希，bcrypt 内部使用常量时间比较
func VerifyPassword(candidate, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(candidate)) == nil
}
