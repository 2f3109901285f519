package crypto

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashToken хеширует refresh token с использованием SHA256.
// Детерминированный одноразовый хеш: в хранилище попадает только digest,
// поэтому утечка таблицы токенов не дает рабочих токенов.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
