// Package cryptox holds the password hashing primitives. Passwords are stored
// as bcrypt hashes, which embed their own random salt and cost.
package cryptox

import (
	"github.com/dmitrijs2005/gophaccount/internal/common"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for every stored password.
const PasswordCost = 10

// HashPassword derives a salted bcrypt hash of password.
//
// The temporary byte copy of the plaintext is wiped before returning.
// bcrypt rejects inputs longer than 72 bytes with bcrypt.ErrPasswordTooLong.
func HashPassword(password string) (string, error) {
	p := []byte(password)
	defer common.WipeByteArray(p)

	hash, err := bcrypt.GenerateFromPassword(p, PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches hash. Malformed hashes and
// mismatches both yield false.
func CheckPassword(password, hash string) bool {
	p := []byte(password)
	defer common.WipeByteArray(p)

	return bcrypt.CompareHashAndPassword([]byte(hash), p) == nil
}
