// Package password deriva y verifica digests de contraseñas con bcrypt.
// Cada digest lleva su propia sal aleatoria embebida, así que dos llamadas a Hash
// con el mismo texto nunca producen el mismo resultado.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// MinLength longitud mínima exigida por quien llama (no se valida aquí).
const MinLength = 8

// Cost costo de bcrypt usado por Hash.
var Cost = bcrypt.DefaultCost

// Hash genera el digest bcrypt del texto plano.
func Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), Cost)
	if err != nil {
		return "", fmt.Errorf("password: hash: %w", err)
	}
	return string(digest), nil
}

// Verify compara en tiempo constante. Devuelve false ante cualquier diferencia,
// incluido un digest malformado; nunca entra en pánico ni devuelve error.
func Verify(plaintext, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
