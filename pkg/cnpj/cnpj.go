// Package cnpj normaliza y valida el identificador fiscal de las empresas (CNPJ).
package cnpj

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Length dígitos de un CNPJ completo (12 base + 2 verificadores).
const Length = 14

// ErrInvalid CNPJ con longitud o dígitos verificadores incorrectos.
var ErrInvalid = errors.New("cnpj inválido")

// pesos módulo 11 para el primer y segundo dígito verificador.
var (
	weights1 = [12]int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	weights2 = [13]int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// Normalize acepta "11.222.333/0001-81" o "11222333000181" y devuelve los 14 dígitos
// si los verificadores son correctos.
func Normalize(s string) (string, error) {
	digits := Digits(s)
	if len(digits) != Length {
		return "", fmt.Errorf("%w: se esperaban %d dígitos, se encontraron %d", ErrInvalid, Length, len(digits))
	}
	if strings.Count(digits, digits[:1]) == Length {
		return "", fmt.Errorf("%w: dígitos repetidos", ErrInvalid)
	}
	d1 := checkDigit(digits[:12], weights1[:])
	d2 := checkDigit(digits[:12]+string(d1), weights2[:])
	if digits[12] != d1 || digits[13] != d2 {
		return "", fmt.Errorf("%w: dígitos verificadores %c%c, esperados %c%c", ErrInvalid, digits[12], digits[13], d1, d2)
	}
	return digits, nil
}

// Same informa si a y b representan el mismo CNPJ (ignora puntuación).
func Same(a, b string) bool {
	da, db := Digits(a), Digits(b)
	if da == "" || db == "" {
		return strings.TrimSpace(a) == strings.TrimSpace(b)
	}
	return da == db
}

// Format presenta un CNPJ de 14 dígitos como 11.222.333/0001-81; cualquier otra cosa se devuelve tal cual.
func Format(s string) string {
	d := Digits(s)
	if len(d) != Length {
		return s
	}
	return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:14]
}

// Digits extrae solo los dígitos ASCII de s.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r < unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func checkDigit(base string, weights []int) byte {
	var sum int
	for i := range base {
		sum += int(base[i]-'0') * weights[i]
	}
	r := sum % 11
	if r < 2 {
		return '0'
	}
	return byte('0' + (11 - r))
}
