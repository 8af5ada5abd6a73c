package cnpj

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_Validos(t *testing.T) {
	for _, in := range []string{"11.222.333/0001-81", "11222333000181", " 12.345.678/0001-95 ", "04597371000153"} {
		got, err := Normalize(in)
		require.NoError(t, err, in)
		assert.Len(t, got, Length)
	}
	got, _ := Normalize("11.222.333/0001-81")
	assert.Equal(t, "11222333000181", got)
}

func TestNormalize_Invalidos(t *testing.T) {
	for _, in := range []string{"", "123", "11.222.333/0001-82", "11222333000191", "00000000000000", "11.222.333/0001-811"} {
		_, err := Normalize(in)
		assert.ErrorIs(t, err, ErrInvalid, in)
	}
}

func TestSameYFormat(t *testing.T) {
	assert.True(t, Same("11.222.333/0001-81", "11222333000181"))
	assert.False(t, Same("11222333000181", "12345678000195"))
	assert.False(t, Same("otro", "11222333000181"))

	assert.Equal(t, "11.222.333/0001-81", Format("11222333000181"))
	assert.Equal(t, "abc", Format("abc"))
}
