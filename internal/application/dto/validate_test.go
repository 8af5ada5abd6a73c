package dto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_RegisterRequest(t *testing.T) {
	ok := RegisterRequest{
		Name:      "Ana",
		Email:     "a@x.com",
		Password:  "longenough1",
		CompanyID: "00000000-0000-0000-0000-000000000002",
	}
	assert.NoError(t, Validate(ok))

	bad := ok
	bad.Password = "corta"
	bad.Email = "no-es-email"
	err := Validate(bad)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "min=8", verr.Fields["password"], "password < 8 debe rechazarse")
	assert.Equal(t, "email", verr.Fields["email"])
}

// 40 "é" son 40 runas pero 80 bytes: bcrypt no las acepta.
func TestValidate_RegisterRequest_PasswordEnBytes(t *testing.T) {
	in := RegisterRequest{
		Name:      "Ana",
		Email:     "a@x.com",
		Password:  strings.Repeat("é", 36),
		CompanyID: "00000000-0000-0000-0000-000000000002",
	}
	assert.NoError(t, Validate(in), "72 bytes exactos")

	in.Password = strings.Repeat("é", 40)
	var verr *ValidationError
	require.ErrorAs(t, Validate(in), &verr)
	assert.Equal(t, "max_bytes=72", verr.Fields["password"])
}

func TestValidate_UpdateCompanyRequest_CamposOpcionales(t *testing.T) {
	assert.NoError(t, Validate(UpdateCompanyRequest{}))

	email := "no-es-email"
	err := Validate(UpdateCompanyRequest{Email: &email})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
}

func TestPageRequest_DefaultPage(t *testing.T) {
	p := PageRequest{Limit: 0, Offset: -3}
	p.DefaultPage()
	assert.Equal(t, 20, p.Limit)
	assert.Equal(t, 0, p.Offset)

	p = PageRequest{Limit: 500}
	p.DefaultPage()
	assert.Equal(t, 100, p.Limit)
}
