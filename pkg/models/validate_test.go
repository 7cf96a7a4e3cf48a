package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidCustomerID(t *testing.T) {
	for _, id := range []string{"acme", "acme-corp", "a1", "corp_2"} {
		assert.True(t, ValidCustomerID(id), id)
	}
	for _, id := range []string{"", "Acme", "-acme", "acme/corp", "../etc", "acme corp"} {
		assert.False(t, ValidCustomerID(id), id)
	}
}

func TestValidSpace(t *testing.T) {
	assert.True(t, ValidSpace("default"))
	assert.True(t, ValidSpace("soc-team_1"))
	assert.False(t, ValidSpace("Team A"))
	assert.False(t, ValidSpace(""))
}

func TestFieldErrors_Error(t *testing.T) {
	errs := FieldErrors{
		{Kind: KindRequired, Field: "name", Message: "field is required"},
		{Kind: KindParse, Message: "line 3: bad"},
	}
	assert.Equal(t, "name: required: field is required; parse: line 3: bad", errs.Error())
}
