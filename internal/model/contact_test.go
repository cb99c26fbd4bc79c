package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContact_Oversized(t *testing.T) {
	c := &Contact{
		Name:    strings.Repeat("名", NameSize),
		Phone:   strings.Repeat("1", PhoneSize),
		Address: strings.Repeat("a", AddressSize),
	}
	assert.Empty(t, c.Oversized())

	c.Name += "名"
	c.Email = strings.Repeat("e", EmailSize+5)
	assert.Equal(t, []string{
		"name exceeds 100 characters (101)",
		"email exceeds 100 characters (105)",
	}, c.Oversized())
}
