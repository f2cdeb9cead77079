package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/go-playground/validator.v9"
)

func TestCustomValidators(t *testing.T) {
	validate := validator.New()
	InstallCustomValidators(validate)

	var tests = []struct {
		value string
		tag   string
		valid bool
	}{
		{"john", "notinblacklist", true},
		{"admin", "notinblacklist", false},
		{"Admin", "notinblacklist", false},
		{"my robots_2-b", "alphanumspace", true},
		{"robots!", "alphanumspace", false},
		{"robots", "noforwardslash", true},
		{"a/b", "noforwardslash", false},
		{"100", "nopercent", true},
		{"100%", "nopercent", false},
		{" hi ", "notblank", true},
		{" \t\n", "notblank", false},
	}
	for _, test := range tests {
		t.Run(test.tag+" "+test.value, func(t *testing.T) {
			err := validate.Var(test.value, test.tag)
			assert.Equal(t, test.valid, err == nil, "%v", err)
		})
	}
}
