package main

import (
	_ "embed"
	"encoding/json"
	"log"
	"regexp"
	"strings"

	"gopkg.in/go-playground/validator.v9"
)

// Custom validators used by validator.v9 struct tags.

// Matches alphanum chars plus underscore, dash and spaces (\t\n\f\r )
var alphaNumSpaceRegex = regexp.MustCompile(`^[\w\-\s]+$`)

// Reserved names. Route segments and admin-like names cannot be used as
// usernames nor section names.
//
//go:embed validators_names_blacklist.json
var blacklistJSON []byte

var blacklist map[string]bool

// InstallCustomValidators extends validator.v9 with custom validation functions.
func InstallCustomValidators(validate *validator.Validate) {
	loadBlacklist()
	custom := map[string]validator.Func{
		"alphanumspace":  isAlphanumSpace,
		"notinblacklist": notInBlacklist,
		"noforwardslash": notIncludeForwardSlash,
		"nopercent":      notIncludePercent,
		"notblank":       notBlank,
	}
	for tag, fn := range custom {
		if err := validate.RegisterValidation(tag, fn); err != nil {
			log.Fatalln("Failed to install custom validator:", tag, err)
		}
	}
}

func loadBlacklist() {
	var names []string
	if err := json.Unmarshal(blacklistJSON, &names); err != nil {
		log.Fatal("Couldn't unmarshal blacklist", err)
	}
	blacklist = make(map[string]bool, len(names))
	for _, n := range names {
		blacklist[strings.ToLower(n)] = true
	}
}

// notInBlacklist checks the field is not a reserved name. The comparison
// ignores case.
func notInBlacklist(fl validator.FieldLevel) bool {
	return !blacklist[strings.ToLower(fl.Field().String())]
}

// isAlphanumSpace accepts alphanumeric values with dashes, underscores and
// spaces.
func isAlphanumSpace(fl validator.FieldLevel) bool {
	return alphaNumSpaceRegex.MatchString(fl.Field().String())
}

func notIncludeForwardSlash(fl validator.FieldLevel) bool {
	return !strings.Contains(fl.Field().String(), "/")
}

func notIncludePercent(fl validator.FieldLevel) bool {
	return !strings.Contains(fl.Field().String(), "%")
}

// notBlank rejects values made only of whitespace.
func notBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
