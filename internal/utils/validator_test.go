package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sanitizeProbe struct {
	Content string
	Stars   int
}

func TestSanitizeDataStripsMarkup(t *testing.T) {
	validator := GetValidator()

	probe := &sanitizeProbe{Content: `Hello <script>alert("x")</script>world`, Stars: 5}
	validator.SanitizeData(probe)

	assert.Equal(t, "Hello world", probe.Content)
	assert.Equal(t, 5, probe.Stars)
}

func TestSanitizeDataIgnoresNonStructs(t *testing.T) {
	validator := GetValidator()

	value := "unchanged"
	validator.SanitizeData(&value)
	validator.SanitizeData(value)

	assert.Equal(t, "unchanged", value)
}

func TestUsernameValidation(t *testing.T) {
	validator := GetValidator()

	testCases := []struct {
		username string
		valid    bool
	}{
		{"alice", true},
		{"alice.bob-1_2", true},
		{"alice bob", false},
		{"alice!", false},
		{"älice", false},
	}

	for _, testCase := range testCases {
		err := validator.Validate.Var(testCase.username, "username_validation")
		if testCase.valid {
			assert.NoError(t, err, testCase.username)
		} else {
			assert.Error(t, err, testCase.username)
		}
	}
}

func TestPasswordValidation(t *testing.T) {
	validator := GetValidator()

	testCases := []struct {
		password string
		valid    bool
	}{
		{"Secret123!", true},
		{"secret123!", false},
		{"SECRET123!", false},
		{"Secretabc!", false},
		{"Secret1234", false},
		{"Sécret123!", false},
	}

	for _, testCase := range testCases {
		err := validator.Validate.Var(testCase.password, "password_validation")
		if testCase.valid {
			assert.NoError(t, err, testCase.password)
		} else {
			assert.Error(t, err, testCase.password)
		}
	}
}
