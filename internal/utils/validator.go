package utils

import (
	"reflect"
	"regexp"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/truemail-rb/truemail-go"
)

// Validator bundles struct validation, input sanitizing and optional
// MX-level email verification behind one instance.
type Validator struct {
	Validate    *validator.Validate
	VerifyEmail func(email string) bool

	policy *bluemonday.Policy
}

var instance *Validator
var once sync.Once
var configuration *truemail.Configuration

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9.\-_]+$`)

func GetValidator() *Validator {
	once.Do(func() {
		configuration, _ = truemail.NewConfiguration(truemail.ConfigurationAttr{
			VerifierEmail:         "team@blogserver.dev",
			ValidationTypeDefault: "mx",
			SmtpFailFast:          true,
		})

		instance = &Validator{
			Validate:    validator.New(validator.WithRequiredStructEnabled()),
			VerifyEmail: verifyEmail,
			policy:      bluemonday.StrictPolicy(),
		}

		registerCustomValidators(instance.Validate)
	})

	return instance
}

// SanitizeData strips markup from every string field of the given struct
// pointer before validation runs.
func (v *Validator) SanitizeData(obj interface{}) {
	value := reflect.ValueOf(obj)
	if value.Kind() != reflect.Ptr || value.Elem().Kind() != reflect.Struct {
		return
	}

	value = value.Elem()
	for i := 0; i < value.NumField(); i++ {
		field := value.Field(i)
		if field.Kind() == reflect.String && field.CanSet() {
			field.SetString(v.policy.Sanitize(field.String()))
		}
	}
}

func verifyEmail(email string) bool {
	return truemail.IsValid(email, configuration)
}

func registerCustomValidators(v *validator.Validate) {
	if err := v.RegisterValidation("username_validation", usernameValidation); err != nil {
		return
	}

	if err := v.RegisterValidation("password_validation", passwordValidation); err != nil {
		return
	}
}

// usernameValidation allows a-z, A-Z, 0-9, ., - and _.
func usernameValidation(fl validator.FieldLevel) bool {
	return usernamePattern.MatchString(fl.Field().String())
}

// passwordValidation requires an upper and lower case letter, a number and
// a special character, ASCII only.
func passwordValidation(fl validator.FieldLevel) bool {
	var upperLetter, lowerLetter, number, specialChar bool

	value := fl.Field().String()
	for _, r := range value {
		if r > unicode.MaxASCII {
			return false
		}

		switch {
		case unicode.IsUpper(r):
			upperLetter = true
		case unicode.IsLower(r):
			lowerLetter = true
		case unicode.IsNumber(r):
			number = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			specialChar = true
		}
	}

	return upperLetter && lowerLetter && number && specialChar
}
