package handler

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	validation "gopkg.in/go-playground/validator.v9"
	en_translations "gopkg.in/go-playground/validator.v9/translations/en"
)

// Validator checks request DTOs and renders the first failure in English.
type Validator struct {
	validate *validation.Validate
	trans    ut.Translator
}

// NewValidator builds a validator whose messages name fields by their
// JSON keys.
func NewValidator() *Validator {
	v := validation.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	trans, err := customizeMessages(v)
	if err != nil {
		// Only reachable if the built-in en locale is missing.
		panic(err)
	}
	return &Validator{validate: v, trans: trans}
}

func customizeMessages(v *validation.Validate) (ut.Translator, error) {
	translator := en.New()
	uni := ut.New(translator, translator)

	trans, found := uni.GetTranslator("en")
	if !found {
		return trans, errors.New("translator not found")
	}

	if err := en_translations.RegisterDefaultTranslations(v, trans); err != nil {
		return trans, err
	}

	_ = v.RegisterTranslation("required", trans, func(ut ut.Translator) error {
		return ut.Add("required", "{0} is a required field", true)
	}, func(ut ut.Translator, fe validation.FieldError) string {
		t, _ := ut.T("required", fe.Field())
		return t
	})

	_ = v.RegisterTranslation("email", trans, func(ut ut.Translator) error {
		return ut.Add("email", "{0} must be a valid email", true)
	}, func(ut ut.Translator, fe validation.FieldError) string {
		t, _ := ut.T("email", fe.Field())
		return t
	})

	return trans, nil
}

// Validate returns the first validation message for s, or "" when s is
// valid.
func (v *Validator) Validate(s any) string {
	err := v.validate.Struct(s)
	if err == nil {
		return ""
	}
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Translate(v.trans)
	}
	return "Invalid request body"
}
