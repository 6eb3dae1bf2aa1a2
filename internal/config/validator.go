// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"golang.org/x/text/language"

	"github.com/pdiddy/squad-localize/internal/script"
)

// newValidator returns a validator that names fields by their config key and
// understands the langtag and script rules.
func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("registering default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	rules := []struct {
		tag     string
		fn      validator.Func
		message string
	}{
		{"langtag", isLanguageTag, "{0} must be a BCP 47 language tag such as en or si"},
		{"script", isScript, "{0} must be a Unicode script name such as Sinhala or Latin"},
	}
	for _, r := range rules {
		if err := validate.RegisterValidation(r.tag, r.fn); err != nil {
			return nil, nil, fmt.Errorf("registering %s validation: %w", r.tag, err)
		}
		tag, message := r.tag, r.message
		if err := validate.RegisterTranslation(tag, trans, func(ut ut.Translator) error {
			return ut.Add(tag, message, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, keyPath(fe))
			return t
		}); err != nil {
			return nil, nil, fmt.Errorf("registering %s translation: %w", tag, err)
		}
	}

	return validate, trans, nil
}

func isLanguageTag(fl validator.FieldLevel) bool {
	_, err := language.Parse(fl.Field().String())
	return err == nil
}

func isScript(fl validator.FieldLevel) bool {
	return script.IsKnownScript(fl.Field().String())
}

// keyPath turns a validator namespace into a dotted config key, e.g.
// "PipelineConfig.translation.target_language" becomes
// "translation.target_language".
func keyPath(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	keep := parts[:0]
	for _, p := range parts[1:] {
		if p == "HTTPConfig" {
			continue
		}
		keep = append(keep, p)
	}
	return strings.Join(keep, ".")
}
