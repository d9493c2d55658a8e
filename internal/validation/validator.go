package validation

import (
	"errors"
	"reflect"
	"strings"

	"newsletter/internal/models"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	// Validate is the shared struct validator.
	Validate *validator.Validate
	// Translator renders validation errors in English.
	Translator ut.Translator

	departmentTag = "department"
	roleTag       = "role"
	usernameTag   = "username"
	passwordTag   = "password"
	notBlankTag   = "notblank"
)

func init() {
	Validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	Translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(Validate, Translator)

	// Report JSON field names rather than Go struct names.
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = Validate.RegisterValidation(departmentTag, func(fl validator.FieldLevel) bool {
		_, ok := models.ParseDepartment(fl.Field().String())
		return ok
	})
	_ = Validate.RegisterValidation(roleTag, func(fl validator.FieldLevel) bool {
		_, ok := models.ParseRole(fl.Field().String())
		return ok
	})
	_ = Validate.RegisterValidation(usernameTag, func(fl validator.FieldLevel) bool {
		return ValidateUsername(fl.Field().String()) == nil
	})
	_ = Validate.RegisterValidation(passwordTag, func(fl validator.FieldLevel) bool {
		return ValidatePassword(fl.Field().String()) == nil
	})
	_ = Validate.RegisterValidation(notBlankTag, func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})

	registerTranslation("required", "This field is required.", true)
	registerTranslation(notBlankTag, "This field may not be blank.", false)
	registerTranslation(departmentTag, "Not a valid department.", false)
	registerTranslation(roleTag, "Not a valid role.", false)
	registerTranslation(usernameTag, "Enter a valid username of 3-150 letters, digits and @/./+/-/_ characters.", false)
	registerTranslation(passwordTag, "Password must be at least 8 characters with upper and lower case letters and a digit.", false)
}

func registerTranslation(tag, text string, override bool) {
	_ = Validate.RegisterTranslation(tag, Translator,
		func(t ut.Translator) error { return t.Add(tag, text, override) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct validates v and converts failures into a field-level validation error.
// It returns nil when v is valid.
func Struct(v any) error {
	err := Validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return models.NewValidationError(err.Error())
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, seen := fields[fe.Field()]; !seen {
			fields[fe.Field()] = fe.Translate(Translator)
		}
	}
	return models.NewFieldsError(fields)
}
