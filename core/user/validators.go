package user

import (
	"fmt"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/okfines/core"
)

var (
	roleTag  = "role"
	roleText = "must be one of admin, homeroom, student"

	requiredIfStudentTag  = "required_if_student"
	requiredIfStudentText = "a student ID is required for student accounts"

	// password policy
	pwdMinLen     = 8
	pwdMinLenTag  = "pwdminlen"
	pwdMinLenText = fmt.Sprintf("password must contain at least %d characters", pwdMinLen)

	pwdNoSpaceTag  = "pwdnospace"
	pwdNoSpaceText = "password must not contain whitespace"

	pwdNotAllNumTag  = "pwdnotallnum"
	pwdNotAllNumText = "password cannot be entirely numeric"

	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to user attributes"
)

// RegisterValidators registers this package's custom tags and struct-level
// validations on the app validator.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(roleTag, roleValidation)
	core.RegisterCustomTranslation(validate, translator, roleTag, roleText)

	// reported from struct-level validation only
	core.RegisterCustomTranslation(validate, translator, requiredIfStudentTag, requiredIfStudentText)
	core.RegisterCustomTranslation(validate, translator, pwdMinLenTag, pwdMinLenText)
	core.RegisterCustomTranslation(validate, translator, pwdNoSpaceTag, pwdNoSpaceText)
	core.RegisterCustomTranslation(validate, translator, pwdNotAllNumTag, pwdNotAllNumText)
	core.RegisterCustomTranslation(validate, translator, pwdAttrSimTag, pwdAttrSimText)

	validate.RegisterStructValidation(userStructValidation, NewUser{})
	validate.RegisterStructValidation(userStructValidation, UpdateUser{})
	validate.RegisterStructValidation(resetPasswordStructValidation, ResetUserPassword{})
}

func roleValidation(fl validator.FieldLevel) bool {
	return core.Role(fl.Field().String()).Valid()
}

func userStructValidation(sl validator.StructLevel) {
	switch usr := sl.Current().Interface().(type) {
	case NewUser:
		if usr.Role == string(core.RoleStudent) && usr.StudentID == "" {
			sl.ReportError(usr.StudentID, "student_id", "StudentID", requiredIfStudentTag, "")
		}
		validatePassword(sl, usr.Password, usr.Name, usr.Email)
	case UpdateUser:
		if usr.Password != "" {
			validatePassword(sl, usr.Password, usr.Name, usr.Email)
		}
	}
}

func resetPasswordStructValidation(sl validator.StructLevel) {
	rp := sl.Current().Interface().(ResetUserPassword)
	validatePassword(sl, rp.Password)
}

// validatePassword enforces the password policy: a minimum length, no
// whitespace, not entirely numeric and not too similar to the user's own
// attributes.
func validatePassword(sl validator.StructLevel, pwd string, attrs ...string) {
	report := func(tag string) {
		sl.ReportError(pwd, "password", "Password", tag, "")
	}

	if len(pwd) < pwdMinLen {
		report(pwdMinLenTag)
		return
	}
	if strings.IndexFunc(pwd, unicode.IsSpace) >= 0 {
		report(pwdNoSpaceTag)
		return
	}
	allNum := true
	for _, r := range pwd {
		if !unicode.IsDigit(r) {
			allNum = false
			break
		}
	}
	if allNum {
		report(pwdNotAllNumTag)
		return
	}

	lowerPwd := strings.ToLower(pwd)
	getRatio := func(attr string) float64 {
		return difflib.NewMatcher(strings.Split(lowerPwd, ""), strings.Split(strings.ToLower(attr), "")).QuickRatio()
	}
	for _, attr := range attrs {
		if attr != "" && getRatio(attr) >= pwdMaxSim {
			report(pwdAttrSimTag)
			return
		}
	}
}
