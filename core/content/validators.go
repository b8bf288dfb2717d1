package content

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/lilypad-dao/lilypad/core"
)

var (
	contentTypeTag  = "contenttype"
	contentTypeText = "{0} must be one of COURSE, RESOURCE or PROJECT"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(contentTypeTag, contentTypeValidation)
	core.RegisterCustomTranslation(validate, translator, contentTypeTag, contentTypeText)
}

func (q *RelatednessQuery) Validate(validate *validator.Validate) error {
	q.Clean()
	return validate.Struct(q)
}

func (qf *QueryFilter) Validate(validate *validator.Validate) error {
	qf.Clean()
	return validate.Struct(qf)
}

// contentTypeValidation checks that the field holds a known content Type.
func contentTypeValidation(fl validator.FieldLevel) bool {
	return Type(fl.Field().String()).IsValid()
}
