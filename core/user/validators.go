package user

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/lilypad-dao/lilypad/core"
)

var (
	ethAddrTag  = "ethaddr"
	ethAddrText = "{0} must be a valid wallet address"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(ethAddrTag, ethAddrValidation)
	core.RegisterCustomTranslation(validate, translator, ethAddrTag, ethAddrText)
}

// Custom Validators

// ethAddrValidation checks that the field is an Ethereum address with a valid (or absent) EIP-55 checksum.
func ethAddrValidation(fl validator.FieldLevel) bool {
	return IsAddress(fl.Field().String())
}
