package app

import (
	"mixshare/internal/model"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// registerValidators installs the enum validations the request structs
// reference by tag.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	v.RegisterValidation("cocktail_category", func(fl validator.FieldLevel) bool {
		return model.ValidCategory(fl.Field().String())
	})
	v.RegisterValidation("alcohol_content", func(fl validator.FieldLevel) bool {
		return model.ValidAlcoholContent(fl.Field().String())
	})
	v.RegisterValidation("flavor_profile", func(fl validator.FieldLevel) bool {
		return model.ValidFlavor(fl.Field().String())
	})
}
