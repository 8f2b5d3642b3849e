package middleware

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	pkgvalidator "github.com/jwalitptl/clinic-api/pkg/validator"
)

// RegisterValidation installs JSON field naming and the custom rules on
// gin's binding validator. Call it once before serving.
func RegisterValidation() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		pkgvalidator.Register(v)
	}
}
