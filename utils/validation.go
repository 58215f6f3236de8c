package utils

import (
	"fmt"

	"slotbook/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// RegisterValidators installs the custom binding tags on gin's validator.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return RegisterSlotLabel(v)
}

// RegisterSlotLabel adds the "slotlabel" tag, which accepts only canonical slot start times.
func RegisterSlotLabel(v *validator.Validate) error {
	return v.RegisterValidation("slotlabel", func(fl validator.FieldLevel) bool {
		return models.IsCanonicalSlot(fl.Field().String())
	})
}
