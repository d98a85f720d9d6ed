package controllers

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/mentorhub/forum/models"
)

var registerOnce sync.Once

// RegisterValidators adds the forum_category and forum_visibility binding tags
// to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("forum_category", func(fl validator.FieldLevel) bool {
			_, ok := models.ParseCategory(fl.Field().String())
			return ok
		})
		_ = v.RegisterValidation("forum_visibility", func(fl validator.FieldLevel) bool {
			_, ok := models.ParseVisibility(fl.Field().String())
			return ok
		})
	})
}
