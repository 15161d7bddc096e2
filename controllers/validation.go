package controllers

import (
	"reflect"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"funeral-backend/utils"
)

var registerOnce sync.Once

// RegisterValidators adds the isodate and clocktime tags to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("isodate", isoDate)
			_ = v.RegisterValidation("clocktime", clockTime)
		}
	})
}

func isoDate(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	_, err := utils.NormalizeDate(field.String())
	return err == nil
}

func clockTime(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return false
	}
	_, err := utils.NormalizeClock(field.String())
	return err == nil
}
