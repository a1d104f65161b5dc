package middleware

import (
	"fmt"
	"sync"
	"time"

	"skybook/internal/models"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators добавляет доменные теги в валидатор gin
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		if err = v.RegisterValidation("service_class", serviceClass); err != nil {
			return
		}
		if err = v.RegisterValidation("doc_type", docType); err != nil {
			return
		}
		err = v.RegisterValidation("past_date", pastDate)
	})
	return err
}

func serviceClass(fl validator.FieldLevel) bool {
	return models.IsServiceClass(fl.Field().String())
}

func docType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case models.DocumentNationalID, models.DocumentPassport:
		return true
	}
	return false
}

// past_date: YYYY-MM-DD строго раньше сегодняшнего дня (UTC)
func pastDate(fl validator.FieldLevel) bool {
	d, err := time.Parse(time.DateOnly, fl.Field().String())
	if err != nil {
		return false
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	return d.Before(today)
}
