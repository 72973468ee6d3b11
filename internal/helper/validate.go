package helper

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"backend-evoting/internal/voting"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = v.RegisterValidation("timeofday", func(fl validator.FieldLevel) bool {
		_, err := voting.ParseTimeOfDay(fl.Field().String())
		return err == nil
	})

	return v
}

// ValidateStruct jalankan tag validate, error dikembalikan dalam bahasa Indonesia.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	f := fe.Field()
	switch fe.Tag() {
	case "required":
		return f + " wajib diisi"
	case "email":
		return f + " harus berupa email yang valid"
	case "min":
		return fmt.Sprintf("%s minimal %s karakter", f, fe.Param())
	case "max":
		return fmt.Sprintf("%s maksimal %s karakter", f, fe.Param())
	case "gt", "gte", "lte":
		return f + " di luar rentang yang diizinkan"
	case "oneof":
		return fmt.Sprintf("%s harus salah satu dari: %s", f, fe.Param())
	case "alphanum":
		return f + " hanya boleh huruf dan angka"
	case "url":
		return f + " harus berupa URL"
	case "datetime":
		return f + " harus berformat YYYY-MM-DD"
	case "timeofday":
		return f + " harus berformat HH:MM"
	}
	return f + " tidak valid"
}
