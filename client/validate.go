package client

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError lists form fields that failed before any request was sent.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		names = append(names, k)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, k := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

type credentialsForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

type signupForm struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=72"`
	AccountType Role   `json:"account_type" validate:"oneof=agent client"`
}

type verifyForm struct {
	Email string `json:"email" validate:"required,email"`
	OTP   string `json:"otp" validate:"required,numeric"`
}

type paymentForm struct {
	PropertyID  int64  `json:"property_id" validate:"gt=0"`
	PhoneNumber string `json:"phone_number" validate:"required"`
}

type listingForm struct {
	Name     string `json:"name" validate:"required"`
	Price    int64  `json:"price" validate:"gt=0"`
	Location string `json:"location" validate:"required"`
	Image    string `json:"image" validate:"omitempty,url"`
}

var fieldMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"min":      "is too short",
	"max":      "is too long",
	"oneof":    "must be agent or client",
	"numeric":  "must contain only digits",
	"gt":       "must be positive",
	"url":      "must be a URL",
}

func checkForm(form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{Fields: map[string]string{}}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		}
		if fe.Tag() == "min" && fe.Field() == "password" {
			msg = "must be at least " + fe.Param() + " characters"
		}
		out.Fields[fe.Field()] = msg
	}
	return out
}
