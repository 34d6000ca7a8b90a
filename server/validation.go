package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
	"github.com/RenanGalvao/pizza-ecommerce/payments"
	"github.com/go-playground/validator/v10"
)

const invalidJSONMessage = "Invalid JSON payload."

// newValidator returns a validator that reports json field names and knows
// the domain tags used by the request payloads below.
func newValidator(categories []string, idLength int) *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	_ = v.RegisterValidation("menu_category", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, c := range categories {
			if strings.EqualFold(c, value) {
				return true
			}
		}
		return false
	})
	_ = v.RegisterValidation("token_id", func(fl validator.FieldLevel) bool {
		return len(strings.TrimSpace(fl.Field().String())) == idLength
	})
	_ = v.RegisterValidation("stripe_token", func(fl validator.FieldLevel) bool {
		return payments.IsTestToken(fl.Field().String())
	})
	return v
}

// decode reads a JSON body into dst and validates it. An empty body is an
// empty object, so missing required fields are reported by name.
func (h *handlers) decode(body []byte, dst any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if apperrors.As(err, &typeErr) && typeErr.Field != "" {
			return apperrors.Validation(missingFieldsMessage([]string{typeErr.Field}), typeErr.Field)
		}
		return apperrors.Validation(invalidJSONMessage)
	}
	return h.validate(dst)
}

func (h *handlers) validate(v any) error {
	err := h.validator.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !apperrors.As(err, &verrs) {
		return apperrors.Wrap(apperrors.ErrInternal, err)
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return apperrors.Validation(missingFieldsMessage(fields), fields...)
}

func missingFieldsMessage(fields []string) string {
	return fmt.Sprintf("Missing or invalid required fields: %s.", strings.Join(fields, ", "))
}

// atLeastOne fails when none of the optional update fields was sent. When
// some were sent but are invalid, decode has already rejected them.
func atLeastOne(present bool, fields ...string) error {
	if present {
		return nil
	}
	return apperrors.Validation(
		fmt.Sprintf("At least one of them must be updated: %s.", strings.Join(fields, ", ")),
		fields...,
	)
}

type createUserInput struct {
	Name          string `json:"name" validate:"required,notblank"`
	Email         string `json:"email" validate:"required,email"`
	StreetAddress string `json:"street_address" validate:"required,notblank"`
	Password      string `json:"password" validate:"required,notblank"`
}

type updateUserInput struct {
	Name          string `json:"name" validate:"omitempty,notblank"`
	Email         string `json:"email" validate:"omitempty,email"`
	StreetAddress string `json:"street_address" validate:"omitempty,notblank"`
	Password      string `json:"password" validate:"omitempty,notblank"`
}

func (in updateUserInput) any() bool {
	return in.Name != "" || in.Email != "" || in.StreetAddress != "" || in.Password != ""
}

type loginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,notblank"`
}

type menuInput struct {
	Name        string  `json:"name" validate:"required,notblank"`
	Price       float64 `json:"price" validate:"required,gte=0.01"`
	Description string  `json:"description" validate:"required,notblank"`
	Category    string  `json:"category" validate:"required,menu_category"`
}

// Price is a pointer so that an explicit 0 is rejected instead of ignored.
type menuUpdateInput struct {
	Name        string   `json:"name" validate:"omitempty,notblank"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0.01"`
	Description string   `json:"description" validate:"omitempty,notblank"`
	Category    string   `json:"category" validate:"omitempty,menu_category"`
}

func (in menuUpdateInput) any() bool {
	return in.Name != "" || in.Price != nil || in.Description != "" || in.Category != ""
}

// The quantity bound matches carts.MaxQuantity.
type cartAddInput struct {
	ItemID   string `json:"item_id" validate:"required,token_id"`
	Quantity int    `json:"quantity" validate:"required,gte=1,lte=100"`
}

type cartUpdateInput struct {
	Quantity int `json:"quantity" validate:"required,gte=1,lte=100"`
}

type cardCreateInput struct {
	StripeToken string `json:"stripe_token" validate:"required,stripe_token"`
}

type cardUpdateInput struct {
	Name     string `json:"name" validate:"omitempty,notblank"`
	ExpMonth string `json:"exp_month" validate:"omitempty,len=2,numeric"`
	ExpYear  string `json:"exp_year" validate:"omitempty,min=2,max=4,numeric"`
}

func (in cardUpdateInput) any() bool {
	return in.Name != "" || in.ExpMonth != "" || in.ExpYear != ""
}
