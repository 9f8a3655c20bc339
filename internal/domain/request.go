package domain

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Channel selects how a document request is delivered.
// The zero value lets the backend choose.
type Channel string

// Delivery channels.
const (
	ChannelAuto  Channel = ""
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// ParseChannel accepts "auto", "email" or "sms" (case-insensitive).
func ParseChannel(s string) (Channel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ChannelAuto, nil
	case "email":
		return ChannelEmail, nil
	case "sms":
		return ChannelSMS, nil
	default:
		return ChannelAuto, NewValidationError("channel", "must be auto, email or sms")
	}
}

// RequestOptions is the body of a document request.
type RequestOptions struct {
	Channel      Channel `json:"channel,omitempty" validate:"omitempty,oneof=email sms"`
	UploadURL    string  `json:"upload_url" validate:"required,url"`
	OrgName      string  `json:"org_name,omitempty"`
	SupportEmail string  `json:"support_email,omitempty" validate:"omitempty,email"`
	SendNow      bool    `json:"send_now,omitempty"`
}

var validate = newValidator()

// newValidator reports field names by their json tag so messages match the
// wire format.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the options locally so invalid requests never reach the
// network.
func (o RequestOptions) Validate() error {
	return ValidateStruct(o)
}

// ValidateStruct runs struct tag validation and converts the first failure
// into a *ValidationError.
func ValidateStruct(v interface{}) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return NewValidationError(fe.Field(), tagMessage(fe.Tag()))
	}
	return NewValidationError("", err.Error())
}

// tagMessage maps validation tags to short messages.
func tagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "url":
		return "must be an absolute URL"
	case "oneof":
		return "invalid value"
	default:
		return "validation failed"
	}
}
