// Package validate checks registration and profile update payloads before any
// handler touches the store.
package validate

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

// Payload carries the user-editable fields of a registration or update form.
type Payload struct {
	Name     string `form:"name" validate:"required"`
	Email    string `form:"email" validate:"omitempty,email,tldemail"`
	Phone    string `form:"phone" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// allowedTLDs mirrors the registration policy: only .com and .net addresses.
var allowedTLDs = map[string]bool{
	"com": true,
	"net": true,
}

var fieldMessages = map[string]string{
	"Name":     "Name cannot be blank",
	"Phone":    "Mobile cannot be blank",
	"Password": "Password cannot be blank",
	"Email":    "Email must be a valid .com or .net address",
}

// Error aggregates every violation of a payload into a single message.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return strings.Join(e.Messages, ", ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("tldemail", validTLDEmail); err != nil {
		panic(err)
	}
	return v
}

// validTLDEmail requires a domain with at least two segments ending in an
// allowed top-level domain. Runs after the builtin email rule.
func validTLDEmail(fl validator.FieldLevel) bool {
	addr := fl.Field().String()
	at := strings.LastIndex(addr, "@")
	if at < 0 {
		return false
	}
	segments := strings.Split(addr[at+1:], ".")
	if len(segments) < 2 {
		return false
	}
	return allowedTLDs[strings.ToLower(segments[len(segments)-1])]
}

// Registration validates a payload for account creation. All fields are
// required except email.
func Registration(p Payload) error {
	return collect(validate.Struct(p))
}

// Update validates a payload for a profile update. A blank password means
// "keep the current one" and is not a violation.
func Update(p Payload) error {
	if p.Password == "" {
		return collect(validate.StructExcept(p, "Password"))
	}
	return collect(validate.Struct(p))
}

func collect(err error) error {
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err
	}
	agg := &Error{}
	for _, fe := range verrs {
		if msg, ok := fieldMessages[fe.Field()]; ok {
			agg.Messages = append(agg.Messages, msg)
		} else {
			agg.Messages = append(agg.Messages, fe.Error())
		}
	}
	return agg
}
