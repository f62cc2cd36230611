package app

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var slugRe = regexp.MustCompile(`^[a-zA-Z0-9-]+$`)

// RegisterValidators installs the custom binding validators: "hhmm" for
// wall-clock time fields and "slug" for usernames and event URLs. The
// builtin "timezone" validator covers IANA zone names.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
			_, err := time.Parse("15:04", fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
			return slugRe.MatchString(fl.Field().String())
		})
	}
}

// decodeStrict decodes a JSON body into a typed payload, rejecting unknown
// fields, then runs the struct validators. Used where loosely-shaped client
// JSON must not silently slip extra fields through.
func decodeStrict(c *gin.Context, payload any) error {
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(payload); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		if err := v.Struct(payload); err != nil {
			return err
		}
	}
	return nil
}
