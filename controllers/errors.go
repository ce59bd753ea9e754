package controllers

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joseguilhermeromano/Pastel360/apperrors"
)

var registerOnce sync.Once

// RegisterValidation makes validator report JSON field names, so error
// details match the request payload.
func RegisterValidation() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return fld.Name
			}
			return name
		})
	})
}

func respondError(ctx *gin.Context, err *apperrors.Error) {
	body := gin.H{"error": err.Message}
	if len(err.Details) > 0 {
		body["details"] = err.Details
	}
	ctx.AbortWithStatusJSON(err.Code, body)
}

// respondBindError renders 422 for rule violations and 400 for anything
// that could not be decoded.
func respondBindError(ctx *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			field := fieldPath(fe)
			details[field] = ruleMessage(field, fe)
		}
		respondError(ctx, apperrors.Validation("The given data was invalid.", details))
		return
	}
	respondError(ctx, apperrors.BadRequest("Invalid request body", err))
}

// fieldPath turns "OrderDraft.items[0].quantity" into "items.0.quantity".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	ns = strings.ReplaceAll(ns, "[", ".")
	return strings.ReplaceAll(ns, "]", "")
}

func ruleMessage(field string, fe validator.FieldError) string {
	label := field
	if i := strings.LastIndexByte(field, '.'); i >= 0 {
		label = field[i+1:]
	}
	label = strings.ReplaceAll(label, "_", " ")

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "min":
		if fe.Kind() == reflect.Slice {
			return fmt.Sprintf("The %s must have at least %s items.", label, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", label, fe.Param())
	case "max":
		return fmt.Sprintf("The %s may not be greater than %s characters.", label, fe.Param())
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", label)
	case "datetime":
		return fmt.Sprintf("The %s does not match the format %s.", label, fe.Param())
	}
	return fmt.Sprintf("The %s is invalid.", label)
}

func parseID(ctx *gin.Context, what string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(ctx, apperrors.BadRequest(fmt.Sprintf("Invalid %s ID format", what), err))
		return 0, false
	}
	return uint(id), true
}
