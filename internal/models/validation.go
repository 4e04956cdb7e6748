package models

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

// SongValidator enforces the recommendation schema on decoded model output
type SongValidator struct {
	v *validator.Validate
}

// NewSongValidator creates a validator that reports fields by their JSON names
func NewSongValidator() *SongValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("json")
		if name == "" {
			return fld.Name
		}
		if idx := strings.Index(name, ","); idx >= 0 {
			return name[:idx]
		}
		return name
	})

	// Registration only fails for empty tags or nil funcs
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("videoid", func(fl validator.FieldLevel) bool {
		return IsValidVideoID(fl.Field().String())
	})

	return &SongValidator{v: v}
}

// SchemaError describes why a decoded song was rejected
type SchemaError struct {
	Index  int
	Fields map[string]string
}

func (e *SchemaError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+" "+e.Fields[name])
	}
	return fmt.Sprintf("recommendation %d invalid: %s", e.Index, strings.Join(parts, ", "))
}

// ValidateSong checks a single song; index is only used for error reporting
func (sv *SongValidator) ValidateSong(index int, song Song) error {
	if err := sv.v.Struct(song); err != nil {
		var validationErrs validator.ValidationErrors
		if !errors.As(err, &validationErrs) {
			return err
		}
		fields := make(map[string]string, len(validationErrs))
		for _, fe := range validationErrs {
			fields[fe.Field()] = friendlyMessage(fe)
		}
		return &SchemaError{Index: index, Fields: fields}
	}
	return nil
}

// ValidateSongs checks every song and fails on the first violation
func (sv *SongValidator) ValidateSongs(songs []Song) error {
	if len(songs) == 0 {
		return errors.New("recommendations must not be empty")
	}
	for i, song := range songs {
		if err := sv.ValidateSong(i, song); err != nil {
			return err
		}
	}
	return nil
}

func friendlyMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "notblank":
		return "is required"
	case "oneof":
		return "must be one of: " + e.Param()
	case "videoid":
		return "must be an 11 character YouTube video id"
	default:
		return "is invalid"
	}
}
