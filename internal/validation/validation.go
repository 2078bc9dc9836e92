// Package validation wraps go-playground/validator and renders failures as
// field → messages maps, reporting every failing field at once.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/franciscosanchezn/gin-cookbook-api/internal/models"
	"github.com/go-playground/validator/v10"
)

// Errors maps a field path (steps.0.description) to its messages.
type Errors map[string][]string

// Add appends a message for field.
func (e Errors) Add(field, message string) {
	e[field] = append(e[field], message)
}

// Merge copies every message of other into e.
func (e Errors) Merge(other Errors) {
	for field, messages := range other {
		e[field] = append(e[field], messages...)
	}
}

// Fields returns the failing field names in sorted order.
func (e Errors) Fields() []string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

var (
	once   sync.Once
	engine *validator.Validate

	indexPattern = regexp.MustCompile(`\[(\d+)\]`)
)

// Engine returns the shared validator with the recipe rules registered.
func Engine() *validator.Validate {
	once.Do(func() {
		engine = validator.New(validator.WithRequiredStructEnabled())
		engine.RegisterTagNameFunc(func(field reflect.StructField) string {
			name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
		mustRegister("recipe_category", func(fl validator.FieldLevel) bool {
			return models.IsCategory(fl.Field().String())
		})
		mustRegister("recipe_servings", func(fl validator.FieldLevel) bool {
			return models.IsServings(fl.Field().String())
		})
		// filled checks the value itself, so a pointer to "" fails where required would pass
		mustRegister("filled", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		mustRegister("maxbytes", func(fl validator.FieldLevel) bool {
			limit, err := strconv.Atoi(fl.Param())
			if err != nil {
				panic(fmt.Sprintf("maxbytes: bad parameter %q", fl.Param()))
			}
			return len(fl.Field().String()) <= limit
		})
	})
	return engine
}

func mustRegister(tag string, fn validator.Func) {
	if err := engine.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %s: %v", tag, err))
	}
}

// Struct validates v and returns nil when it passes.
func Struct(v interface{}) Errors {
	err := Engine().Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return Errors{"_": {err.Error()}}
	}

	out := Errors{}
	for _, fe := range fieldErrors {
		field := fieldPath(fe.Namespace())
		out.Add(field, Message(field, fe.Tag(), fe.Param(), fe.Kind()))
	}
	return out
}

// fieldPath turns "recipeInput.steps[1].description" into "steps.1.description".
func fieldPath(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		namespace = namespace[i+1:]
	}
	return indexPattern.ReplaceAllString(namespace, ".$1")
}

// Message renders the human readable text for a failed rule.
func Message(field, tag, param string, kind reflect.Kind) string {
	name := strings.ReplaceAll(field, "_", " ")
	switch tag {
	case "required", "filled":
		return fmt.Sprintf("The %s field is required.", name)
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", name)
	case "min", "gte":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("The %s must be at least %s characters.", name, param)
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("The %s must have at least %s items.", name, param)
		default:
			return fmt.Sprintf("The %s must be at least %s.", name, param)
		}
	case "max", "lte":
		switch kind {
		case reflect.String:
			return fmt.Sprintf("The %s may not be greater than %s characters.", name, param)
		case reflect.Slice, reflect.Array, reflect.Map:
			return fmt.Sprintf("The %s may not have more than %s items.", name, param)
		default:
			return fmt.Sprintf("The %s may not be greater than %s.", name, param)
		}
	case "maxbytes":
		return fmt.Sprintf("The %s may not be greater than %s bytes.", name, param)
	case "recipe_category", "recipe_servings", "oneof":
		return fmt.Sprintf("The selected %s is invalid.", name)
	default:
		return fmt.Sprintf("The %s is invalid.", name)
	}
}
