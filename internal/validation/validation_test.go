package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stepInput struct {
	Description string `json:"description" validate:"required"`
}

type recipeInput struct {
	Name     string      `json:"name" validate:"required,max=10"`
	Category string      `json:"category" validate:"required,recipe_category"`
	Servings string      `json:"servings" validate:"required,recipe_servings"`
	PrepTime int         `json:"prep_time" validate:"gte=0"`
	Steps    []stepInput `json:"steps" validate:"required,min=1,dive"`
}

type profileInput struct {
	Username *string `json:"username" validate:"omitnil,filled,max=5"`
	Email    *string `json:"email" validate:"omitnil,filled,email"`
}

func TestStructReportsEveryFailingField(t *testing.T) {
	errs := Struct(recipeInput{
		Name:     "a very long recipe name",
		Category: "snack",
		Servings: "3",
		PrepTime: -1,
		Steps:    []stepInput{{Description: "Boil water"}, {Description: ""}},
	})

	assert.Equal(t, []string{"category", "name", "prep_time", "servings", "steps.1.description"}, errs.Fields())
	assert.Equal(t, []string{"The name may not be greater than 10 characters."}, errs["name"])
	assert.Equal(t, []string{"The selected category is invalid."}, errs["category"])
	assert.Equal(t, []string{"The prep time must be at least 0."}, errs["prep_time"])
	assert.Equal(t, []string{"The steps.1.description field is required."}, errs["steps.1.description"])
}

func TestStructEmptySteps(t *testing.T) {
	errs := Struct(recipeInput{Name: "Pasta", Category: "main course", Servings: "2", Steps: []stepInput{}})
	assert.Equal(t, []string{"steps"}, errs.Fields())
	assert.Equal(t, []string{"The steps must have at least 1 items."}, errs["steps"])

	errs = Struct(recipeInput{Name: "Pasta", Category: "main course", Servings: "2"})
	assert.Equal(t, []string{"The steps field is required."}, errs["steps"])
}

func TestStructPasses(t *testing.T) {
	errs := Struct(recipeInput{
		Name:     "Pasta",
		Category: "main course",
		Servings: "8+",
		Steps:    []stepInput{{Description: "Boil water"}},
	})
	assert.Nil(t, errs)
}

func TestStructPartialPointers(t *testing.T) {
	assert.Nil(t, Struct(profileInput{}))

	empty := ""
	badEmail := "not-an-email"
	errs := Struct(profileInput{Username: &empty, Email: &badEmail})
	assert.Equal(t, []string{"The username field is required."}, errs["username"])
	assert.Equal(t, []string{"The email must be a valid email address."}, errs["email"])
}

func TestStructBlankPointer(t *testing.T) {
	blank := "   "
	errs := Struct(profileInput{Username: &blank})
	assert.Equal(t, []string{"The username field is required."}, errs["username"])
}

type passwordInput struct {
	Password string `json:"password" validate:"required,min=8,maxbytes=72"`
}

func TestStructMaxBytes(t *testing.T) {
	assert.Nil(t, Struct(passwordInput{Password: strings.Repeat("a", 72)}))

	// 40 runes, 80 bytes
	errs := Struct(passwordInput{Password: strings.Repeat("é", 40)})
	assert.Equal(t, []string{"The password may not be greater than 72 bytes."}, errs["password"])
}

func TestErrorsMerge(t *testing.T) {
	errs := Errors{}
	errs.Add("email", "first")
	errs.Merge(Errors{"email": {"second"}, "username": {"taken"}})

	assert.Equal(t, []string{"first", "second"}, errs["email"])
	assert.Equal(t, []string{"email", "username"}, errs.Fields())
}
