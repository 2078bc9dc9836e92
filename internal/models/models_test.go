package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnumerations(t *testing.T) {
	assert.True(t, IsCategory("main course"))
	assert.True(t, IsCategory("side dish"))
	assert.False(t, IsCategory("Main Course"))
	assert.False(t, IsCategory(""))

	assert.True(t, IsServings("8+"))
	assert.False(t, IsServings("3"))
}

func TestUserResponseOmitsPassword(t *testing.T) {
	user := User{ID: 7, Username: "chef", Email: "chef@example.com", Password: "$2a$10$hash"}

	body, err := json.Marshal(NewUserResponse(user))
	require.NoError(t, err)

	assert.NotContains(t, string(body), "password")
	assert.NotContains(t, string(body), "$2a$10$hash")
	assert.Contains(t, string(body), `"username":"chef"`)
}

func TestRecipeSummaryIsSavedOmittedForGuests(t *testing.T) {
	recipe := Recipe{ID: 1, UserID: 2, Name: "Soup", User: User{ID: 2, Username: "cook"}}

	guest, err := json.Marshal(NewRecipeSummary(recipe, 0, nil))
	require.NoError(t, err)
	assert.NotContains(t, string(guest), "is_saved")

	saved := false
	member, err := json.Marshal(NewRecipeSummary(recipe, 4.5, &saved))
	require.NoError(t, err)
	assert.Contains(t, string(member), `"is_saved":false`)
	assert.Contains(t, string(member), `"average_rating":4.5`)
	assert.Contains(t, string(member), `"username":"cook"`)
}

func TestRecipeDetailKeepsStepOrder(t *testing.T) {
	recipe := Recipe{
		ID: 3,
		Steps: []Step{
			{ID: 10, Order: 1, Description: "Boil water"},
			{ID: 11, Order: 2, Description: "Add pasta"},
		},
	}

	detail := NewRecipeDetail(recipe, 0, nil)
	require.Len(t, detail.Steps, 2)
	assert.Equal(t, 1, detail.Steps[0].Order)
	assert.Equal(t, "Add pasta", detail.Steps[1].Description)
}
