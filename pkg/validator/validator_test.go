package validator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/summarist/pkg/validator"
)

func TestApply(t *testing.T) {
	t.Parallel()

	t.Run("all rules pass", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("email", "reader@example.com"),
			validator.ValidEmail("email", "reader@example.com"),
			validator.MinLenString("password", "secret", 6),
		)
		assert.NoError(t, err)
	})

	t.Run("collects every failure", func(t *testing.T) {
		t.Parallel()
		err := validator.Apply(
			validator.RequiredString("email", "  "),
			validator.ValidEmail("email", "  "),
			validator.MinLenString("password", "abc", 6),
			validator.OneOfString("plan", "weekly", []string{"yearly", "monthly"}),
		)
		require.Error(t, err)
		assert.True(t, validator.IsValidationError(err))

		errs := validator.ExtractValidationErrors(err)
		require.Len(t, errs, 4)
		assert.Equal(t, []string{"field is required", "must be a valid email address"}, errs.Get("email"))
		assert.True(t, errs.Has("password"))
		assert.Equal(t, []string{"must be one of: yearly, monthly"}, errs.Get("plan"))
		assert.Contains(t, err.Error(), "password: must be at least 6 characters long")
	})

	t.Run("wrapped errors", func(t *testing.T) {
		t.Parallel()
		err := fmt.Errorf("register: %w", validator.Apply(validator.RequiredString("name", "")))
		assert.True(t, validator.IsValidationError(err))
		assert.Len(t, validator.ExtractValidationErrors(err), 1)
		assert.Nil(t, validator.ExtractValidationErrors(errors.New("other")))
	})
}

func TestValidEmail(t *testing.T) {
	t.Parallel()

	valid := []string{"a@b.com", "reader+tag@mail.example.org", "first.last@example.co"}
	invalid := []string{"", "plain", "a@b", "@example.com", "a@.com", "a@example.com.", "Bob <bob@example.com>"}

	for _, email := range valid {
		assert.NoError(t, validator.Apply(validator.ValidEmail("email", email)), email)
	}
	for _, email := range invalid {
		assert.Error(t, validator.Apply(validator.ValidEmail("email", email)), email)
	}
}

func TestStringLength(t *testing.T) {
	t.Parallel()

	assert.NoError(t, validator.Apply(validator.MinLenString("p", "héllo!", 6)))
	assert.Error(t, validator.Apply(validator.MinLenString("p", "héllo", 6)))
	assert.NoError(t, validator.Apply(validator.MaxLenString("q", "short", 5)))
	assert.Error(t, validator.Apply(validator.MaxLenString("q", "longer", 5)))
	assert.Equal(t, "validation failed", validator.ValidationErrors{}.Error())
}
