package validator_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storekit/pkg/validator"
)

func TestValidationErrors_Error(t *testing.T) {
	t.Run("returns default message when no errors", func(t *testing.T) {
		var errs validator.ValidationErrors
		assert.Equal(t, "validation failed", errs.Error())
	})

	t.Run("joins field messages", func(t *testing.T) {
		var errs validator.ValidationErrors
		errs.Add(validator.ValidationError{Field: "quantity", Message: "must be at least 1"})
		errs.Add(validator.ValidationError{Field: "product", Message: "product is not available"})
		assert.Equal(t, "validation failed: quantity: must be at least 1; product: product is not available", errs.Error())
	})
}

func TestValidationErrors_Lookup(t *testing.T) {
	errs := validator.ValidationErrors{
		{Field: "item", Message: "a", TranslationKey: "key.a"},
		{Field: "other", Message: "b", TranslationKey: "key.b"},
		{Field: "item", Message: "c", TranslationKey: "key.c"},
	}

	assert.True(t, errs.Has("item"))
	assert.False(t, errs.Has("missing"))
	assert.Equal(t, []string{"a", "c"}, errs.Get("item"))
	assert.Equal(t, []string{"key.a", "key.c"}, errs.TranslationKeys("item"))
	assert.Nil(t, errs.TranslationKeys("missing"))
	assert.Equal(t, []string{"item", "other"}, errs.Fields())
	assert.False(t, errs.IsEmpty())
}

func TestApply(t *testing.T) {
	t.Run("nil when all rules pass", func(t *testing.T) {
		err := validator.Apply(
			validator.MinNum("quantity", 2, 1),
			validator.MaxNum("quantity", 2, 5),
			validator.RequiredNum("quantity", 2),
		)
		assert.NoError(t, err)
	})

	t.Run("collects every failure without short-circuiting", func(t *testing.T) {
		err := validator.Apply(
			validator.MinNum("quantity", 0, 1),
			validator.RequiredNum("quantity", 0),
			validator.MaxNum("price", 12.5, 10.0),
		)
		require.Error(t, err)

		errs := validator.ExtractValidationErrors(err)
		require.Len(t, errs, 3)
		assert.Equal(t, []string{"validation.min", "validation.required"}, errs.TranslationKeys("quantity"))
		assert.Equal(t, []string{"must be at most 10"}, errs.Get("price"))
		assert.Equal(t, 10.0, errs[2].TranslationValues["max"])
	})
}

func TestCustom(t *testing.T) {
	err := validator.Apply(
		validator.Custom("item", false, "store.product.too_many", "too many items, maximum is 3", map[string]any{"max": 3}),
		validator.Custom("item", true, "store.product.not_available", "product is not available"),
	)
	errs := validator.ExtractValidationErrors(err)
	require.Len(t, errs, 1)
	assert.Equal(t, "store.product.too_many", errs[0].TranslationKey)
	assert.Equal(t, map[string]any{"field": "item", "max": 3}, errs[0].TranslationValues)
}

func TestWhen(t *testing.T) {
	failing := validator.Custom("item", false, "key", "failed")

	assert.NoError(t, validator.Apply(validator.When(false, failing)))
	assert.Error(t, validator.Apply(validator.When(true, failing)))
}

func TestExtractValidationErrors(t *testing.T) {
	assert.Nil(t, validator.ExtractValidationErrors(nil))
	assert.Nil(t, validator.ExtractValidationErrors(errors.New("plain")))

	wrapped := fmt.Errorf("validate order: %w", validator.Apply(validator.RequiredNum("id", 0)))
	assert.True(t, validator.IsValidationError(wrapped))
	assert.Len(t, validator.ExtractValidationErrors(wrapped), 1)
	assert.False(t, validator.IsValidationError(nil))
}
