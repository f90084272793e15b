// Package validator builds declarative, translation-friendly validation rules.
//
// A Rule pairs a boolean Check with the ValidationError reported when the
// check fails. Apply runs every rule (it never short-circuits) and collects
// the failures into ValidationErrors, which implements error:
//
//	err := validator.Apply(
//	    validator.MinNum("quantity", item.Quantity, 1),
//	    validator.MaxNum("quantity", item.Quantity, product.MaxQuantity),
//	    validator.Custom("product", product.Available, "store.product.not_available", "product is not available"),
//	)
//	if errs := validator.ExtractValidationErrors(err); errs != nil {
//	    keys := errs.TranslationKeys("quantity")
//	}
//
// Rules carry no hidden state, so the package is goroutine-safe.
package validator
