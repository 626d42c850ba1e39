// Package validator provides rule-based input validation.
//
// Rules are plain values built by constructor functions and evaluated with
// Apply, which collects every failure into ValidationErrors:
//
//	err := validator.Apply(
//		validator.RequiredString("email", req.Email),
//		validator.ValidEmail("email", req.Email),
//		validator.MinLenString("password", req.Password, 6),
//	)
//	if errs := validator.ExtractValidationErrors(err); errs != nil {
//		// errs.Get("email")
//	}
package validator
