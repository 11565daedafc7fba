package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	oapimiddleware "github.com/oapi-codegen/nethttp-middleware"

	"github.com/concoro/concoro-platform/platform/go/auth"
	"github.com/concoro/concoro-platform/platform/go/problem"
)

// BearerScheme is the security scheme name used by the contracts.
const BearerScheme = "bearerAuth"

var errUnauthenticated = errors.New("a valid bearer token is required")

// AuthenticateOperation satisfies operations that declare bearerAuth. Tokens are
// verified earlier by auth.Authenticate, so only the resulting principal is checked.
func AuthenticateOperation(_ context.Context, input *openapi3filter.AuthenticationInput) error {
	if input == nil || input.SecuritySchemeName != BearerScheme {
		return nil
	}
	r := input.RequestValidationInput.Request
	if r == nil {
		return errors.New("no request in validation input")
	}
	if _, ok := auth.PrincipalFromContext(r.Context()); !ok {
		return errUnauthenticated
	}
	return nil
}

// SpecValidator validates requests against spec and reports failures as problem details.
// Servers are cleared so paths match regardless of the host the contract advertises.
func SpecValidator(spec *openapi3.T) func(http.Handler) http.Handler {
	spec.Servers = nil
	return oapimiddleware.OapiRequestValidatorWithOptions(spec, &oapimiddleware.Options{
		Options: openapi3filter.Options{
			AuthenticationFunc: AuthenticateOperation,
		},
		ErrorHandler: writeValidationProblem,
	})
}

func writeValidationProblem(w http.ResponseWriter, message string, status int) {
	problemType := problem.TypeValidation
	if status == http.StatusUnauthorized {
		problemType = problem.TypeUnauthorized
	}
	problem.Write(w, problem.New(status, problemType, "", message))
}
