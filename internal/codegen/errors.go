package codegen

import (
	"errors"
	"fmt"
)

// Sentinel errors for the fatal compiler conditions. Callers match them with
// errors.Is; the concrete values carry context about the offending construct.
var (
	ErrUnknownReference    = errors.New("unknown reference")
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	ErrUnsupportedFeature  = errors.New("unsupported feature")
	ErrUnsupportedKeyword  = errors.New("unsupported keyword")
	ErrUnknownScalarType   = errors.New("unknown scalar type")
	ErrValidationFailure   = errors.New("validation failure")
)

type genError struct {
	kind error
	msg  string
}

func (e *genError) Error() string { return e.msg }

func (e *genError) Is(target error) bool { return target == e.kind }

func errUnknownReference(ref string) error {
	return &genError{kind: ErrUnknownReference, msg: fmt.Sprintf("codegen: unknown reference %q", ref)}
}

func errDuplicateIdentifier(name, first, second string) error {
	return &genError{
		kind: ErrDuplicateIdentifier,
		msg:  fmt.Sprintf("codegen: identifier %q generated for both %q and %q", name, first, second),
	}
}

func errUnsupportedFeature(what string) error {
	return &genError{kind: ErrUnsupportedFeature, msg: fmt.Sprintf("codegen: %s is not supported", what)}
}

func errUnsupportedKeyword(keyword string) error {
	return &genError{kind: ErrUnsupportedKeyword, msg: fmt.Sprintf("codegen: schema keyword %q is not supported", keyword)}
}

func errUnknownScalarType(typ string) error {
	return &genError{kind: ErrUnknownScalarType, msg: fmt.Sprintf("codegen: unknown schema type %q", typ)}
}

func errValidationFailure(cause error, msg string) error {
	if cause != nil {
		return &genError{kind: ErrValidationFailure, msg: fmt.Sprintf("codegen: %s: %v", msg, cause)}
	}
	return &genError{kind: ErrValidationFailure, msg: "codegen: " + msg}
}
