package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type contactPayload struct {
	Name    string `json:"contact_name" validate:"required"`
	Email   string `json:"email_address" validate:"required,email"`
	Message string `json:"message" validate:"required,max=20"`
}

func TestValidateStructSuccess(t *testing.T) {
	payload := contactPayload{
		Name:    "Alice",
		Email:   "alice@example.com",
		Message: "Hello there",
	}

	require.NoError(t, ValidateStruct(payload))
}

func TestValidateStructReportsJSONNamesAndMessages(t *testing.T) {
	err := ValidateStruct(contactPayload{Email: "invalid", Message: "this message is far too long"})

	var vErrs ValidationErrors
	require.ErrorAs(t, err, &vErrs)
	require.Len(t, vErrs, 3)

	require.Equal(t, ValidationError{Field: "contact_name", Tag: "required", Message: "contact name is required"}, vErrs[0])
	require.Equal(t, "email", vErrs[1].Tag)
	require.Equal(t, "email address must be a valid email address", vErrs[1].Message)
	require.Equal(t, "20", vErrs[2].Param)
	require.Equal(t,
		"contact name is required; email address must be a valid email address; message must be at most 20 characters",
		err.Error())
}

func TestSlugRule(t *testing.T) {
	type post struct {
		Slug string `json:"slug" validate:"omitempty,slug"`
	}

	require.NoError(t, ValidateStruct(post{Slug: "about-us"}))
	require.NoError(t, ValidateStruct(post{Slug: "blog2"}))
	require.NoError(t, ValidateStruct(post{}))

	err := ValidateStruct(post{Slug: "About Us"})
	require.EqualError(t, err, "slug must be lowercase words joined by hyphens")
	require.Error(t, ValidateStruct(post{Slug: "double--dash"}))
	require.Error(t, ValidateStruct(post{Slug: "-leading"}))
}

func TestOneOfMessage(t *testing.T) {
	type post struct {
		Status string `json:"status" validate:"oneof=draft publish"`
	}
	require.EqualError(t, ValidateStruct(post{Status: "trash"}), "status must be one of: draft publish")
}
