package form

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPostFormValidate(t *testing.T) {
	tests := []struct {
		name      string
		form      PostForm
		wantField string
	}{
		{name: "valid", form: PostForm{Text: "hello"}},
		{name: "valid with group", form: PostForm{Text: "hello", GroupID: "3"}},
		{name: "empty text", form: PostForm{Text: ""}, wantField: "text"},
		{name: "whitespace only text", form: PostForm{Text: "   \n\t"}, wantField: "text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.form.Normalize()
			errs := Validate(&tt.form)
			if tt.wantField == "" {
				assert.Empty(t, errs)
			} else {
				assert.True(t, errs.Has(tt.wantField))
				assert.NotEmpty(t, errs.Get(tt.wantField))
			}
		})
	}
}

func TestSignupFormValidate(t *testing.T) {
	tests := []struct {
		name      string
		form      SignupForm
		wantField string
	}{
		{name: "valid", form: SignupForm{Username: "leo", Password: "hunter22"}},
		{name: "missing username", form: SignupForm{Password: "hunter22"}, wantField: "username"},
		{name: "short username", form: SignupForm{Username: "ab", Password: "hunter22"}, wantField: "username"},
		{name: "username with spaces", form: SignupForm{Username: "a b c", Password: "hunter22"}, wantField: "username"},
		{name: "short password", form: SignupForm{Username: "leo", Password: "abc"}, wantField: "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.form.Normalize()
			errs := Validate(&tt.form)
			if tt.wantField == "" {
				assert.Empty(t, errs)
			} else {
				assert.True(t, errs.Has(tt.wantField), "errors: %v", errs)
			}
		})
	}
}
