package validation

import (
	"errors"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markethub-essentials/backend/internal/errs"
)

type payload struct {
	Name  string   `json:"name" validate:"required"`
	Tags  []string `json:"tags" validate:"required,min=1"`
	Level string   `json:"level" validate:"omitempty,oneof=low high"`
}

func (p *payload) Validate() error {
	return validator.New().Struct(p)
}

type plainError struct{}

func (plainError) Validate() error { return errors.New("boom") }

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		body    string
		wantErr bool
	}{
		"Object":        {body: `{"name":"a"}`},
		"Null":          {body: `null`},
		"Malformed":     {body: `{"name":`, wantErr: true},
		"Empty":         {body: ``, wantErr: true},
		"Array":         {body: `[1,2]`, wantErr: true},
		"Trailing junk": {body: `{"name":"a"} x`, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			var p payload
			err := DecodeJSON([]byte(tc.body), &p)
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}

			var httpErr *errs.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, http.StatusBadRequest, httpErr.Status)
			assert.Equal(t, "Invalid request body", httpErr.Message)
		})
	}
}

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		payload Validatable
		want    []errs.FieldError
		wantErr bool
	}{
		"Valid": {
			payload: &payload{Name: "a", Tags: []string{"x"}},
		},
		"Missing everything": {
			payload: &payload{},
			want: []errs.FieldError{
				{Field: "Name", Error: "is required"},
				{Field: "Tags", Error: "is required"},
			},
			wantErr: true,
		},
		"Empty list": {
			payload: &payload{Name: "a", Tags: []string{}},
			want:    []errs.FieldError{{Field: "Tags", Error: "must contain at least 1 item(s)"}},
			wantErr: true,
		},
		"Not one of": {
			payload: &payload{Name: "a", Tags: []string{"x"}, Level: "mid"},
			want:    []errs.FieldError{{Field: "Level", Error: "must be one of: low high"}},
			wantErr: true,
		},
		"Non validator error": {
			payload: plainError{},
			wantErr: true,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			err := Check(tc.payload, "Missing required fields")
			if !tc.wantErr {
				require.NoError(t, err)
				return
			}

			var httpErr *errs.HTTPError
			require.ErrorAs(t, err, &httpErr)
			assert.Equal(t, "Missing required fields", httpErr.Message)
			assert.Equal(t, tc.want, httpErr.Errors)
		})
	}
}
