package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"restaurant-api/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// badRequest wraps a binding or decoding failure into a 400.
func badRequest(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, len(verrs))
		for i, fe := range verrs {
			fields[i] = fe.Field()
		}
		return fmt.Errorf("%w: invalid or missing fields: %s", apperrors.ErrBadRequest, strings.Join(fields, ", "))
	}
	return fmt.Errorf("%w: %v", apperrors.ErrBadRequest, err)
}

// readBody returns the raw JSON object sent by the client together with the
// set of keys it contains. An absent or empty object is a 400.
func readBody(c *gin.Context) ([]byte, map[string]json.RawMessage, error) {
	raw, err := c.GetRawData()
	if err != nil {
		return nil, nil, badRequest(err)
	}
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, nil, fmt.Errorf("%w: empty body", apperrors.ErrBadRequest)
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, nil, badRequest(err)
	}
	if len(keys) == 0 {
		return nil, nil, fmt.Errorf("%w: empty body", apperrors.ErrBadRequest)
	}
	return raw, keys, nil
}

// bindBody decodes raw into obj and runs its binding tags.
func bindBody(raw []byte, obj interface{}) error {
	if err := binding.JSON.BindBody(raw, obj); err != nil {
		return badRequest(err)
	}
	return nil
}

func blank(s *string) bool {
	return s != nil && strings.TrimSpace(*s) == ""
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
