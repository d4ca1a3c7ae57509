package depot

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveOptions(t *testing.T) {
	t.Parallel()

	var o saveOptions
	for _, opt := range []SaveOption{
		WithOwner("u42"),
		WithContentType("application/pdf"),
		WithValidation(MaxSize(10), NotEmpty()),
		WithValidation(ImagesOnly()),
	} {
		opt(&o)
	}

	require.Equal(t, "u42", o.owner)
	require.Equal(t, "application/pdf", o.contentType)
	require.Len(t, o.validationRules, 3, "validation rules accumulate")
}
