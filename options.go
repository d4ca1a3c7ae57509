package depot

// SaveOption configures Save operations.
type SaveOption func(*saveOptions)

// saveOptions holds configuration for a single Save call.
type saveOptions struct {
	owner           string           // Owner subdirectory inside the client namespace
	contentType     string           // Declared content type, used for validation only
	validationRules []ValidationRule // Validation rules applied before the file is kept
}

// WithOwner stores the file under an owner subdirectory inside the client
// namespace. The owner becomes part of the file's relative path:
// "owner/storedName" instead of "storedName".
func WithOwner(owner string) SaveOption {
	return func(o *saveOptions) {
		o.owner = owner
	}
}

// WithContentType supplies the content type the client declared for the
// upload. It feeds type validation rules; the stored record's MIME type is
// always derived from the file extension so that Save, List, and Info agree.
func WithContentType(ct string) SaveOption {
	return func(o *saveOptions) {
		o.contentType = ct
	}
}

// WithValidation adds validation rules applied after the bytes are written
// to a temporary file and before it is moved into the namespace. If any rule
// fails, nothing is kept and a *FileValidationError is returned.
func WithValidation(rules ...ValidationRule) SaveOption {
	return func(o *saveOptions) {
		o.validationRules = append(o.validationRules, rules...)
	}
}
