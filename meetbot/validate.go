package meetbot

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

// MaxAPIKeyNameLength is the longest API key name the service accepts
const MaxAPIKeyNameLength = 100

// validate is shared by all clients; validator.Validate caches struct metadata
// and is safe for concurrent use.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report JSON field names so messages match the wire format
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// Registration only fails on empty tags or nil funcs
	_ = v.RegisterValidation("meetingurl", func(fl validator.FieldLevel) bool {
		return isAbsoluteURL(fl.Field().String())
	})
	_ = v.RegisterValidation("looseemail", func(fl validator.FieldLevel) bool {
		return looksLikeEmail(fl.Field().String())
	})
	_ = v.RegisterValidation("recordingmode", func(fl validator.FieldLevel) bool {
		return RecordingMode(fl.Field().String()).IsValid()
	})

	return v
}

// isAbsoluteURL accepts URLs with a scheme and a host
func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// looksLikeEmail only checks for a local part and a domain around a single @.
// Single-label domains such as user@localhost are accepted.
func looksLikeEmail(s string) bool {
	if strings.ContainsFunc(s, unicode.IsSpace) {
		return false
	}
	local, domain, ok := strings.Cut(s, "@")
	return ok && local != "" && domain != "" && !strings.Contains(domain, "@")
}

// validateStruct runs tag validation and converts the first failure into an *Error
func validateStruct(op string, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return validationError(op, "", err.Error())
	}

	fe := verrs[0]
	e := validationError(op, fe.Field(), fieldErrorMessage(fe))
	e.Details["rule"] = fe.Tag()
	return e
}

// fieldErrorMessage renders a human readable message for one failed rule
func fieldErrorMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "looseemail":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "max":
		return fmt.Sprintf("%s must be %s characters or fewer", field, fe.Param())
	case "meetingurl":
		return fmt.Sprintf("%s has an invalid URL format: must be an absolute URL such as https://meet.example.com/abc", field)
	case "recordingmode":
		return fmt.Sprintf("%s must be one of %s", field, recordingModeList())
	default:
		return fmt.Sprintf("%s failed %q validation", field, fe.Tag())
	}
}

func recordingModeList() string {
	names := make([]string, len(RecordingModes))
	for i, m := range RecordingModes {
		names[i] = string(m)
	}
	return strings.Join(names, ", ")
}

// requireNonBlank rejects empty and whitespace-only values
func requireNonBlank(op, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return validationError(op, field, field+" is required")
	}
	return nil
}

// validateAPIKey checks the caller credential for authenticated operations
func validateAPIKey(op, apiKey string) error {
	if strings.TrimSpace(apiKey) == "" {
		return validationError(op, "apiKey", "apiKey is required and must not be blank")
	}
	return nil
}

// validateBaseURL checks the configured service URL
func validateBaseURL(op, baseURL string) error {
	if strings.TrimSpace(baseURL) == "" {
		return validationError(op, "baseUrl", "baseUrl is required")
	}
	return nil
}

func validateCreateUser(req CreateUserRequest) error {
	const op = "create user"
	if err := requireNonBlank(op, "email", req.Email); err != nil {
		return err
	}
	if err := requireNonBlank(op, "name", req.Name); err != nil {
		return err
	}
	return validateStruct(op, req)
}

func validateCreateAPIKey(req CreateAPIKeyRequest) error {
	const op = "create API key"
	if err := requireNonBlank(op, "userId", req.UserID); err != nil {
		return err
	}
	if err := requireNonBlank(op, "name", req.Name); err != nil {
		return err
	}
	return validateStruct(op, req)
}

func validateCreateBot(apiKey string, req CreateBotRequest) error {
	const op = "create bot"
	if err := validateAPIKey(op, apiKey); err != nil {
		return err
	}
	if err := requireNonBlank(op, "name", req.Name); err != nil {
		return err
	}
	if err := requireNonBlank(op, "meetingUrl", req.MeetingURL); err != nil {
		return err
	}
	if err := validateStruct(op, req); err != nil {
		return err
	}
	if req.JoinAt != nil && req.LeaveAt != nil && !req.LeaveAt.After(*req.JoinAt) {
		return validationError(op, "leaveAt", "leaveAt must be after joinAt")
	}
	return nil
}

func validateTranscriptOptions(op string, opts TranscriptOptions) error {
	if opts.Page < 0 {
		return validationError(op, "page", "page must be a positive integer")
	}
	if opts.Limit < 0 {
		return validationError(op, "limit", "limit must be a positive integer")
	}
	return nil
}
