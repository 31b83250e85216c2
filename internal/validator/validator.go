package validator

import (
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	govalidator "github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *govalidator.Validate
	// trans is the singleton English translator for rule messages.
	trans ut.Translator
)

// messages maps a rule key to its English template. {0} is the field label,
// {1} the rule parameter.
var messages = map[string]string{
	"required": "The {0} field is required.",
	"alpha":    "The {0} may only contain letters.",
	"email":    "The {0} must be a valid email address.",
	"numeric":  "The {0} must be a number.",
	"max":      "The {0} may not be greater than {1} characters.",
	"exists":   "The selected {0} is invalid.",
}

// Setup builds the validation engine and the English message catalogue.
// It is safe to call more than once; rules call it lazily.
func Setup() {
	once.Do(func() {
		validate = govalidator.New()

		enLocale := en.New()
		uni := ut.New(enLocale, enLocale)
		trans, _ = uni.GetTranslator("en")
		for key, text := range messages {
			_ = trans.Add(key, text, false)
		}
	})
}

// Message renders the message for key with the field label and parameters.
func Message(key, field string, params ...string) string {
	Setup()
	label := strings.ReplaceAll(field, "_", " ")
	msg, err := trans.T(key, append([]string{label}, params...)...)
	if err != nil {
		return key
	}
	return msg
}

// Bind merges query-string values and the request body (JSON or form) into
// dst. Body values override query values. A nil return means dst is filled;
// validation of the values is left to the rules.
func Bind(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindQuery(dst); err != nil {
		return err
	}
	if !hasBody(c.Request) {
		return nil
	}
	b := binding.Default(c.Request.Method, c.ContentType())
	if b == binding.Form {
		// Form binding already includes the query string.
		b = binding.FormPost
	}
	return c.ShouldBindWith(dst, b)
}

func hasBody(r *http.Request) bool {
	return r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0
}

// Int parses a value that already passed the Numeric rule into an id.
// Ids are INTEGER columns, so fractions and values outside int32 are rejected.
func Int(value string) (int, bool) {
	n, err := strconv.ParseInt(strings.TrimSpace(value), 10, 32)
	if err != nil {
		return 0, false
	}
	return int(n), true
}
