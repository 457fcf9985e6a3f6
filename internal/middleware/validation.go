package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	apierrors "companylens/internal/errors"
)

var (
	tickerPattern  = regexp.MustCompile(`^[A-Za-z0-9.]{2,10}$`)
	datasetPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// RequestValidator binds path and query parameters into request structs
// and validates them with struct tags.
//
// Fields tagged `param:"name"` are read from the chi URL parameters and
// fields tagged `query:"name"` from the query string. Supported kinds are
// string, bool, int and float64, plus pointers to them; a pointer stays nil
// when the parameter is absent.
type RequestValidator struct {
	validator *validator.Validate
	logger    *slog.Logger
}

// NewRequestValidator creates a validator with the ticker and dataset
// rules registered. Error field names use the wire name of the parameter.
func NewRequestValidator(logger *slog.Logger) *RequestValidator {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New()
	_ = v.RegisterValidation("ticker", isValidTicker)
	_ = v.RegisterValidation("dataset", isValidDataset)
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"param", "query", "json"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return &RequestValidator{
		validator: v,
		logger:    logger.With(slog.String("component", "request_validator")),
	}
}

// Bind fills dst, a pointer to a struct, from r and validates it. Parse
// failures come back as a VALIDATION_FAILED APIError, rule failures as
// validator.ValidationErrors.
func (v *RequestValidator) Bind(r *http.Request, dst interface{}) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("bind target must be a pointer to a struct, got %T", dst)
	}

	var fieldErrs []apierrors.ValidationError
	elem := rv.Elem()
	query := r.URL.Query()

	for i := 0; i < elem.NumField(); i++ {
		field := elem.Type().Field(i)
		if !field.IsExported() {
			continue
		}

		var name, raw string
		var present bool
		if name = field.Tag.Get("param"); name != "" {
			raw = chi.URLParam(r, name)
			present = raw != ""
		} else if name = field.Tag.Get("query"); name != "" {
			present = query.Has(name)
			raw = query.Get(name)
		} else {
			continue
		}
		if !present {
			continue
		}

		if err := setField(elem.Field(i), strings.TrimSpace(raw)); err != nil {
			fieldErrs = append(fieldErrs, apierrors.ValidationError{Field: name, Message: err.Error()})
		}
	}

	if len(fieldErrs) > 0 {
		v.logger.DebugContext(r.Context(), "request parameters rejected", slog.Any("errors", fieldErrs))
		return apierrors.NewValidationErrors(fieldErrs)
	}

	return v.ValidateStruct(dst)
}

// ValidateStruct validates a struct against its validate tags
func (v *RequestValidator) ValidateStruct(s interface{}) error {
	return v.validator.Struct(s)
}

func setField(fv reflect.Value, raw string) error {
	if fv.Kind() == reflect.Pointer {
		target := reflect.New(fv.Type().Elem())
		if err := setField(target.Elem(), raw); err != nil {
			return err
		}
		fv.Set(target)
		return nil
	}

	switch fv.Kind() {
	case reflect.String:
		fv.SetString(raw)
	case reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("must be true or false")
		}
		fv.SetBool(b)
	case reflect.Int, reflect.Int64, reflect.Int32:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("must be an integer")
		}
		fv.SetInt(n)
	case reflect.Float64, reflect.Float32:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("must be a number")
		}
		fv.SetFloat(f)
	default:
		return fmt.Errorf("unsupported parameter type %s", fv.Kind())
	}
	return nil
}

// isValidTicker accepts 2-10 letters, digits or dots. Case is normalised
// later by the service.
func isValidTicker(fl validator.FieldLevel) bool {
	return tickerPattern.MatchString(strings.TrimSpace(fl.Field().String()))
}

// isValidDataset accepts configuration style dataset names.
func isValidDataset(fl validator.FieldLevel) bool {
	return datasetPattern.MatchString(fl.Field().String())
}
