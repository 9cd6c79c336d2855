package cmdutil

import (
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/pachyderm/idxconvert/src/internal/errors"
)

const (
	cannotParseErr              = "cannot parse"
	envKeyNotSetWhenRequiredErr = "env key not set when required"
	expectedPointerErr          = "expected pointer"
	expectedStructErr           = "expected struct"
	fieldTypeNotAllowedErr      = "field type not allowed"
	invalidTagErr               = "invalid tag, must be KEY,{required},{default=DEFAULT_VALUE}"
)

// Populate populates the fields of the struct object points to from environment variables, using
// tags of the form `env:"KEY,default=VALUE"` or `env:"KEY,required"`.  Nested structs are
// populated recursively.
func Populate(object interface{}) error {
	return populate(reflect.ValueOf(object), os.LookupEnv, false)
}

// PopulateDefaults populates each field from the default in its tag, ignoring the environment.
// This is meant for tests.
func PopulateDefaults(object interface{}) error {
	return populate(reflect.ValueOf(object), func(string) (string, bool) { return "", false }, false)
}

func populate(reflectValue reflect.Value, lookup func(string) (string, bool), recursive bool) error {
	if reflectValue.Type().Kind() == reflect.Ptr {
		reflectValue = reflectValue.Elem()
	} else if !recursive {
		return errors.Errorf("%s: %v", expectedPointerErr, reflectValue.Type())
	}
	if reflectValue.Type().Kind() != reflect.Struct {
		return errors.Errorf("%s: %v", expectedStructErr, reflectValue.Type())
	}
	for i := 0; i < reflectValue.NumField(); i++ {
		structField := reflectValue.Type().Field(i)
		if structField.Type.Kind() == reflect.Struct {
			if err := populate(reflectValue.Field(i), lookup, true); err != nil {
				return err
			}
			continue
		}
		tag, err := getEnvTag(structField)
		if err != nil {
			return err
		}
		if tag == nil {
			continue
		}
		value, ok := lookup(tag.key)
		if !ok || value == "" {
			value = tag.defaultValue
		}
		if value == "" {
			if tag.required {
				return errors.Errorf("%s: %s %v", envKeyNotSetWhenRequiredErr, tag.key, reflectValue.Type())
			}
			continue
		}
		parsed, err := parseField(structField, value)
		if err != nil {
			return errors.Wrapf(err, "%s", tag.key)
		}
		reflectValue.Field(i).Set(reflect.ValueOf(parsed).Convert(structField.Type))
	}
	return nil
}

type envTag struct {
	key          string
	required     bool
	defaultValue string
}

func getEnvTag(structField reflect.StructField) (*envTag, error) {
	tag := structField.Tag.Get("env")
	if tag == "" {
		return nil, nil
	}
	split := strings.SplitN(tag, ",", 2)
	envTag := &envTag{key: split[0]}
	if len(split) == 1 {
		return envTag, nil
	}
	split = strings.SplitN(strings.TrimSpace(split[1]), "=", 2)
	switch split[0] {
	case "required":
		envTag.required = true
	case "default":
		if len(split) != 2 {
			return nil, errors.Errorf("%s: %s", invalidTagErr, tag)
		}
		envTag.defaultValue = split[1]
	default:
		return nil, errors.Errorf("%s: %s", invalidTagErr, tag)
	}
	return envTag, nil
}

func parseField(structField reflect.StructField, value string) (interface{}, error) {
	switch structField.Type.Kind() {
	case reflect.Bool:
		parsedValue, err := strconv.ParseBool(value)
		if err != nil {
			return nil, errors.Wrap(err, cannotParseErr)
		}
		return parsedValue, nil
	case reflect.Int:
		parsedValue, err := strconv.ParseInt(value, 10, 0)
		if err != nil {
			return nil, errors.Wrap(err, cannotParseErr)
		}
		return int(parsedValue), nil
	case reflect.String:
		return value, nil
	}
	return nil, errors.Errorf("%s: %v", fieldTypeNotAllowedErr, structField.Type)
}
