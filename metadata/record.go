package metadata

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/schema"

	"github.com/broady/builtins/contract"
)

var (
	validate      = validator.New()
	schemaDecoder = schema.NewDecoder()
)

func init() {
	must(validate.RegisterValidation("typeexpr", func(fl validator.FieldLevel) bool {
		_, err := parseTypeExpr(fl.Field().String())
		return err == nil
	}))
	must(validate.RegisterValidation("typeparam", func(fl validator.FieldLevel) bool {
		_, err := parseTypeParam(fl.Field().String())
		return err == nil
	}))
	must(validate.RegisterValidation("valueparam", func(fl validator.FieldLevel) bool {
		_, err := parseValueParam(fl.Field().String())
		return err == nil
	}))
	must(validate.RegisterValidation("annotation", func(fl validator.FieldLevel) bool {
		_, err := parseAnnotation(fl.Field().String())
		return err == nil
	}))
	must(validate.RegisterValidation("relname", func(fl validator.FieldLevel) bool {
		return validRelativeName(fl.Field().String())
	}))
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}

// Declaration kinds of a record.
const (
	declClass       = "class"
	declFunction    = "fun"
	declProperty    = "property"
	declConstructor = "constructor"
)

// record is one serialized declaration: a URL-encoded line of a package
// file, such as
//
//	decl=fun&owner=Int&name=plus&param=other: Int&returns=Int
type record struct {
	Decl string `schema:"decl" validate:"required,oneof=class fun property constructor"`
	Name string `schema:"name" validate:"required_unless=Decl constructor,omitempty,excludesall=./<>"`

	// Outer is the relative name of the class enclosing a nested class.
	Outer string `schema:"outer" validate:"omitempty,relname"`

	// Owner is the relative name of the class declaring a member. Empty
	// means top level.
	Owner string `schema:"owner" validate:"required_if=Decl constructor,omitempty,relname"`

	Kind       string `schema:"kind" validate:"omitempty,oneof=class interface enum_class enum_entry annotation_class object"`
	Modality   string `schema:"modality" validate:"omitempty,oneof=final sealed open abstract"`
	Visibility string `schema:"visibility" validate:"omitempty,oneof=public protected internal private"`

	TypeParameters []string `schema:"tp" validate:"dive,typeparam"`
	Supertypes     []string `schema:"super" validate:"dive,typeexpr"`
	Parameters     []string `schema:"param" validate:"dive,valueparam"`

	Returns  string `schema:"returns" validate:"required_if=Decl fun,omitempty,typeexpr"`
	Type     string `schema:"type" validate:"required_if=Decl property,omitempty,typeexpr"`
	Receiver string `schema:"receiver" validate:"excluded_unless=Decl fun,omitempty,typeexpr"`

	Mutable   bool `schema:"mutable"`
	Inner     bool `schema:"inner"`
	Data      bool `schema:"data"`
	Companion bool `schema:"companion"`
	Primary   bool `schema:"primary"`

	Annotations       []string `schema:"ann" validate:"dive,annotation"`
	GetterAnnotations []string `schema:"getter_ann" validate:"dive,annotation"`
	SetterAnnotations []string `schema:"setter_ann" validate:"dive,annotation"`
}

// decodeRecords parses a package file. Blank lines and lines starting with
// '#' are skipped. The first malformed record fails the whole file.
func decodeRecords(path string, data []byte) ([]record, error) {
	var records []record
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		rec, err := decodeRecord(text)
		if err != nil {
			return nil, invalidRecord(path, line, err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}

func decodeRecord(text string) (record, error) {
	var rec record
	values, err := url.ParseQuery(text)
	if err != nil {
		return rec, err
	}
	if err := schemaDecoder.Decode(&rec, values); err != nil {
		return rec, err
	}
	if err := validate.Struct(rec); err != nil {
		return rec, err
	}
	return rec, nil
}

// invalidRecord converts a decoding or validation failure into a contract
// error naming the file and line.
func invalidRecord(path string, line int, err error) *contract.Error {
	ce := contract.Errorf(contract.CodeInvalidMetadata, "%s:%d: %v", path, line, err).
		WithDetail("path", path).
		WithDetail("line", line)

	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		messages := make([]string, 0, len(valErrs))
		for _, ve := range valErrs {
			msg := formatValidationError(ve)
			ce = ce.WithDetail(ve.Field(), msg)
			messages = append(messages, ve.Field()+": "+msg)
		}
		ce.Message = fmt.Sprintf("%s:%d: %s", path, line, strings.Join(messages, "; "))
	}
	return ce
}

// formatValidationError converts a validator.FieldError to a human-readable message.
func formatValidationError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required", "required_if", "required_unless":
		return "required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "excluded_unless":
		return "not allowed"
	case "excludesall":
		return fmt.Sprintf("must not contain any of %q", ve.Param())
	case "typeexpr":
		return fmt.Sprintf("invalid type expression %q", ve.Value())
	case "typeparam":
		return fmt.Sprintf("invalid type parameter %q", ve.Value())
	case "valueparam":
		return fmt.Sprintf("invalid value parameter %q", ve.Value())
	case "annotation":
		return fmt.Sprintf("invalid annotation %q", ve.Value())
	case "relname":
		return fmt.Sprintf("invalid class name %q", ve.Value())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
