// Package feed reads supplier price lists.
package feed

import (
	"bytes"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

const (
	StageFetch    = "fetch"
	StageParse    = "parse"
	StageValidate = "validate"
)

// Error tells which step of reading the feed failed.
type Error struct {
	Stage string
	Err   error
}

func (e *Error) Error() string { return e.Stage + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }

type Feed struct {
	Shop       string     `yaml:"shop"       validate:"required,max=50"`
	Categories []Category `yaml:"categories" validate:"dive"`
	Goods      []Good     `yaml:"goods"      validate:"dive"`
}

type Category struct {
	ID   uint   `yaml:"id"   validate:"required"`
	Name string `yaml:"name" validate:"required,max=40"`
}

type Good struct {
	ID         uint            `yaml:"id"         validate:"required"`
	Category   uint            `yaml:"category"   validate:"required"`
	Model      string          `yaml:"model"      validate:"max=80"`
	Name       string          `yaml:"name"       validate:"required,max=80"`
	Price      decimal.Decimal `yaml:"price"`
	PriceRRC   decimal.Decimal `yaml:"price_rrc"`
	Quantity   uint            `yaml:"quantity"`
	Parameters Parameters      `yaml:"parameters" validate:"dive,keys,required,max=40,endkeys,max=100"`
}

type Parameters map[string]ParamValue

// ParamValue keeps a scalar exactly as written in the document, so 6.5 stays "6.5".
type ParamValue string

func (v *ParamValue) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("строка %d: значение параметра должно быть скаляром", node.Line)
	}
	*v = ParamValue(node.Value)
	return nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func Parse(data []byte) (*Feed, error) {
	var f Feed
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&f); err != nil {
		return nil, &Error{Stage: StageParse, Err: err}
	}
	return &f, nil
}

// Validate checks field constraints and cross references inside one document.
func (f *Feed) Validate() error {
	if err := validate.Struct(f); err != nil {
		return &Error{Stage: StageValidate, Err: describe(err)}
	}

	cats := make(map[uint]struct{}, len(f.Categories))
	for _, c := range f.Categories {
		if _, dup := cats[c.ID]; dup {
			return &Error{Stage: StageValidate, Err: fmt.Errorf("категория %d указана дважды", c.ID)}
		}
		cats[c.ID] = struct{}{}
	}

	seen := make(map[uint]struct{}, len(f.Goods))
	for i, g := range f.Goods {
		if _, dup := seen[g.ID]; dup {
			return &Error{Stage: StageValidate, Err: fmt.Errorf("товар с id %d указан дважды", g.ID)}
		}
		seen[g.ID] = struct{}{}

		if _, ok := cats[g.Category]; !ok {
			return &Error{Stage: StageValidate, Err: fmt.Errorf("goods[%d]: категория %d не объявлена в разделе categories прайса", i, g.Category)}
		}
		if g.Price.IsNegative() || g.PriceRRC.IsNegative() {
			return &Error{Stage: StageValidate, Err: fmt.Errorf("goods[%d]: отрицательная цена", i)}
		}
	}
	return nil
}

// Stats are the counts reported for an import run.
func (f *Feed) Stats() (categories, goods, parameters int) {
	for _, g := range f.Goods {
		parameters += len(g.Parameters)
	}
	return len(f.Categories), len(f.Goods), parameters
}

func describe(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		field := strings.TrimPrefix(e.Namespace(), "Feed.")
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, message(e)))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "обязательное поле"
	case "max":
		return "не длиннее " + e.Param()
	default:
		return "неверное значение"
	}
}
