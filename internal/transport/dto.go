package transport

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/Skotchmaster/shop_orders/internal/util"
)

type BasketItemInput struct {
	ProductInfo uint `json:"product_info" validate:"required"`
	Quantity    uint `json:"quantity"     validate:"required,gt=0"`
}

// QuantityUpdate decodes only when both fields are JSON integers.
type QuantityUpdate struct {
	ID       int64 `json:"id"`
	Quantity int64 `json:"quantity"`
}

type ItemsRequest struct {
	Items json.RawMessage `json:"items"`
}

type CheckoutRequest struct {
	ID      DigitID `json:"id"      form:"id"`
	Contact DigitID `json:"contact" form:"contact"`
}

type ShopUpdateRequest struct {
	URL string `json:"url" form:"url" validate:"required,url,max=255"`
}

type ShopStateRequest struct {
	State TruthValue `json:"state" form:"state"`
}

type ContactInput struct {
	City      string `json:"city"      validate:"required,max=50"`
	Street    string `json:"street"    validate:"required,max=100"`
	House     string `json:"house"     validate:"max=15"`
	Structure string `json:"structure" validate:"max=15"`
	Building  string `json:"building"  validate:"max=15"`
	Apartment string `json:"apartment" validate:"max=15"`
	Phone     string `json:"phone"     validate:"required,max=20"`
}

type ContactPatch struct {
	City      *string `json:"city"      validate:"omitempty,min=1,max=50"`
	Street    *string `json:"street"    validate:"omitempty,min=1,max=100"`
	House     *string `json:"house"     validate:"omitempty,max=15"`
	Structure *string `json:"structure" validate:"omitempty,max=15"`
	Building  *string `json:"building"  validate:"omitempty,max=15"`
	Apartment *string `json:"apartment" validate:"omitempty,max=15"`
	Phone     *string `json:"phone"     validate:"omitempty,min=1,max=20"`
}

// Fields lists the columns to update.
func (p ContactPatch) Fields() map[string]any {
	out := map[string]any{}
	set := func(col string, v *string) {
		if v != nil {
			out[col] = *v
		}
	}
	set("city", p.City)
	set("street", p.Street)
	set("house", p.House)
	set("structure", p.Structure)
	set("building", p.Building)
	set("apartment", p.Apartment)
	set("phone", p.Phone)
	return out
}

var ErrNotDigits = errors.New("ожидается число")

// DigitID accepts 12 or "12". Zero means absent.
type DigitID uint

func (d *DigitID) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		*d = 0
		return nil
	}
	s := string(b)
	if len(b) > 1 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	}
	return d.UnmarshalText([]byte(s))
}

func (d *DigitID) UnmarshalText(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "" {
		*d = 0
		return nil
	}
	id, ok := util.ParseID(s)
	if !ok {
		return ErrNotDigits
	}
	*d = DigitID(id)
	return nil
}

// TruthValue keeps the raw text of a boolean-ish field; JSON true/1 become "true"/"1".
type TruthValue string

func (t *TruthValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*t = TruthValue(s)
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch x := v.(type) {
	case bool:
		*t = TruthValue(strconv.FormatBool(x))
	case float64:
		*t = TruthValue(strconv.FormatFloat(x, 'f', -1, 64))
	case nil:
		*t = ""
	default:
		return errors.New("неверное значение состояния")
	}
	return nil
}

func (t *TruthValue) UnmarshalText(b []byte) error {
	*t = TruthValue(b)
	return nil
}

func (d *DigitID) UnmarshalParam(s string) error { return d.UnmarshalText([]byte(s)) }

func (t *TruthValue) UnmarshalParam(s string) error { return t.UnmarshalText([]byte(s)) }
