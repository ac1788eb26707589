package transport

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemsPayload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "raw array", in: `[{"id":1}]`, want: `[{"id":1}]`},
		{name: "quoted array", in: `"[{\"id\":1}]"`, want: `[{"id":1}]`},
		{name: "quoted id list", in: `"1,2"`, want: `1,2`},
		{name: "empty", in: ``, want: ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(ItemsPayload(json.RawMessage(tt.in))))
		})
	}
}

func TestDecodeQuantityUpdates_SkipsNonIntegers(t *testing.T) {
	in := `[{"id":1,"quantity":5},{"id":"2","quantity":3},{"id":3,"quantity":1.5},{"id":4,"quantity":0},{"id":5,"quantity":2}]`
	got, err := DecodeQuantityUpdates(json.RawMessage(in))
	require.NoError(t, err)
	assert.Equal(t, []QuantityUpdate{{ID: 1, Quantity: 5}, {ID: 5, Quantity: 2}}, got)

	_, err = DecodeQuantityUpdates(json.RawMessage(`{"id":1}`))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDigitID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    DigitID
		wantErr bool
	}{
		{in: `12`, want: 12},
		{in: `"12"`, want: 12},
		{in: `null`, want: 0},
		{in: `""`, want: 0},
		{in: `"1a"`, wantErr: true},
		{in: `-3`, wantErr: true},
		{in: `1.5`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var d DigitID
			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d)
		})
	}
}

func TestTruthValue(t *testing.T) {
	var req ShopStateRequest
	require.NoError(t, json.Unmarshal([]byte(`{"state":true}`), &req))
	assert.Equal(t, TruthValue("true"), req.State)

	require.NoError(t, json.Unmarshal([]byte(`{"state":"off"}`), &req))
	assert.Equal(t, TruthValue("off"), req.State)

	require.NoError(t, json.Unmarshal([]byte(`{"state":0}`), &req))
	assert.Equal(t, TruthValue("0"), req.State)
}

func TestValidate(t *testing.T) {
	require.NoError(t, Validate(BasketItemInput{ProductInfo: 1, Quantity: 2}))

	err := Validate(BasketItemInput{ProductInfo: 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quantity")

	err = Validate(ShopUpdateRequest{URL: "not a url"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Введите правильный URL.")

	err = Validate(ContactInput{City: "Москва"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "street")
	assert.Contains(t, err.Error(), "phone")
}

func TestContactPatchFields(t *testing.T) {
	city := "Казань"
	assert.Equal(t, map[string]any{"city": "Казань"}, ContactPatch{City: &city}.Fields())
	assert.Empty(t, ContactPatch{}.Fields())
}

func TestResponseEnvelope(t *testing.T) {
	b, err := json.Marshal(Fail("Товар уже в корзине"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Status":false,"Errors":"Товар уже в корзине"}`, string(b))

	b, err = json.Marshal(Count("Удалено объектов", 2))
	require.NoError(t, err)
	assert.JSONEq(t, `{"Status":true,"Удалено объектов":2}`, string(b))
}
