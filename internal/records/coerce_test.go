package records

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theodu78/NLPrice-app/internal/entity"
)

func f(v float64) *float64 { return &v }

func TestCoerceLocaleNumbers(t *testing.T) {
	payload := "designation,unit,quantity,unit_price,total_price\n" +
		"Béton C25/30,m3,10,\"1 234,56 €\",\"12 345,60\"\n"

	res := Coerce(payload, nil)

	require.Len(t, res.Records, 1)
	rec := res.Records[0]
	assert.Equal(t, "Béton C25/30", rec.Designation)
	assert.Equal(t, "m3", rec.Unit)
	assert.Equal(t, 1234.56, rec.UnitPrice)
	require.NotNil(t, rec.Quantity)
	assert.Equal(t, 10.0, *rec.Quantity)
	require.NotNil(t, rec.TotalPrice)
	assert.Equal(t, 12345.6, *rec.TotalPrice)
}

func TestCoerceDropRules(t *testing.T) {
	payload := "designation,unit,quantity,unit_price,total_price\n" +
		"Prix illisible,u,1,abc,10\n" + // unparseable unit_price
		",u,1,5,5\n" + // missing designation
		"Ligne poubelle,u,1,0,0\n" + // both prices literally zero
		"Article offert,u,1,0,50\n" + // free item, kept
		"Champ en trop,u,1,5,5,extra\n" // field count mismatch

	res := Coerce(payload, nil)

	require.Len(t, res.Records, 1)
	assert.Equal(t, "Article offert", res.Records[0].Designation)
	assert.Equal(t, 0.0, res.Records[0].UnitPrice)

	require.Len(t, res.Dropped, 4)
	reasons := make([]string, 0, len(res.Dropped))
	for _, d := range res.Dropped {
		reasons = append(reasons, d.Reason)
	}
	assert.Contains(t, reasons, "missing or unparseable unit_price")
	assert.Contains(t, reasons, "missing designation")
	assert.Contains(t, reasons, "unit_price and total_price both zero")
	assert.Contains(t, reasons, "field count mismatch")
}

func TestCoerceQuotedFields(t *testing.T) {
	payload := "designation,unit,quantity,unit_price,total_price\n" +
		"\"Tube \"\"inox\"\", cintré\",ml,2,15.50,31\n"

	res := Coerce(payload, nil)

	require.Len(t, res.Records, 1)
	assert.Equal(t, `Tube "inox", cintré`, res.Records[0].Designation)
}

func TestCoerceMissingUnitGetsPlaceholder(t *testing.T) {
	payload := "designation,unit,quantity,unit_price,total_price\n" +
		"Sans unité,,1,9.90,9.90\n"

	res := Coerce(payload, nil)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "?", res.Records[0].Unit)
}

func TestCoerceMissingNumericsStayMissing(t *testing.T) {
	payload := "designation,unit,quantity,unit_price,total_price\n" +
		"Quantité absente,u,,12.00,\n"

	res := Coerce(payload, nil)
	require.Len(t, res.Records, 1)
	assert.Nil(t, res.Records[0].Quantity)
	assert.Nil(t, res.Records[0].TotalPrice)
}

func TestCoerceWithoutHeaderMapsPositionally(t *testing.T) {
	payload := "Câble 3G2.5,ml,100,0.95,95\n"

	res := Coerce(payload, nil)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "Câble 3G2.5", res.Records[0].Designation)
}

func TestCoerceIdempotent(t *testing.T) {
	payload := "designation,unit,quantity,unit_price,total_price\n" +
		"\"Tube, cintré\",ml,2,15.5,31\n" +
		"Article offert,?,,0,\n"

	first := Coerce(payload, nil)
	require.Len(t, first.Records, 2)

	second := Coerce(ToCSV(first.Records), nil)
	assert.Equal(t, first.Records, second.Records)
	assert.Empty(t, second.Dropped)
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want *float64
	}{
		{"1 234,56 €", f(1234.56)},
		{"1.234,56", f(1234.56)},
		{"1,234.56", f(1234.56)},
		{"1.234.567", f(1234567)},
		{"1,234,567", f(1234567)},
		{"12", f(12)},
		{"-3,5", f(-3.5)},
		{"abc", nil},
		{"", nil},
		{"  ", nil},
	}
	for _, tc := range cases {
		got := ParseNumber(tc.in)
		if tc.want == nil {
			assert.Nil(t, got, "input %q", tc.in)
		} else {
			require.NotNil(t, got, "input %q", tc.in)
			assert.Equal(t, *tc.want, *got, "input %q", tc.in)
		}
	}
}

func TestValidateRecord(t *testing.T) {
	ok := entity.Record{Designation: "Béton", Unit: "m3", UnitPrice: 120.5, Quantity: f(2)}
	assert.NoError(t, ValidateRecord(ok))

	bad := entity.Record{Designation: "", Unit: "m3", UnitPrice: 120.5}
	assert.Error(t, ValidateRecord(bad))
}
