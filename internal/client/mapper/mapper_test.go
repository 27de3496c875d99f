package mapper

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schooladmin/internal/pkg/feecalc"
)

func TestNormalizeRelationShapes(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"flat", `{"id":7,"type":{"id":2,"name":"Tuition"}}`},
		{"wrapped", `{"id":7,"type":{"data":{"id":2,"name":"Tuition"}}}`},
		{"wrapped with attributes", `{"id":7,"type":{"data":{"id":2,"attributes":{"name":"Tuition"}}}}`},
		{"top level attributes", `{"data":{"id":7,"attributes":{"type":{"data":{"id":2,"attributes":{"name":"Tuition"}}}}}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obj, err := DecodeObject(json.RawMessage(tt.raw))
			require.NoError(t, err)

			assert.Equal(t, int64(7), obj.Int64("id"))
			rel, ok := obj.Relation("type")
			require.True(t, ok)
			assert.Equal(t, int64(2), rel.Int64("id"))
			assert.Equal(t, "Tuition", rel.String("name"))
		})
	}
}

func TestRelationFromBareID(t *testing.T) {
	obj, err := DecodeObject(json.RawMessage(`{"class":12}`))
	require.NoError(t, err)

	rel, ok := obj.Relation("class")
	require.True(t, ok)
	assert.Equal(t, int64(12), rel.Int64("id"))

	_, ok = obj.Relation("division")
	assert.False(t, ok)
}

func TestDecimalAcceptsNumbersAndStrings(t *testing.T) {
	obj, err := DecodeObject(json.RawMessage(`{"a":1500.25,"b":"99.5","c":"n/a","d":null}`))
	require.NoError(t, err)

	assert.True(t, obj.Decimal("a").Equal(decimal.RequireFromString("1500.25")))
	assert.True(t, obj.Decimal("b").Equal(decimal.RequireFromString("99.5")))
	assert.True(t, obj.Decimal("c").IsZero())
	assert.True(t, obj.Decimal("d").IsZero())
	assert.True(t, obj.Decimal("missing").IsZero())
}

func TestDecodeListNull(t *testing.T) {
	items, err := DecodeList(json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = DecodeList(json.RawMessage(`{"id":1}`))
	assert.Error(t, err)
}

func TestFeeTypeRoundTrip(t *testing.T) {
	obj, err := DecodeObject(json.RawMessage(`{"id":3,"code":"TRANSPORT","name":"Transport Fee","active":false}`))
	require.NoError(t, err)

	ft := FeeTypeToDomain(obj)
	payload := FeeTypeToAPI(ft)

	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	back, err := DecodeObject(raw)
	require.NoError(t, err)
	again := FeeTypeToDomain(back)

	assert.Equal(t, ft.Code, again.Code)
	assert.Equal(t, ft.Name, again.Name)
	assert.Equal(t, ft.Active, again.Active)
	assert.Equal(t, "TRANSPORT", again.Code)
	assert.False(t, again.Active)
}

func TestFeeDefinitionToDomain(t *testing.T) {
	raw := `{"id":5,"name":"Tuition","base_amount":"1000","frequency":"Term","currency":"INR",
		"type":{"data":{"id":1,"attributes":{"code":"TUITION","name":"Tuition Fee","active":true}}},
		"installments":[{"label":"T1","amount":"600","due_date":"2025-06-01"},{"label":"T2","amount":600}]}`
	obj, err := DecodeObject(json.RawMessage(raw))
	require.NoError(t, err)

	fd := FeeDefinitionToDomain(obj)
	assert.Equal(t, feecalc.FrequencyTerm, fd.Frequency)
	assert.Equal(t, "Tuition Fee", fd.TypeName())
	require.Len(t, fd.Installments, 2)
	require.NotNil(t, fd.Installments[0].DueDate)
	assert.Equal(t, 2025, fd.Installments[0].DueDate.Year())

	calc := fd.ToCalc()
	assert.True(t, feecalc.InstallmentExcess(*calc, 2).Equal(decimal.NewFromInt(400)))

	payload := FeeDefinitionToAPI(fd)
	assert.Equal(t, int64(1), payload["type_id"])
	assert.Equal(t, "term", payload["frequency"])
}

func TestUnknownFrequencyBecomesOneTime(t *testing.T) {
	obj, err := DecodeObject(json.RawMessage(`{"id":1,"frequency":"fortnightly"}`))
	require.NoError(t, err)
	assert.Equal(t, feecalc.FrequencyOneTime, FeeDefinitionToDomain(obj).Frequency)
}

func TestFeeAssignmentTargets(t *testing.T) {
	obj, err := DecodeObject(json.RawMessage(`{"id":9,"priority":2,"class":{"id":4,"name":"Grade 4"},"fee":{"id":5,"name":"Lab","base_amount":50,"frequency":"monthly"}}`))
	require.NoError(t, err)

	fa := FeeAssignmentToDomain(obj)
	require.NotNil(t, fa.ClassID)
	assert.Equal(t, int64(4), *fa.ClassID)
	assert.Nil(t, fa.BusStopID)
	require.NotNil(t, fa.Fee)
	assert.Equal(t, "Lab", fa.Fee.Name)

	payload := FeeAssignmentToAPI(fa)
	assert.Equal(t, int64(5), payload["fee_definition_id"])
	assert.Equal(t, int64(4), payload["class_id"])
	assert.NotContains(t, payload, "bus_stop_id")
}

func TestPaymentItemFlattensStudent(t *testing.T) {
	raw := `{"id":1,"label":"Term 1","amount":"1000","paid_amount":"250","status":"partial","due_date":"2025-04-01T00:00:00Z",
		"payment_schedule":{"id":8,"enrollment":{"id":3,"student":{"id":2,"first_name":"Asha","last_name":"Rao"}}},
		"fee_definition":{"id":5,"name":"Tuition"}}`
	obj, err := DecodeObject(json.RawMessage(raw))
	require.NoError(t, err)

	item := PaymentItemToDomain(obj)
	assert.Equal(t, int64(8), item.PaymentScheduleID)
	assert.Equal(t, "Asha Rao", item.StudentName)
	assert.Equal(t, "Tuition", item.FeeName)
	assert.True(t, item.Outstanding().Equal(decimal.NewFromInt(750)))
}

func TestWalletAndTransaction(t *testing.T) {
	obj, err := DecodeObject(json.RawMessage(`{"id":1,"walletId":"W-1","currentBalance":"40","lowBalanceThreshold":"50","status":"active","student":{"id":6,"first_name":"Ravi"}}`))
	require.NoError(t, err)
	w := WalletToDomain(obj)
	assert.Equal(t, int64(6), w.StudentID)
	assert.Equal(t, "Ravi", w.StudentName)
	assert.True(t, w.IsLowBalance())

	obj, err = DecodeObject(json.RawMessage(`{"id":4,"transactionType":"purchase","amount":"12.5","balanceBefore":"52.5","balanceAfter":"40","createdAt":"2025-05-02T10:00:00Z"}`))
	require.NoError(t, err)
	tx := WalletTransactionToDomain(obj)
	assert.Equal(t, "purchase", tx.Type)
	assert.Equal(t, 5, int(tx.CreatedAt.Month()))
}

func TestPaginationToDomain(t *testing.T) {
	meta, err := DecodeObject(json.RawMessage(`{"pagination":{"currentPage":2,"totalPages":5,"pageSize":20,"totalItems":93}}`))
	require.NoError(t, err)

	p := PaginationToDomain(meta)
	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, int64(93), p.TotalItems)
	assert.Zero(t, PaginationToDomain(Object{}).TotalPages)
}
