package validator

import (
	"strings"
	"testing"

	"portal/internal/domain/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func abcLines() []model.OrderLine {
	return []model.OrderLine{
		{ID: "line-abc", ApplicationID: "app-x", ArticleCode: "ABC-1", RequestedUnits: dec("50")},
	}
}

func TestValidateConfirmations_WithinRequested(t *testing.T) {
	rows, vs := ValidateConfirmations("app-x", abcLines(), []ConfirmationInput{
		{OrderLineID: "line-abc", Units: "30", Term: "2024-01-01", Price: "5.0"},
	})

	require.True(t, vs.Empty(), vs.Error())
	require.Len(t, rows, 1)
	assert.Equal(t, "ABC-1", rows[0].ArticleCode)
	assert.Equal(t, "app-x", rows[0].ApplicationID)
	assert.True(t, rows[0].ConfirmedUnits.Equal(dec("30")))

	sum := Summarize(abcLines(), rows)
	require.Len(t, sum, 1)
	assert.True(t, sum[0].Percent.Equal(dec("60")), sum[0].Percent.String())
	assert.False(t, sum[0].AtLimit)
}

func TestValidateConfirmations_OverAllocatedInSameBatch(t *testing.T) {
	_, vs := ValidateConfirmations("app-x", abcLines(), []ConfirmationInput{
		{OrderLineID: "line-abc", Units: "30", Term: "2024-01-01", Price: "5.0"},
		{OrderLineID: "line-abc", Units: "25", Term: "2024-01-01", Price: "5.0"},
	})

	require.Len(t, vs, 1)
	v, ok := vs.OverAllocated("ABC-1")
	require.True(t, ok)
	assert.True(t, v.Requested.Equal(dec("50")))
	assert.True(t, v.Attempted.Equal(dec("55")))
	assert.Nil(t, v.Row)
}

func TestValidateConfirmations_ExactlyRequestedIsAllowed(t *testing.T) {
	rows, vs := ValidateConfirmations("app-x", abcLines(), []ConfirmationInput{
		{OrderLineID: "line-abc", Units: "20", Term: "t", Price: "1"},
		{OrderLineID: "line-abc", Units: "30", Term: "t", Price: "1"},
	})
	require.True(t, vs.Empty())

	sum := Summarize(abcLines(), rows)
	assert.True(t, sum[0].AtLimit)
	assert.True(t, sum[0].Percent.Equal(dec("100")))
}

func TestValidateConfirmations_UnknownLine(t *testing.T) {
	rows, vs := ValidateConfirmations("app-x", abcLines(), []ConfirmationInput{
		{OrderLineID: "line-from-other-order", Units: "1", Term: "t", Price: "1"},
	})

	assert.Empty(t, rows)
	require.Len(t, vs, 1)
	assert.Equal(t, CodeUnknownArticle, vs[0].Code)
	assert.Equal(t, 0, *vs[0].Row)
}

func TestValidateConfirmations_CollectsAllFieldErrors(t *testing.T) {
	_, vs := ValidateConfirmations("app-x", abcLines(), []ConfirmationInput{
		{OrderLineID: "line-abc", Units: "0", Term: " ", Price: "abc"},
		{OrderLineID: "line-abc", Units: "-3", Term: "t", Price: "1"},
	})

	require.Len(t, vs, 4)
	fields := []string{vs[0].Field, vs[1].Field, vs[2].Field, vs[3].Field}
	assert.Equal(t, []string{"confirmed_units", "confirmed_term", "confirmed_price", "confirmed_units"}, fields)
	for _, v := range vs {
		assert.Equal(t, CodeValidation, v.Code)
		assert.Equal(t, "ABC-1", v.ArticleCode)
	}
	assert.Equal(t, 1, *vs[3].Row)
}

func TestValidateConfirmations_DuplicateArticleCodesShareRequested(t *testing.T) {
	lines := []model.OrderLine{
		{ID: "l1", ArticleCode: "ABC-1", RequestedUnits: dec("50")},
		{ID: "l2", ArticleCode: "ABC-1", RequestedUnits: dec("10")},
		{ID: "l3", ArticleCode: "XYZ-9", RequestedUnits: dec("2.5")},
	}

	_, vs := ValidateConfirmations("app", lines, []ConfirmationInput{
		{OrderLineID: "l1", Units: "55", Term: "t", Price: "1"},
		{OrderLineID: "l3", Units: "2.5", Term: "t", Price: "1"},
	})
	assert.True(t, vs.Empty())

	_, vs = ValidateConfirmations("app", lines, []ConfirmationInput{
		{OrderLineID: "l2", Units: "61", Term: "t", Price: "1"},
		{OrderLineID: "l3", Units: "2.6", Term: "t", Price: "1"},
	})
	require.Len(t, vs, 2)
	assert.Equal(t, "ABC-1", vs[0].ArticleCode)
	assert.Equal(t, "XYZ-9", vs[1].ArticleCode)
}

func TestSummarize_NoConfirmations(t *testing.T) {
	sum := Summarize(abcLines(), nil)
	require.Len(t, sum, 1)
	assert.True(t, sum[0].Confirmed.IsZero())
	assert.True(t, sum[0].Percent.IsZero())
	assert.False(t, sum[0].AtLimit)
}

func TestViolations_Error(t *testing.T) {
	vs := Violations{{Message: "a"}, {Message: "b"}}
	assert.Equal(t, "a; b", vs.Error())
	assert.True(t, Violations{}.Empty())
	assert.True(t, vs.Has(""))
	assert.False(t, vs.Has(CodeOverAllocated))
}

// 列の小数桁を超える値は丸めずに弾く
func TestValidateConfirmations_RejectsExcessPrecision(t *testing.T) {
	rows, vs := ValidateConfirmations("app-x", abcLines(), []ConfirmationInput{
		{OrderLineID: "line-abc", Units: "25.0005", Term: "t", Price: "0.001"},
		{OrderLineID: "line-abc", Units: "24.9995", Term: "t", Price: "0.004"},
	})

	assert.Empty(t, rows)
	require.Len(t, vs, 4)
	for i, want := range []string{"confirmed_units", "confirmed_price", "confirmed_units", "confirmed_price"} {
		assert.Equal(t, CodeValidation, vs[i].Code)
		assert.Equal(t, want, vs[i].Field)
	}
	_, over := vs.OverAllocated("ABC-1")
	assert.False(t, over)
}

func TestValidateConfirmations_ColumnLimits(t *testing.T) {
	rows, vs := ValidateConfirmations("app-x", abcLines(), []ConfirmationInput{
		{OrderLineID: "line-abc", Units: "25.125", Term: "t", Price: "9999999999.99"},
	})
	require.True(t, vs.Empty(), vs.Error())
	require.Len(t, rows, 1)

	_, vs = ValidateConfirmations("app-x", abcLines(), []ConfirmationInput{
		{OrderLineID: "line-abc", Units: "1", Term: strings.Repeat("t", MaxTermLength+1), Price: "10000000000"},
	})
	require.Len(t, vs, 2)
	assert.Equal(t, "confirmed_term", vs[0].Field)
	assert.Equal(t, "confirmed_price", vs[1].Field)
}
