package validator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type Code string

const (
	// 項目の欠落・不正な数値
	CodeValidation Code = "VALIDATION"
	// 存在しない明細を参照している
	CodeUnknownArticle Code = "UNKNOWN_ARTICLE"
	// 品目ごとの合計が依頼数量を超えた
	CodeOverAllocated Code = "OVER_ALLOCATED"
)

// 1件の検証エラー。Row は入力の並び順（集計エラーでは nil）。
type Violation struct {
	Code        Code             `json:"code"`
	Row         *int             `json:"row,omitempty"`
	LineID      string           `json:"line_id,omitempty"`
	ArticleCode string           `json:"article_code,omitempty"`
	Field       string           `json:"field,omitempty"`
	Message     string           `json:"message"`
	Requested   *decimal.Decimal `json:"requested,omitempty"`
	Attempted   *decimal.Decimal `json:"attempted,omitempty"`
}

type Violations []Violation

func (v Violations) Error() string {
	msgs := make([]string, 0, len(v))
	for _, x := range v {
		msgs = append(msgs, x.Message)
	}
	return strings.Join(msgs, "; ")
}

func (v Violations) Empty() bool { return len(v) == 0 }

func (v Violations) Has(code Code) bool {
	for _, x := range v {
		if x.Code == code {
			return true
		}
	}
	return false
}

// 品目の超過エラーを探す
func (v Violations) OverAllocated(articleCode string) (Violation, bool) {
	for _, x := range v {
		if x.Code == CodeOverAllocated && x.ArticleCode == articleCode {
			return x, true
		}
	}
	return Violation{}, false
}

func rowPtr(i int) *int { return &i }

// 保存先の列に収まる数の範囲。Scale は小数桁、Limit はこれ未満。
type Precision struct {
	Scale int32
	Limit decimal.Decimal
}

var (
	// decimal(14,3)
	UnitsPrecision = Precision{Scale: 3, Limit: decimal.New(1, 11)}
	// decimal(12,2)
	PricePrecision = Precision{Scale: 2, Limit: decimal.New(1, 10)}
	// bigint の個数
	CountPrecision = Precision{Scale: 0, Limit: decimal.New(1, 18)}
)

// varchar 列の長さ
const (
	MaxTermLength   = 50
	MaxCodeLength   = 100
	MaxNumberLength = 50
	MaxIDLength     = 36
)

// 空でなく、正の数で、列の精度に収まるか。
// 丸めが起きる値は受け付けない（保存値と入力値がずれるため）。
func parsePositive(raw string, p Precision) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Decimal{}, false
	}
	if !d.Equal(d.Truncate(p.Scale)) || d.GreaterThanOrEqual(p.Limit) {
		return decimal.Decimal{}, false
	}
	return d, true
}

// 空欄なら NULL。入力があれば parsePositive と同じ条件。
func parseOptionalPositive(raw string, p Precision) (decimal.NullDecimal, bool) {
	if strings.TrimSpace(raw) == "" {
		return decimal.NullDecimal{}, true
	}
	d, ok := parsePositive(raw, p)
	if !ok {
		return decimal.NullDecimal{}, false
	}
	return decimal.NewNullDecimal(d), true
}

func tooLong(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}

// CheckLength は varchar 列に入らない値を1件の違反にする。
func CheckLength(field, value string, max int) Violations {
	if !tooLong(value, max) {
		return nil
	}
	return Violations{{
		Code:    CodeValidation,
		Field:   field,
		Message: fmt.Sprintf("%s must be at most %d characters", field, max),
	}}
}
