package validator

import (
	"fmt"
	"strings"

	"portal/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 回答行の入力。ID が空なら新規行。
// 数値は画面入力のまま文字列で受け取る。
type ConfirmationInput struct {
	ID          string `json:"id,omitempty"`
	OrderLineID string `json:"order_line_id"`
	Units       string `json:"confirmed_units"`
	Term        string `json:"confirmed_term"`
	Price       string `json:"confirmed_price"`
}

// ValidateConfirmations は1注文分の回答行一式を検証する。
// 副作用なし。エラーは最初で止めずに全部集める。
// 戻り値の行は Violations が空のときだけ使ってよい。
func ValidateConfirmations(applicationID string, lines []model.OrderLine, candidates []ConfirmationInput) ([]model.OrderLineConfirmation, Violations) {
	byID := make(map[string]model.OrderLine, len(lines))
	for _, l := range lines {
		byID[l.ID] = l
	}

	var vs Violations
	rows := make([]model.OrderLineConfirmation, 0, len(candidates))

	for i, c := range candidates {
		//明細の存在チェック（この注文の明細だけ）
		line, ok := byID[c.OrderLineID]
		if !ok {
			vs = append(vs, Violation{
				Code:    CodeUnknownArticle,
				Row:     rowPtr(i),
				LineID:  c.OrderLineID,
				Message: fmt.Sprintf("order line %q does not belong to this order", c.OrderLineID),
			})
			continue
		}

		//行ごとの項目チェック
		rowOK := true
		units, ok := parsePositive(c.Units, UnitsPrecision)
		if !ok {
			rowOK = false
			vs = append(vs, fieldViolation(i, line, "confirmed_units", "confirmed units for %s must be a positive number with at most 3 decimals"))
		}
		term := strings.TrimSpace(c.Term)
		switch {
		case term == "":
			rowOK = false
			vs = append(vs, fieldViolation(i, line, "confirmed_term", "confirmed term for %s is required"))
		case tooLong(term, MaxTermLength):
			rowOK = false
			vs = append(vs, fieldViolation(i, line, "confirmed_term", "confirmed term for %s must be at most 50 characters"))
		}
		price, ok := parsePositive(c.Price, PricePrecision)
		if !ok {
			rowOK = false
			vs = append(vs, fieldViolation(i, line, "confirmed_price", "confirmed price for %s must be a positive number with at most 2 decimals"))
		}
		if !rowOK {
			continue
		}

		rows = append(rows, model.OrderLineConfirmation{
			ID:             c.ID,
			OrderLineID:    line.ID,
			ApplicationID:  applicationID,
			ArticleCode:    line.ArticleCode,
			ConfirmedUnits: units,
			ConfirmedTerm:  term,
			ConfirmedPrice: price,
		})
	}

	//品目ごとの合計 <= 依頼数量
	requested, order := requestedByArticle(lines)
	confirmed := confirmedByArticle(rows)
	for _, code := range order {
		sum, ok := confirmed[code]
		if !ok {
			continue
		}
		req := requested[code]
		if sum.GreaterThan(req) {
			r, a := req, sum
			vs = append(vs, Violation{
				Code:        CodeOverAllocated,
				ArticleCode: code,
				Field:       "confirmed_units",
				Message:     fmt.Sprintf("confirmed units for %s (%s) exceed requested units (%s)", code, sum.String(), req.String()),
				Requested:   &r,
				Attempted:   &a,
			})
		}
	}

	return rows, vs
}

func fieldViolation(row int, line model.OrderLine, field string, format string) Violation {
	return Violation{
		Code:        CodeValidation,
		Row:         rowPtr(row),
		LineID:      line.ID,
		ArticleCode: line.ArticleCode,
		Field:       field,
		Message:     fmt.Sprintf(format, line.ArticleCode),
	}
}

// 同じ品目コードの明細が複数あれば依頼数量を合算する。
// order は明細に最初に出てきた順。
func requestedByArticle(lines []model.OrderLine) (map[string]decimal.Decimal, []string) {
	out := make(map[string]decimal.Decimal, len(lines))
	order := make([]string, 0, len(lines))
	for _, l := range lines {
		cur, ok := out[l.ArticleCode]
		if !ok {
			order = append(order, l.ArticleCode)
		}
		out[l.ArticleCode] = cur.Add(l.RequestedUnits)
	}
	return out, order
}

func confirmedByArticle(rows []model.OrderLineConfirmation) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(rows))
	for _, r := range rows {
		out[r.ArticleCode] = out[r.ArticleCode].Add(r.ConfirmedUnits)
	}
	return out
}

// 品目ごとの充足状況
type ArticleAllocation struct {
	ArticleCode string          `json:"article_code"`
	Requested   decimal.Decimal `json:"requested_units"`
	Confirmed   decimal.Decimal `json:"confirmed_units"`
	Percent     decimal.Decimal `json:"percent"`
	// 100%に達していて、これ以上回答行を追加できない
	AtLimit bool `json:"at_limit"`
}

var hundred = decimal.NewFromInt(100)

// Summarize は保存済みの回答行から品目ごとの充足率を出す。
func Summarize(lines []model.OrderLine, confirmations []model.OrderLineConfirmation) []ArticleAllocation {
	requested, order := requestedByArticle(lines)
	confirmed := confirmedByArticle(confirmations)

	out := make([]ArticleAllocation, 0, len(order))
	for _, code := range order {
		req := requested[code]
		sum := confirmed[code]
		pct := decimal.Zero
		if req.IsPositive() {
			pct = sum.Mul(hundred).Div(req).Round(2)
		}
		out = append(out, ArticleAllocation{
			ArticleCode: code,
			Requested:   req,
			Confirmed:   sum,
			Percent:     pct,
			AtLimit:     sum.GreaterThanOrEqual(req),
		})
	}
	return out
}
