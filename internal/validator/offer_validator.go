package validator

import (
	"fmt"
	"strings"

	"portal/internal/domain/model"

	"github.com/shopspring/decimal"
)

// 見積明細へのサプライヤー回答の入力
type OfferLineInput struct {
	LineID         string
	ConfirmedUnits string
	ConfirmedPrice string
	ConfirmedTerm  string
}

// ValidateOfferDraft は下書き保存用。空欄は未回答として許すが、
// 入力がある値は正の数でなければならない。入力のあった明細だけ返す。
func ValidateOfferDraft(lines []model.OfferLine, inputs []OfferLineInput) ([]model.OfferLine, Violations) {
	return applyOfferInputs(lines, inputs, false)
}

// ValidateOfferSend は送信用。入力を保存値に重ねたうえで、
// 全明細に数量と価格がそろっていることを確認する。全明細を返す。
func ValidateOfferSend(lines []model.OfferLine, inputs []OfferLineInput) ([]model.OfferLine, Violations) {
	changed, vs := applyOfferInputs(lines, inputs, true)

	merged := make(map[string]model.OfferLine, len(changed))
	for _, l := range changed {
		merged[l.ID] = l
	}

	out := make([]model.OfferLine, 0, len(lines))
	for i, l := range lines {
		if m, ok := merged[l.ID]; ok {
			l = m
		}
		if !l.HasProposal() {
			if !l.ConfirmedUnits.Valid || !l.ConfirmedUnits.Decimal.IsPositive() {
				vs = append(vs, offerFieldViolation(i, l, "confirmed_units", "confirmed units for %s are required"))
			}
			if !l.ConfirmedPrice.Valid || !l.ConfirmedPrice.Decimal.IsPositive() {
				vs = append(vs, offerFieldViolation(i, l, "confirmed_price", "confirmed price for %s is required"))
			}
		}
		out = append(out, l)
	}
	return out, dedupe(vs)
}

func applyOfferInputs(lines []model.OfferLine, inputs []OfferLineInput, strict bool) ([]model.OfferLine, Violations) {
	byID := make(map[string]int, len(lines))
	for i, l := range lines {
		byID[l.ID] = i
	}

	var vs Violations
	out := make([]model.OfferLine, 0, len(inputs))
	for i, in := range inputs {
		idx, ok := byID[in.LineID]
		if !ok {
			vs = append(vs, Violation{
				Code:    CodeUnknownArticle,
				Row:     rowPtr(i),
				LineID:  in.LineID,
				Message: fmt.Sprintf("offer line %q does not belong to this offer", in.LineID),
			})
			continue
		}
		l := lines[idx]

		units, uv := parseOptionalPositive(in.ConfirmedUnits, UnitsPrecision)
		if !uv {
			vs = append(vs, offerFieldViolation(idx, l, "confirmed_units", "confirmed units for %s must be a positive number with at most 3 decimals"))
		}
		price, pv := parseOptionalPositive(in.ConfirmedPrice, PricePrecision)
		if !pv {
			vs = append(vs, offerFieldViolation(idx, l, "confirmed_price", "confirmed price for %s must be a positive number with at most 2 decimals"))
		}
		term := strings.TrimSpace(in.ConfirmedTerm)
		tv := !tooLong(term, MaxTermLength)
		if !tv {
			vs = append(vs, offerFieldViolation(idx, l, "confirmed_term", "confirmed term for %s must be at most 50 characters"))
		}
		if !uv || !pv || !tv {
			continue
		}

		l.ConfirmedUnits = units
		l.ConfirmedPrice = price
		l.ConfirmedTerm = nil
		if term != "" {
			l.ConfirmedTerm = &term
		}
		out = append(out, l)
	}
	return out, vs
}

func offerFieldViolation(row int, l model.OfferLine, field string, format string) Violation {
	return Violation{
		Code:        CodeValidation,
		Row:         rowPtr(row),
		LineID:      l.ID,
		ArticleCode: l.MaterialCode,
		Field:       field,
		Message:     fmt.Sprintf(format, l.MaterialCode),
	}
}

// 不正値と未入力が同じ項目に重なった場合は1件にする
func dedupe(vs Violations) Violations {
	seen := make(map[string]bool, len(vs))
	out := make(Violations, 0, len(vs))
	for _, v := range vs {
		key := string(v.Code) + "|" + v.LineID + "|" + v.Field
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}

// 注文の数量・納期・価格の入力
type TermsInput struct {
	Units string
	Term  string
	Price string
}

type Terms struct {
	Units int64
	Term  string
	Price decimal.Decimal
}

// ValidateTerms は数量（正の整数）、納期（必須）、価格（正の数）を検証する。
func ValidateTerms(in TermsInput) (Terms, Violations) {
	var vs Violations
	var out Terms

	units, ok := parsePositive(in.Units, CountPrecision)
	if !ok {
		vs = append(vs, Violation{Code: CodeValidation, Field: "units", Message: "units must be a positive integer"})
	} else {
		out.Units = units.IntPart()
	}

	out.Term = strings.TrimSpace(in.Term)
	if out.Term == "" {
		vs = append(vs, Violation{Code: CodeValidation, Field: "term", Message: "term is required"})
	} else {
		vs = append(vs, CheckLength("term", out.Term, MaxTermLength)...)
	}

	price, ok := parsePositive(in.Price, PricePrecision)
	if !ok {
		vs = append(vs, Violation{Code: CodeValidation, Field: "price_euros", Message: "price must be a positive number with at most 2 decimals"})
	} else {
		out.Price = price
	}

	return out, vs
}
