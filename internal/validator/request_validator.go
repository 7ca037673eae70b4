package validator

import (
	"fmt"
	"strings"
	"time"

	"portal/internal/domain/model"
)

// 見積依頼の明細入力（調達担当）
type OfferRequestLine struct {
	MaterialCode        string
	MaterialDescription string
	RequestedUnits      string
	ReferencePrice      string
	Deadline            *time.Time
}

// ValidateOfferRequest は見積依頼の作成内容を検証する。ID は呼び出し側で振る。
func ValidateOfferRequest(minimumUnits int64, lines []OfferRequestLine) ([]model.OfferLine, Violations) {
	var vs Violations
	if minimumUnits <= 0 {
		vs = append(vs, Violation{Code: CodeValidation, Field: "minimum_units", Message: "minimum units must be a positive integer"})
	}
	if len(lines) == 0 {
		vs = append(vs, Violation{Code: CodeValidation, Field: "lines", Message: "at least one line is required"})
	}

	out := make([]model.OfferLine, 0, len(lines))
	for i, in := range lines {
		code := strings.TrimSpace(in.MaterialCode)
		if code == "" {
			vs = append(vs, Violation{Code: CodeValidation, Row: rowPtr(i), Field: "material_code", Message: "material code is required"})
			continue
		}
		if tooLong(code, MaxCodeLength) {
			vs = append(vs, Violation{Code: CodeValidation, Row: rowPtr(i), Field: "material_code", Message: "material code must be at most 100 characters"})
			continue
		}
		units, ok := parsePositive(in.RequestedUnits, UnitsPrecision)
		if !ok {
			vs = append(vs, Violation{
				Code: CodeValidation, Row: rowPtr(i), ArticleCode: code, Field: "requested_units",
				Message: fmt.Sprintf("requested units for %s must be a positive number with at most 3 decimals", code),
			})
			continue
		}
		ref, ok := parseOptionalPositive(in.ReferencePrice, PricePrecision)
		if !ok {
			vs = append(vs, Violation{
				Code: CodeValidation, Row: rowPtr(i), ArticleCode: code, Field: "reference_price",
				Message: fmt.Sprintf("reference price for %s must be a positive number with at most 2 decimals", code),
			})
			continue
		}
		out = append(out, model.OfferLine{
			MaterialCode:        code,
			MaterialDescription: strings.TrimSpace(in.MaterialDescription),
			RequestedUnits:      units,
			ReferencePrice:      ref,
			Deadline:            in.Deadline,
		})
	}
	return out, vs
}

// 注文明細の入力（調達担当が品目ごとに起票）
type OrderRequestLine struct {
	ArticleCode    string
	Description    string
	RequestedUnits string
	RequestedTerm  string
	RequestedPrice string
}

// ValidateOrderRequest は注文明細を検証する。納期と価格は任意。
func ValidateOrderRequest(lines []OrderRequestLine) ([]model.OrderLine, Violations) {
	var vs Violations
	if len(lines) == 0 {
		vs = append(vs, Violation{Code: CodeValidation, Field: "lines", Message: "at least one line is required"})
	}

	out := make([]model.OrderLine, 0, len(lines))
	for i, in := range lines {
		code := strings.TrimSpace(in.ArticleCode)
		if code == "" {
			vs = append(vs, Violation{Code: CodeValidation, Row: rowPtr(i), Field: "article_code", Message: "article code is required"})
			continue
		}
		if tooLong(code, MaxCodeLength) {
			vs = append(vs, Violation{Code: CodeValidation, Row: rowPtr(i), Field: "article_code", Message: "article code must be at most 100 characters"})
			continue
		}
		units, ok := parsePositive(in.RequestedUnits, UnitsPrecision)
		if !ok {
			vs = append(vs, Violation{
				Code: CodeValidation, Row: rowPtr(i), ArticleCode: code, Field: "requested_units",
				Message: fmt.Sprintf("requested units for %s must be a positive number with at most 3 decimals", code),
			})
			continue
		}
		price, ok := parseOptionalPositive(in.RequestedPrice, PricePrecision)
		if !ok {
			vs = append(vs, Violation{
				Code: CodeValidation, Row: rowPtr(i), ArticleCode: code, Field: "requested_price",
				Message: fmt.Sprintf("requested price for %s must be a positive number with at most 2 decimals", code),
			})
			continue
		}
		term := strings.TrimSpace(in.RequestedTerm)
		if tooLong(term, MaxTermLength) {
			vs = append(vs, Violation{
				Code: CodeValidation, Row: rowPtr(i), ArticleCode: code, Field: "requested_term",
				Message: fmt.Sprintf("requested term for %s must be at most 50 characters", code),
			})
			continue
		}
		line := model.OrderLine{
			ArticleCode:    code,
			Description:    strings.TrimSpace(in.Description),
			RequestedUnits: units,
			RequestedPrice: price,
		}
		if term != "" {
			line.RequestedTerm = &term
		}
		out = append(out, line)
	}
	return out, vs
}
