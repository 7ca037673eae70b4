package ledger

import (
	"errors"
	"fmt"
	"time"

	"portal/internal/domain/model"
	"portal/internal/validator"
)

// 納期の既定値の書式
const TermLayout = "2006-01-02"

var ErrUnknownConfirmation = errors.New("unknown confirmation id")

// BuildConfirmAll は全明細を依頼どおりに1行ずつ回答する候補を作る。
// 既存の回答は置き換える前提。納期が無い明細は today を入れる。
// 価格が無い明細は空のまま返し、検証で弾かれる。
func BuildConfirmAll(lines []model.OrderLine, today time.Time) []validator.ConfirmationInput {
	out := make([]validator.ConfirmationInput, 0, len(lines))
	for _, l := range lines {
		term := today.Format(TermLayout)
		if l.RequestedTerm != nil && *l.RequestedTerm != "" {
			term = *l.RequestedTerm
		}
		price := ""
		if l.RequestedPrice.Valid {
			price = l.RequestedPrice.Decimal.String()
		}
		out = append(out, validator.ConfirmationInput{
			OrderLineID: l.ID,
			Units:       l.RequestedUnits.String(),
			Term:        term,
			Price:       price,
		})
	}
	return out
}

// 保存済みと新しい候補の差分。3つの集合は重ならない。
type Diff struct {
	Delete []string
	Update []model.OrderLineConfirmation
	Insert []model.OrderLineConfirmation
}

func (d Diff) Empty() bool {
	return len(d.Delete) == 0 && len(d.Update) == 0 && len(d.Insert) == 0
}

// Compute は prev（保存済み）と next（候補一式）を比べる。
// ID が空の行は新規。prev に無い ID はエラー。
// 同じ ID が2回出てくる候補もエラー。
func Compute(prev, next []model.OrderLineConfirmation) (Diff, error) {
	prevByID := make(map[string]model.OrderLineConfirmation, len(prev))
	for _, p := range prev {
		prevByID[p.ID] = p
	}

	var d Diff
	kept := make(map[string]bool, len(next))
	for _, n := range next {
		if n.ID == "" {
			d.Insert = append(d.Insert, n)
			continue
		}
		p, ok := prevByID[n.ID]
		if !ok {
			return Diff{}, fmt.Errorf("%w: %s", ErrUnknownConfirmation, n.ID)
		}
		if kept[n.ID] {
			return Diff{}, fmt.Errorf("%w: %s appears twice", ErrUnknownConfirmation, n.ID)
		}
		kept[n.ID] = true
		if !p.SameTerms(n) {
			n.CreatedAt = p.CreatedAt
			d.Update = append(d.Update, n)
		}
	}

	//prev の並び順で削除対象を決める
	for _, p := range prev {
		if !kept[p.ID] {
			d.Delete = append(d.Delete, p.ID)
		}
	}
	return d, nil
}

// MatchExisting は ID の無い候補に、同じ条件の保存済み行の ID を引き継がせる。
// 同じ内容の一括回答を繰り返しても差分は空になる。
// 候補が ID で参照している行と、一度引き継いだ行は再利用しない。
func MatchExisting(prev, next []model.OrderLineConfirmation) []model.OrderLineConfirmation {
	claimed := make(map[string]bool, len(next))
	for _, n := range next {
		if n.ID != "" {
			claimed[n.ID] = true
		}
	}

	out := make([]model.OrderLineConfirmation, len(next))
	copy(out, next)
	for i := range out {
		if out[i].ID != "" {
			continue
		}
		for _, p := range prev {
			if claimed[p.ID] || !p.SameTerms(out[i]) {
				continue
			}
			out[i].ID = p.ID
			claimed[p.ID] = true
			break
		}
	}
	return out
}
