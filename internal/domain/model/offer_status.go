package model

type OfferStatus string

const (
	OfferStatusOpen     OfferStatus = "open"
	OfferStatusApplied  OfferStatus = "applied"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusRejected OfferStatus = "rejected"
)

type OfferEvent string

const (
	// 下書き保存（状態は変えない）
	OfferEventSaveDraft OfferEvent = "save_draft"
	// サプライヤーが回答を送信
	OfferEventSend   OfferEvent = "send"
	OfferEventAccept OfferEvent = "accept"
	OfferEventReject OfferEvent = "reject"
)

var offerTransitions = map[OfferStatus]map[OfferEvent]OfferStatus{
	OfferStatusOpen: {
		OfferEventSaveDraft: OfferStatusOpen,
		OfferEventSend:      OfferStatusApplied,
	},
	OfferStatusApplied: {
		OfferEventAccept: OfferStatusAccepted,
		OfferEventReject: OfferStatusRejected,
	},
	// accepted / rejected は終端
	OfferStatusAccepted: {},
	OfferStatusRejected: {},
}

func (s OfferStatus) Valid() bool {
	_, ok := offerTransitions[s]
	return ok
}

func (s OfferStatus) IsTerminal() bool {
	return s == OfferStatusAccepted || s == OfferStatusRejected
}

// Apply は状態×イベントの遷移先を返す。定義のない組み合わせは TransitionError。
func (s OfferStatus) Apply(ev OfferEvent) (OfferStatus, error) {
	next, ok := offerTransitions[s][ev]
	if !ok {
		return s, &TransitionError{Entity: "offer", From: string(s), Event: string(ev)}
	}
	return next, nil
}

// レビュー結果の文字列をイベントに変換
func OfferReviewEvent(decision string) (OfferEvent, bool) {
	switch OfferStatus(decision) {
	case OfferStatusAccepted:
		return OfferEventAccept, true
	case OfferStatusRejected:
		return OfferEventReject, true
	}
	return "", false
}
