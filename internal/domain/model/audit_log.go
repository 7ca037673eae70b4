package model

import "time"

// 状態を変えた操作の種類
type AuditAction string

const (
	//サプライヤーが見積回答を送信した
	AuditActionSendOffer AuditAction = "SEND_OFFER"
	//担当者が見積を採用/不採用にした
	AuditActionReviewOffer AuditAction = "REVIEW_OFFER"
	//注文を確定した
	AuditActionVerifyApplication AuditAction = "VERIFY_APPLICATION"
	//確定済み注文が変更で pending に戻った
	AuditActionDemoteApplication AuditAction = "DEMOTE_APPLICATION"
)

// 何に対する操作か
type AuditResourceType string

const (
	AuditResourceOffer       AuditResourceType = "offer"
	AuditResourceApplication AuditResourceType = "application"
)

// 状態変更の監査ログ。
// 「誰が」「何を」「どの対象に」「どう変えたか」を残す。
type AuditLog struct {
	ID int64 `gorm:"primaryKey;autoIncrement" json:"id"`

	//操作したユーザーのID。
	ActorUserID string `gorm:"type:varchar(36);not null;index" json:"actor_user_id"`

	Action AuditAction `gorm:"type:varchar(50);not null;index" json:"action"`

	ResourceType AuditResourceType `gorm:"type:varchar(50);not null;index" json:"resource_type"`

	ResourceID string `gorm:"type:varchar(36);not null;index" json:"resource_id"`

	//JSON文字列で保存する。
	BeforeJSON string `gorm:"type:text" json:"before_json"`

	AfterJSON string `gorm:"type:text" json:"after_json"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}
