package db_models

// WebhookEvent is the audit row written for every verified provider callback.
type WebhookEvent struct {
	BaseModel
	EventType string `gorm:"size:100;index;not null"`
	Payload   string `gorm:"type:text;not null"`
	Processed bool   `gorm:"default:false;index"`
}
