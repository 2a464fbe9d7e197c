package model

import "time"

// 操作日志类型常量
const (
	ActivityCreate = "CREATE"
	ActivityUpdate = "UPDATE"
	ActivityDelete = "DELETE"
	ActivityImport = "IMPORT"
	ActivityLogin  = "LOGIN"
)

// Activity 操作日志表 — 对应 activities
// 台账变更（认领、改派、申诉裁决、合并）在同一事务内写入一条日志
type Activity struct {
	ActivityID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"activity_id"`
	Type        string    `gorm:"type:varchar(20);not null"                      json:"type"`
	Description string    `gorm:"type:varchar(500);not null"                     json:"description"`
	UserID      *string   `gorm:"type:uuid"                                      json:"user_id,omitempty"`
	CreatedAt   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (Activity) TableName() string { return "activities" }
