package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ── PostgreSQL DATE[] 自定义类型 ──

// DateArray 对应 PostgreSQL DATE[] 类型，实现 GORM Scanner/Valuer 接口。
// 申诉的备选日期列表使用该类型存储，元素顺序即申请人的偏好顺序。
type DateArray []time.Time

const dateLayout = "2006-01-02"

// Scan 将 PostgreSQL 返回的 {2025-01-02,2025-01-03} 文本解析为 []time.Time。
func (a *DateArray) Scan(src interface{}) error {
	if src == nil {
		*a = nil
		return nil
	}
	var s string
	switch v := src.(type) {
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("DateArray.Scan: unsupported type %T", src)
	}
	s = strings.Trim(s, "{}")
	if s == "" {
		*a = DateArray{}
		return nil
	}
	parts := strings.Split(s, ",")
	arr := make(DateArray, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(strings.TrimSpace(p), `"`)
		t, err := time.Parse(dateLayout, p)
		if err != nil {
			return fmt.Errorf("DateArray.Scan: invalid element %q: %w", p, err)
		}
		arr = append(arr, t)
	}
	*a = arr
	return nil
}

// Value 将 []time.Time 序列化为 PostgreSQL {2025-01-02,...} 文本。
func (a DateArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	parts := make([]string, len(a))
	for i, t := range a {
		parts[i] = t.Format(dateLayout)
	}
	return "{" + strings.Join(parts, ",") + "}", nil
}

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// SoftDeleteModel 支持软删除的审计字段
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"    json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:uuid" json:"deleted_by,omitempty"`
}

// VersionedModel 支持乐观锁的软删除模型
type VersionedModel struct {
	SoftDeleteModel
	Version int `gorm:"not null;default:1" json:"version"`
}
