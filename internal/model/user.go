package model

// 用户角色常量
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User 用户表 — 对应 users
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'user'"       json:"role"`
	DepartmentID *string `gorm:"type:uuid"                                      json:"department_id,omitempty"`
	VersionedModel

	// 关联
	Department  *Department  `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
	Invigilator *Invigilator `gorm:"foreignKey:UserID;references:UserID"             json:"invigilator,omitempty"`
}

// TableName 指定表名
func (User) TableName() string { return "users" }
