package model

// Professor 教师表 — 对应 professors
// 教师本身不是监考人员；首次被指派监考时通过 EnsureInvigilatorForProfessor
// 按需补建关联的 Invigilator 记录
type Professor struct {
	ProfessorID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"professor_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	DepartmentID string `gorm:"type:uuid;not null"                             json:"department_id"`
	BaseModel

	// 关联
	Department *Department `gorm:"foreignKey:DepartmentID;references:DepartmentID" json:"department,omitempty"`
}

// TableName 指定表名
func (Professor) TableName() string { return "professors" }
