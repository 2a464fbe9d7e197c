package model

// Room 考场表 — 对应 rooms
type Room struct {
	RoomID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"room_id"`
	Building   string `gorm:"type:varchar(50);not null"                      json:"building"`
	RoomNumber string `gorm:"type:varchar(20);not null"                      json:"room_number"`
	BaseModel
}

// TableName 指定表名
func (Room) TableName() string { return "rooms" }
