package model

// swagger:model Level
type Level struct {
	BaseModel
	UnitID     uint   `gorm:"index;type:bigint unsigned;not null" json:"unitId"`
	Title      string `gorm:"size:100;not null" json:"title"`
	ContentRef string `gorm:"size:100" json:"contentRef"` // 对应教材的课文/章节
	IsBoss     bool   `gorm:"default:false" json:"isBoss"`
	IsMidterm  bool   `gorm:"default:false" json:"isMidterm"`
	IsFinal    bool   `gorm:"default:false" json:"isFinal"`
	Order      int    `gorm:"not null" json:"order"`
}

func (Level) TableName() string {
	return "levels"
}

// DefaultStatus 单元第一关默认解锁，期中/期末关卡同样默认解锁
func (l *Level) DefaultStatus() ProgressStatus {
	if l.Order == 1 || l.IsMidterm || l.IsFinal {
		return ProgressUnlocked
	}
	return ProgressLocked
}
