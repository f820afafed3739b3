package model

type ProgressStatus string

const (
	ProgressLocked    ProgressStatus = "locked"
	ProgressUnlocked  ProgressStatus = "unlocked"
	ProgressCompleted ProgressStatus = "completed"
)

// UserProgress 用户关卡进度，状态转移由 ProgressService 统一管理
// swagger:model UserProgress
type UserProgress struct {
	BaseModel
	UserID  uint           `gorm:"uniqueIndex:idx_user_level;type:bigint unsigned;not null" json:"userId"`
	LevelID uint           `gorm:"uniqueIndex:idx_user_level;type:bigint unsigned;not null" json:"levelId"`
	Status  ProgressStatus `gorm:"type:varchar(20);default:'locked'" json:"status"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}
