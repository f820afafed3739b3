package repository

import (
	"quiz_edu_backend/internal/model"

	"gorm.io/gorm"
)

// ProgressRepository 进度记录读取。状态写入只在 ProgressService 的事务里发生。
type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) Find(userID, levelID uint) (*model.UserProgress, error) {
	var progress model.UserProgress
	err := r.DB.Where("user_id = ? AND level_id = ?", userID, levelID).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

// MapByLevels 用户在一组关卡上的进度，按关卡ID索引
func (r *ProgressRepository) MapByLevels(userID uint, levelIDs []uint) (map[uint]model.UserProgress, error) {
	result := make(map[uint]model.UserProgress, len(levelIDs))
	if len(levelIDs) == 0 {
		return result, nil
	}
	var rows []model.UserProgress
	err := r.DB.Where("user_id = ? AND level_id IN ?", userID, levelIDs).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, p := range rows {
		result[p.LevelID] = p
	}
	return result, nil
}
