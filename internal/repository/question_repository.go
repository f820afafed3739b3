package repository

import (
	"quiz_edu_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) FindByID(id uint) (*model.Question, error) {
	var q model.Question
	if err := r.DB.First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// ListByLevel 关卡内题目按 order 排序，order 相同按 id
func (r *QuestionRepository) ListByLevel(levelID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("level_id = ?", levelID).
		Order("`order`, id").
		Find(&questions).Error
	return questions, err
}

// ListByLevelWithKnowledgePoints 结算页用：题目连同知识点
func (r *QuestionRepository) ListByLevelWithKnowledgePoints(levelID uint) ([]model.Question, error) {
	var questions []model.Question
	err := r.DB.Where("level_id = ?", levelID).
		Order("`order`, id").
		Preload("KnowledgePoints").
		Find(&questions).Error
	return questions, err
}

func (r *QuestionRepository) CountByLevel(levelID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Question{}).Where("level_id = ?", levelID).Count(&count).Error
	return count, err
}
