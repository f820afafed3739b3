package repository

import (
	"quiz_edu_backend/internal/model"

	"gorm.io/gorm"
)

// AnswerRepository 答题记录读取。写入走 QuizService 的提交事务。
type AnswerRepository struct {
	DB *gorm.DB
}

func NewAnswerRepository(db *gorm.DB) *AnswerRepository {
	return &AnswerRepository{DB: db}
}

func (r *AnswerRepository) FindByUserAndQuestion(userID, questionID uint) (*model.UserAnswer, error) {
	var answer model.UserAnswer
	err := r.DB.Where("user_id = ? AND question_id = ?", userID, questionID).First(&answer).Error
	if err != nil {
		return nil, err
	}
	return &answer, nil
}

// MapByLevel 用户在某关卡的全部答题记录，按题目ID索引
func (r *AnswerRepository) MapByLevel(userID, levelID uint) (map[uint]model.UserAnswer, error) {
	var answers []model.UserAnswer
	err := r.DB.
		Joins("JOIN questions ON questions.id = user_answers.question_id").
		Where("user_answers.user_id = ? AND questions.level_id = ?", userID, levelID).
		Find(&answers).Error
	if err != nil {
		return nil, err
	}
	result := make(map[uint]model.UserAnswer, len(answers))
	for _, a := range answers {
		result[a.QuestionID] = a
	}
	return result, nil
}

func (r *AnswerRepository) CountByLevel(userID, levelID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.UserAnswer{}).
		Joins("JOIN questions ON questions.id = user_answers.question_id").
		Where("user_answers.user_id = ? AND questions.level_id = ?", userID, levelID).
		Count(&count).Error
	return count, err
}
