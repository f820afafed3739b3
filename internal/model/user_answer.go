package model

import "time"

// UserAnswer 用户答题记录，每个 (user, question) 只保留最近一次提交
// swagger:model UserAnswer
type UserAnswer struct {
	BaseModel
	UserID     uint `gorm:"uniqueIndex:idx_user_question;type:bigint unsigned;not null" json:"userId"`
	QuestionID uint `gorm:"uniqueIndex:idx_user_question;type:bigint unsigned;not null" json:"questionId"`
	// AnswerContent JSON 存储用户提交的原始答案
	AnswerContent    string    `gorm:"type:json;not null" json:"answerContent"`
	IsCorrect        bool      `gorm:"not null" json:"isCorrect"`
	Score            int       `gorm:"not null" json:"score"`
	TimeSpentSeconds int       `json:"timeSpentSeconds"`
	SubmittedAt      time.Time `json:"submittedAt"`
}

func (UserAnswer) TableName() string {
	return "user_answers"
}
