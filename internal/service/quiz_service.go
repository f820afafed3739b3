package service

import (
	"encoding/json"
	"errors"
	"time"

	"quiz_edu_backend/internal/model"
	"quiz_edu_backend/internal/repository"
	"quiz_edu_backend/internal/util"
	"quiz_edu_backend/pkg/monitoring"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// QuizService 答题主流程：判题 -> 记录覆盖写 -> 关卡完成检查 -> 进度级联。
type QuizService struct {
	QuestionRepo *repository.QuestionRepository
	AnswerRepo   *repository.AnswerRepository
	CatalogRepo  *repository.CatalogRepository
	Progress     *ProgressService
	DB           *gorm.DB
}

func NewQuizService(questionRepo *repository.QuestionRepository, answerRepo *repository.AnswerRepository, catalogRepo *repository.CatalogRepository, progress *ProgressService, db *gorm.DB) *QuizService {
	return &QuizService{
		QuestionRepo: questionRepo,
		AnswerRepo:   answerRepo,
		CatalogRepo:  catalogRepo,
		Progress:     progress,
		DB:           db,
	}
}

// SubmitAnswerResult 一次提交的结果
type SubmitAnswerResult struct {
	IsCorrect        bool   `json:"isCorrect"`
	Score            int    `json:"score"`
	LevelComplete    bool   `json:"levelComplete"`
	UnlockedLevelIDs []uint `json:"unlockedLevelIds"`
	Explanation      string `json:"explanation,omitempty"`
}

// SubmitAnswer 提交一道题的答案。重复提交覆盖上一次记录（同一
// user+question 只保留一条）。答完关卡内全部题目即视为完成该关卡
// （不要求答对），首次完成时触发解锁级联。
// 整个写入路径在一个事务内，级联失败则本次提交整体回滚。
func (s *QuizService) SubmitAnswer(userID, questionID uint, answer json.RawMessage, timeSpentSeconds int) (*SubmitAnswerResult, error) {
	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuestionNotFound
		}
		return nil, err
	}

	// 判题是纯函数，放在事务外
	eval, err := Evaluate(question, answer)
	if err != nil {
		return nil, err
	}

	result := &SubmitAnswerResult{
		IsCorrect:   eval.IsCorrect,
		Score:       eval.Score,
		Explanation: question.Explanation,
	}

	run := func() error {
		result.LevelComplete = false
		result.UnlockedLevelIDs = nil
		return s.DB.Transaction(func(tx *gorm.DB) error {
			if err := s.upsertAnswer(tx, userID, question, answer, eval, timeSpentSeconds); err != nil {
				return err
			}

			complete, err := s.levelComplete(tx, userID, question.LevelID)
			if err != nil {
				return err
			}
			if !complete {
				return nil
			}
			result.LevelComplete = true

			unlocked, err := s.Progress.MarkCompletedTx(tx, userID, question.LevelID)
			if err != nil {
				return err
			}
			result.UnlockedLevelIDs = unlocked
			return nil
		})
	}

	if err := run(); err != nil {
		// 唯一索引冲突说明并发提交撞车，整体重试一次即可收敛
		if !errors.Is(err, util.ErrConflict) {
			return nil, err
		}
		if err := run(); err != nil {
			return nil, err
		}
	}

	monitoring.ObserveSubmission(question.QuestionType, eval.IsCorrect)
	if len(result.UnlockedLevelIDs) > 0 {
		monitoring.UnlockCascadeCounter.Inc()
	}
	s.Progress.InvalidateForLevel(userID, question.LevelID)

	return result, nil
}

// upsertAnswer 以 (user_id, question_id) 为键覆盖写答题记录
func (s *QuizService) upsertAnswer(tx *gorm.DB, userID uint, question *model.Question, answer json.RawMessage, eval EvalResult, timeSpentSeconds int) error {
	now := time.Now()

	var existing model.UserAnswer
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND question_id = ?", userID, question.ID).
		First(&existing).Error
	switch {
	case err == nil:
		existing.AnswerContent = string(answer)
		existing.IsCorrect = eval.IsCorrect
		existing.Score = eval.Score
		existing.TimeSpentSeconds = timeSpentSeconds
		existing.SubmittedAt = now
		return tx.Save(&existing).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		record := model.UserAnswer{
			UserID:           userID,
			QuestionID:       question.ID,
			AnswerContent:    string(answer),
			IsCorrect:        eval.IsCorrect,
			Score:            eval.Score,
			TimeSpentSeconds: timeSpentSeconds,
			SubmittedAt:      now,
		}
		if err := tx.Create(&record).Error; err != nil {
			if isDuplicateKey(err) {
				return util.ErrConflict
			}
			return err
		}
		return nil
	default:
		return err
	}
}

// levelComplete 完成门槛：关卡内每道题都有答题记录即算完成，对错不论
func (s *QuizService) levelComplete(tx *gorm.DB, userID, levelID uint) (bool, error) {
	var total int64
	if err := tx.Model(&model.Question{}).Where("level_id = ?", levelID).Count(&total).Error; err != nil {
		return false, err
	}
	if total == 0 {
		return false, nil
	}
	var answered int64
	err := tx.Model(&model.UserAnswer{}).
		Joins("JOIN questions ON questions.id = user_answers.question_id").
		Where("user_answers.user_id = ? AND questions.level_id = ?", userID, levelID).
		Count(&answered).Error
	if err != nil {
		return false, err
	}
	return answered >= total, nil
}

// LevelQuestionView 题目列表项，答案键不下发
type LevelQuestionView struct {
	Question model.Question    `json:"question"`
	Answered bool              `json:"answered"`
	Answer   *model.UserAnswer `json:"answer,omitempty"`
}

// GetLevelQuestions 关卡题目列表及用户已有的答题记录
func (s *QuizService) GetLevelQuestions(userID, levelID uint) ([]LevelQuestionView, error) {
	if _, err := s.CatalogRepo.FindLevelByID(levelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLevelNotFound
		}
		return nil, err
	}

	questions, err := s.QuestionRepo.ListByLevel(levelID)
	if err != nil {
		return nil, err
	}
	answers, err := s.AnswerRepo.MapByLevel(userID, levelID)
	if err != nil {
		return nil, err
	}

	views := make([]LevelQuestionView, 0, len(questions))
	for _, q := range questions {
		view := LevelQuestionView{Question: q}
		if a, ok := answers[q.ID]; ok {
			a := a
			view.Answered = true
			view.Answer = &a
		}
		views = append(views, view)
	}
	return views, nil
}

// GetQuestion 单题详情及用户上一次的作答
func (s *QuizService) GetQuestion(userID, questionID uint) (*model.Question, *model.UserAnswer, error) {
	question, err := s.QuestionRepo.FindByID(questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrQuestionNotFound
		}
		return nil, nil, err
	}
	answer, err := s.AnswerRepo.FindByUserAndQuestion(userID, questionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return question, nil, nil
		}
		return nil, nil, err
	}
	return question, answer, nil
}

// LevelResult 关卡结算
type LevelResult struct {
	LevelID        uint                       `json:"levelId"`
	TotalScore     int                        `json:"totalScore"`
	UserScore      int                        `json:"userScore"`
	TotalQuestions int                        `json:"totalQuestions"`
	AnsweredCount  int                        `json:"answeredCount"`
	CorrectCount   int                        `json:"correctCount"`
	Accuracy       float64                    `json:"accuracy"`
	KnowledgeStats []model.KnowledgePointStat `json:"knowledgeStats"`
}

// GetLevelResult 关卡结算：得分、正确率与按知识点聚合的统计
func (s *QuizService) GetLevelResult(userID, levelID uint) (*LevelResult, error) {
	if _, err := s.CatalogRepo.FindLevelByID(levelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLevelNotFound
		}
		return nil, err
	}

	questions, err := s.QuestionRepo.ListByLevelWithKnowledgePoints(levelID)
	if err != nil {
		return nil, err
	}
	answers, err := s.AnswerRepo.MapByLevel(userID, levelID)
	if err != nil {
		return nil, err
	}

	result := &LevelResult{LevelID: levelID, TotalQuestions: len(questions)}
	statIndex := make(map[string]*model.KnowledgePointStat)
	var statOrder []string

	for _, q := range questions {
		result.TotalScore += q.Score
		answer, answered := answers[q.ID]
		if answered {
			result.AnsweredCount++
			result.UserScore += answer.Score
			if answer.IsCorrect {
				result.CorrectCount++
			}
		}
		for _, kp := range q.KnowledgePoints {
			stat, ok := statIndex[kp.Name]
			if !ok {
				stat = &model.KnowledgePointStat{Name: kp.Name}
				statIndex[kp.Name] = stat
				statOrder = append(statOrder, kp.Name)
			}
			stat.Total++
			if answered && answer.IsCorrect {
				stat.Correct++
			}
		}
	}

	if len(questions) > 0 {
		result.Accuracy = float64(result.CorrectCount) / float64(len(questions)) * 100
	}
	for _, name := range statOrder {
		stat := statIndex[name]
		if stat.Total > 0 {
			stat.Accuracy = float64(stat.Correct) / float64(stat.Total) * 100
		}
		result.KnowledgeStats = append(result.KnowledgeStats, *stat)
	}
	return result, nil
}
