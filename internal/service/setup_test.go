package service_test

import (
	"fmt"
	"strings"
	"testing"

	"quiz_edu_backend/internal/model"
	"quiz_edu_backend/internal/repository"
	"quiz_edu_backend/internal/service"
	"quiz_edu_backend/pkg/database"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// testEnv 基于内存 SQLite 的服务测试环境。单连接串行化事务，
// 锁相关行为与生产 MySQL 不完全一致，这里验证的是状态机语义。
type testEnv struct {
	db       *gorm.DB
	quiz     *service.QuizService
	progress *service.ProgressService

	course model.Course
	// levels[unit序号][关卡序号]，均从 0 起
	levels [][]model.Level
	// questions 按关卡ID索引
	questions map[uint][]model.Question
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	env := &testEnv{db: db, questions: make(map[uint][]model.Question)}
	env.seedCatalog(t)

	catalogRepo := repository.NewCatalogRepository(db)
	progressRepo := repository.NewProgressRepository(db)
	questionRepo := repository.NewQuestionRepository(db)
	answerRepo := repository.NewAnswerRepository(db)

	env.progress = service.NewProgressService(catalogRepo, progressRepo, db, nil, 0)
	env.quiz = service.NewQuizService(questionRepo, answerRepo, catalogRepo, env.progress, db)
	return env
}

// seedCatalog 固定的测试课程结构：
//
//	单元1: 关卡A1、A2（各3题）
//	单元2: 关卡B1（3题）、B2（无题）、B3（期中，无题）
func (env *testEnv) seedCatalog(t *testing.T) {
	t.Helper()

	env.course = model.Course{Grade: "三年级", Subject: "语文", Term: "上册"}
	if err := env.db.Create(&env.course).Error; err != nil {
		t.Fatalf("seed course: %v", err)
	}

	units := []struct {
		name   string
		levels []model.Level
	}{
		{"学校生活", []model.Level{{Title: "A1"}, {Title: "A2"}}},
		{"金秋时节", []model.Level{{Title: "B1"}, {Title: "B2"}, {Title: "B3", IsMidterm: true}}},
	}

	withQuestions := map[string]bool{"A1": true, "A2": true, "B1": true}

	for unitIdx, u := range units {
		unit := model.Unit{CourseID: env.course.ID, Name: u.name, Order: unitIdx + 1}
		if err := env.db.Create(&unit).Error; err != nil {
			t.Fatalf("seed unit: %v", err)
		}
		var created []model.Level
		for levelIdx := range u.levels {
			level := u.levels[levelIdx]
			level.UnitID = unit.ID
			level.Order = levelIdx + 1
			if err := env.db.Create(&level).Error; err != nil {
				t.Fatalf("seed level: %v", err)
			}
			if withQuestions[level.Title] {
				env.seedQuestions(t, level.ID)
			}
			created = append(created, level)
		}
		env.levels = append(env.levels, created)
	}
}

func (env *testEnv) seedQuestions(t *testing.T, levelID uint) {
	t.Helper()
	questions := []model.Question{
		{
			LevelID:       levelID,
			QuestionType:  model.QuestionMultipleChoice,
			Content:       "选出正确的选项",
			Options:       `[{"id":1,"text":"甲"},{"id":2,"text":"乙"},{"id":3,"text":"丙"}]`,
			CorrectAnswer: `[1,3]`,
			Score:         2,
			Order:         1,
			Explanation:   "甲和丙正确。",
		},
		{
			LevelID:       levelID,
			QuestionType:  model.QuestionTrueFalse,
			Content:       "判断对错",
			CorrectAnswer: `true`,
			Score:         1,
			Order:         2,
		},
		{
			LevelID:       levelID,
			QuestionType:  model.QuestionFillBlank,
			Content:       "鸟儿的歌声十分____。",
			CorrectAnswer: `["婉转"]`,
			BlanksCount:   1,
			Score:         2,
			Order:         3,
		},
	}
	for i := range questions {
		if err := env.db.Create(&questions[i]).Error; err != nil {
			t.Fatalf("seed question: %v", err)
		}
	}
	env.questions[levelID] = questions
}

// correctAnswers 与 seedQuestions 的题目一一对应
func correctAnswers() []string {
	return []string{`[1,3]`, `true`, `["婉转"]`}
}

func wrongAnswers() []string {
	return []string{`[2]`, `false`, `["悦耳"]`}
}

// completeLevel 按给定答案答完关卡全部题目，返回最后一次提交的结果
func (env *testEnv) completeLevel(t *testing.T, userID, levelID uint, answers []string) *service.SubmitAnswerResult {
	t.Helper()
	questions := env.questions[levelID]
	if len(questions) == 0 {
		t.Fatalf("level %d has no seeded questions", levelID)
	}
	var last *service.SubmitAnswerResult
	for i, q := range questions {
		result, err := env.quiz.SubmitAnswer(userID, q.ID, []byte(answers[i]), 5)
		if err != nil {
			t.Fatalf("submit question %d: %v", q.ID, err)
		}
		last = result
	}
	return last
}

func (env *testEnv) levelStatus(t *testing.T, userID, levelID uint) model.ProgressStatus {
	t.Helper()
	status, err := env.progress.GetLevelProgress(userID, levelID)
	if err != nil {
		t.Fatalf("get level progress: %v", err)
	}
	return status
}
