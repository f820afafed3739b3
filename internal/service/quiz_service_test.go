package service_test

import (
	"errors"
	"sync"
	"testing"

	"quiz_edu_backend/internal/model"
	"quiz_edu_backend/internal/util"
)

func TestSubmitAnswerOverwritesPreviousAttempt(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(1)
	q := env.questions[env.levels[0][0].ID][0]

	result, err := env.quiz.SubmitAnswer(userID, q.ID, []byte(`[2]`), 10)
	if err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if result.IsCorrect || result.Score != 0 {
		t.Fatalf("expected incorrect first attempt, got %+v", result)
	}

	result, err = env.quiz.SubmitAnswer(userID, q.ID, []byte(`[3,1]`), 8)
	if err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if !result.IsCorrect || result.Score != q.Score {
		t.Fatalf("expected correct resubmission with score %d, got %+v", q.Score, result)
	}

	var count int64
	if err := env.db.Model(&model.UserAnswer{}).
		Where("user_id = ? AND question_id = ?", userID, q.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count answers: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected a single answer row per (user, question), got %d", count)
	}

	_, answer, err := env.quiz.GetQuestion(userID, q.ID)
	if err != nil {
		t.Fatalf("get question: %v", err)
	}
	if answer == nil || !answer.IsCorrect || answer.AnswerContent != `[3,1]` {
		t.Fatalf("expected stored answer to reflect latest submission, got %+v", answer)
	}
}

func TestSubmitAnswerUnknownQuestion(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.quiz.SubmitAnswer(1, 99999, []byte(`true`), 0); !errors.Is(err, util.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestLevelCompletionIgnoresCorrectness(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(2)
	levelA1 := env.levels[0][0]
	levelA2 := env.levels[0][1]

	// 全部答错也算完成关卡
	result := env.completeLevel(t, userID, levelA1.ID, wrongAnswers())
	if !result.LevelComplete {
		t.Fatal("expected level complete after answering every question")
	}
	if len(result.UnlockedLevelIDs) != 1 || result.UnlockedLevelIDs[0] != levelA2.ID {
		t.Fatalf("expected unlock of next level %d, got %v", levelA2.ID, result.UnlockedLevelIDs)
	}

	if got := env.levelStatus(t, userID, levelA1.ID); got != model.ProgressCompleted {
		t.Fatalf("expected completed, got %s", got)
	}
	if got := env.levelStatus(t, userID, levelA2.ID); got != model.ProgressUnlocked {
		t.Fatalf("expected next level unlocked, got %s", got)
	}
}

func TestPartialAnswersDoNotComplete(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(3)
	level := env.levels[0][0]
	q := env.questions[level.ID][0]

	result, err := env.quiz.SubmitAnswer(userID, q.ID, []byte(`[1,3]`), 5)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.LevelComplete {
		t.Fatal("one of three answered, level must not be complete")
	}
	if got := env.levelStatus(t, userID, level.ID); got == model.ProgressCompleted {
		t.Fatal("progress must not be completed yet")
	}
}

func TestResubmissionDoesNotCascadeTwice(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(4)
	level := env.levels[0][0]

	env.completeLevel(t, userID, level.ID, correctAnswers())

	// 关卡已完成后再提交：仍报告完成，但不再产生新的解锁
	q := env.questions[level.ID][1]
	result, err := env.quiz.SubmitAnswer(userID, q.ID, []byte(`false`), 3)
	if err != nil {
		t.Fatalf("resubmit: %v", err)
	}
	if !result.LevelComplete {
		t.Fatal("level should still report complete")
	}
	if len(result.UnlockedLevelIDs) != 0 {
		t.Fatalf("expected no new unlocks, got %v", result.UnlockedLevelIDs)
	}
}

func TestCompletionCascadesAcrossUnits(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(5)
	levelA1 := env.levels[0][0]
	levelA2 := env.levels[0][1]
	levelB1 := env.levels[1][0]

	env.completeLevel(t, userID, levelA1.ID, correctAnswers())
	result := env.completeLevel(t, userID, levelA2.ID, correctAnswers())

	// 单元末关完成后解锁下一单元第一关
	if len(result.UnlockedLevelIDs) != 1 || result.UnlockedLevelIDs[0] != levelB1.ID {
		t.Fatalf("expected first level of next unit %d unlocked, got %v", levelB1.ID, result.UnlockedLevelIDs)
	}
	if got := env.levelStatus(t, userID, levelB1.ID); got != model.ProgressUnlocked {
		t.Fatalf("expected unlocked, got %s", got)
	}
}

func TestConcurrentSubmissionsCascadeOnce(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(6)
	level := env.levels[0][0]
	questions := env.questions[level.ID]
	answers := correctAnswers()

	const workersPerQuestion = 3
	var wg sync.WaitGroup
	var mu sync.Mutex
	var unlockEvents int
	errCh := make(chan error, len(questions)*workersPerQuestion)

	for i, q := range questions {
		for w := 0; w < workersPerQuestion; w++ {
			wg.Add(1)
			go func(questionID uint, answer string) {
				defer wg.Done()
				result, err := env.quiz.SubmitAnswer(userID, questionID, []byte(answer), 1)
				if err != nil {
					errCh <- err
					return
				}
				if len(result.UnlockedLevelIDs) > 0 {
					mu.Lock()
					unlockEvents++
					mu.Unlock()
				}
			}(q.ID, answers[i])
		}
	}
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("concurrent submit: %v", err)
	}

	if unlockEvents != 1 {
		t.Fatalf("expected the unlock cascade to fire exactly once, got %d", unlockEvents)
	}

	for _, q := range questions {
		var count int64
		if err := env.db.Model(&model.UserAnswer{}).
			Where("user_id = ? AND question_id = ?", userID, q.ID).
			Count(&count).Error; err != nil {
			t.Fatalf("count answers: %v", err)
		}
		if count != 1 {
			t.Fatalf("question %d: expected one answer row, got %d", q.ID, count)
		}
	}

	if got := env.levelStatus(t, userID, level.ID); got != model.ProgressCompleted {
		t.Fatalf("expected completed, got %s", got)
	}
	if got := env.levelStatus(t, userID, env.levels[0][1].ID); got != model.ProgressUnlocked {
		t.Fatalf("expected next level unlocked, got %s", got)
	}
}

func TestGetLevelQuestionsMarksAnswered(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(7)
	level := env.levels[0][0]
	q := env.questions[level.ID][0]

	if _, err := env.quiz.SubmitAnswer(userID, q.ID, []byte(`[1,3]`), 5); err != nil {
		t.Fatalf("submit: %v", err)
	}

	views, err := env.quiz.GetLevelQuestions(userID, level.ID)
	if err != nil {
		t.Fatalf("get level questions: %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("expected 3 questions, got %d", len(views))
	}
	if !views[0].Answered || views[0].Answer == nil {
		t.Fatalf("expected first question marked answered, got %+v", views[0])
	}
	if views[1].Answered || views[1].Answer != nil {
		t.Fatal("unanswered question must not carry an answer record")
	}

	if _, err := env.quiz.GetLevelQuestions(userID, 99999); !errors.Is(err, util.ErrLevelNotFound) {
		t.Fatalf("expected ErrLevelNotFound, got %v", err)
	}
}

func TestGetLevelResult(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(8)
	level := env.levels[0][0]
	questions := env.questions[level.ID]

	// 挂两个知识点：选择题归"词语积累"，填空题归"课文理解"
	kpWords := model.KnowledgePoint{Name: "词语积累", Category: "基础"}
	kpReading := model.KnowledgePoint{Name: "课文理解", Category: "阅读"}
	for _, kp := range []*model.KnowledgePoint{&kpWords, &kpReading} {
		if err := env.db.Create(kp).Error; err != nil {
			t.Fatalf("seed knowledge point: %v", err)
		}
	}
	if err := env.db.Model(&questions[0]).Association("KnowledgePoints").Append(&kpWords); err != nil {
		t.Fatalf("attach knowledge point: %v", err)
	}
	if err := env.db.Model(&questions[2]).Association("KnowledgePoints").Append(&kpReading); err != nil {
		t.Fatalf("attach knowledge point: %v", err)
	}

	// 选择题答对，判断题答错，填空题答错
	env.completeLevel(t, userID, level.ID, []string{`[1,3]`, `false`, `["悦耳"]`})

	result, err := env.quiz.GetLevelResult(userID, level.ID)
	if err != nil {
		t.Fatalf("get level result: %v", err)
	}
	if result.TotalQuestions != 3 || result.AnsweredCount != 3 {
		t.Fatalf("expected 3/3 answered, got %d/%d", result.AnsweredCount, result.TotalQuestions)
	}
	if result.TotalScore != 5 {
		t.Fatalf("expected total score 5, got %d", result.TotalScore)
	}
	if result.UserScore != 2 {
		t.Fatalf("expected user score 2 (only the choice question), got %d", result.UserScore)
	}
	if result.CorrectCount != 1 {
		t.Fatalf("expected 1 correct, got %d", result.CorrectCount)
	}
	wantAccuracy := 100.0 / 3.0
	if diff := result.Accuracy - wantAccuracy; diff > 0.01 || diff < -0.01 {
		t.Fatalf("expected accuracy ~%.2f, got %.2f", wantAccuracy, result.Accuracy)
	}

	if len(result.KnowledgeStats) != 2 {
		t.Fatalf("expected 2 knowledge point stats, got %d", len(result.KnowledgeStats))
	}
	stats := make(map[string]model.KnowledgePointStat, len(result.KnowledgeStats))
	for _, s := range result.KnowledgeStats {
		stats[s.Name] = s
	}
	if s := stats["词语积累"]; s.Total != 1 || s.Correct != 1 || s.Accuracy != 100 {
		t.Fatalf("unexpected stat for 词语积累: %+v", s)
	}
	if s := stats["课文理解"]; s.Total != 1 || s.Correct != 0 || s.Accuracy != 0 {
		t.Fatalf("unexpected stat for 课文理解: %+v", s)
	}
}
