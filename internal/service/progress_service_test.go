package service_test

import (
	"errors"
	"testing"

	"quiz_edu_backend/internal/model"
	"quiz_edu_backend/internal/util"

	"gorm.io/gorm"
)

func TestCourseProgressDefaults(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(11)

	statuses, err := env.progress.GetCourseProgress(userID, env.course.ID)
	if err != nil {
		t.Fatalf("get course progress: %v", err)
	}

	levelA1 := env.levels[0][0]
	levelA2 := env.levels[0][1]
	levelB1 := env.levels[1][0]
	levelB2 := env.levels[1][1]
	levelB3 := env.levels[1][2] // 期中

	want := map[uint]model.ProgressStatus{
		levelA1.ID: model.ProgressUnlocked, // 单元第一关
		levelA2.ID: model.ProgressLocked,
		levelB1.ID: model.ProgressUnlocked, // 单元第一关
		levelB2.ID: model.ProgressLocked,
		levelB3.ID: model.ProgressUnlocked, // 期中默认解锁
	}
	if len(statuses) != len(want) {
		t.Fatalf("expected %d levels, got %d", len(want), len(statuses))
	}
	for levelID, status := range want {
		if statuses[levelID] != status {
			t.Fatalf("level %d: expected %s, got %s", levelID, status, statuses[levelID])
		}
	}

	// 首次枚举时默认状态落库
	var count int64
	if err := env.db.Model(&model.UserProgress{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count progress rows: %v", err)
	}
	if count != int64(len(want)) {
		t.Fatalf("expected %d materialized rows, got %d", len(want), count)
	}

	if _, err := env.progress.GetCourseProgress(userID, 99999); !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestLevelProgressDefaultDoesNotPersist(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(12)
	levelA2 := env.levels[0][1]

	status, err := env.progress.GetLevelProgress(userID, levelA2.ID)
	if err != nil {
		t.Fatalf("get level progress: %v", err)
	}
	if status != model.ProgressLocked {
		t.Fatalf("expected locked default, got %s", status)
	}

	var count int64
	if err := env.db.Model(&model.UserProgress{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count progress rows: %v", err)
	}
	if count != 0 {
		t.Fatalf("single-level read must not materialize rows, got %d", count)
	}

	if _, err := env.progress.GetLevelProgress(userID, 99999); !errors.Is(err, util.ErrLevelNotFound) {
		t.Fatalf("expected ErrLevelNotFound, got %v", err)
	}
}

func TestMarkCompletedIdempotent(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(13)
	levelA1 := env.levels[0][0]
	levelA2 := env.levels[0][1]

	unlocked, err := env.progress.MarkCompleted(userID, levelA1.ID)
	if err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if len(unlocked) != 1 || unlocked[0] != levelA2.ID {
		t.Fatalf("expected unlock of %d, got %v", levelA2.ID, unlocked)
	}

	// 重复完成不再级联
	unlocked, err = env.progress.MarkCompleted(userID, levelA1.ID)
	if err != nil {
		t.Fatalf("repeat mark completed: %v", err)
	}
	if len(unlocked) != 0 {
		t.Fatalf("expected no unlocks on repeat completion, got %v", unlocked)
	}

	if _, err := env.progress.MarkCompleted(userID, 99999); !errors.Is(err, util.ErrLevelNotFound) {
		t.Fatalf("expected ErrLevelNotFound, got %v", err)
	}
}

func TestMarkCompletedTxUsesCallerConnection(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(19)
	levelA1 := env.levels[0][0]
	levelA2 := env.levels[0][1]

	// 连接池只有一个连接（见 newTestEnv）：级联中的任何目录读取
	// 若绕过事务自己去借连接，这里会死锁
	var unlocked []uint
	err := env.db.Transaction(func(tx *gorm.DB) error {
		var err error
		unlocked, err = env.progress.MarkCompletedTx(tx, userID, levelA1.ID)
		return err
	})
	if err != nil {
		t.Fatalf("mark completed in caller transaction: %v", err)
	}
	if len(unlocked) != 1 || unlocked[0] != levelA2.ID {
		t.Fatalf("expected unlock of %d, got %v", levelA2.ID, unlocked)
	}
	if got := env.levelStatus(t, userID, levelA1.ID); got != model.ProgressCompleted {
		t.Fatalf("expected completed, got %s", got)
	}
}

func TestCompletedNeverDowngrades(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(14)
	levelA1 := env.levels[0][0]
	levelA2 := env.levels[0][1]

	// 先完成 A2，再完成 A1：A1 的级联目标是 A2，但 A2 已完成，不得回退
	if _, err := env.progress.MarkCompleted(userID, levelA2.ID); err != nil {
		t.Fatalf("mark A2 completed: %v", err)
	}
	unlocked, err := env.progress.MarkCompleted(userID, levelA1.ID)
	if err != nil {
		t.Fatalf("mark A1 completed: %v", err)
	}
	if len(unlocked) != 0 {
		t.Fatalf("expected no unlocks (successor already completed), got %v", unlocked)
	}
	if got := env.levelStatus(t, userID, levelA2.ID); got != model.ProgressCompleted {
		t.Fatalf("completed level downgraded to %s", got)
	}
}

func TestCompletionAtCourseEnd(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(15)
	lastLevel := env.levels[1][2]

	// 课程最后一关：完成后没有后继，不报错
	unlocked, err := env.progress.MarkCompleted(userID, lastLevel.ID)
	if err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if len(unlocked) != 0 {
		t.Fatalf("expected no unlocks at course end, got %v", unlocked)
	}
	if got := env.levelStatus(t, userID, lastLevel.ID); got != model.ProgressCompleted {
		t.Fatalf("expected completed, got %s", got)
	}
}

func TestResetProgressScopedToCourse(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(16)
	levelA1 := env.levels[0][0]

	env.completeLevel(t, userID, levelA1.ID, correctAnswers())
	if got := env.levelStatus(t, userID, levelA1.ID); got != model.ProgressCompleted {
		t.Fatalf("expected completed before reset, got %s", got)
	}

	if err := env.progress.ResetProgress(userID, env.course.ID); err != nil {
		t.Fatalf("reset progress: %v", err)
	}

	var progressCount, answerCount int64
	if err := env.db.Model(&model.UserProgress{}).Where("user_id = ?", userID).Count(&progressCount).Error; err != nil {
		t.Fatalf("count progress: %v", err)
	}
	if err := env.db.Model(&model.UserAnswer{}).Where("user_id = ?", userID).Count(&answerCount).Error; err != nil {
		t.Fatalf("count answers: %v", err)
	}
	if progressCount != 0 || answerCount != 0 {
		t.Fatalf("expected clean slate, got %d progress rows and %d answers", progressCount, answerCount)
	}

	// 重置后回到默认状态
	if got := env.levelStatus(t, userID, levelA1.ID); got != model.ProgressUnlocked {
		t.Fatalf("expected default unlocked after reset, got %s", got)
	}

	if err := env.progress.ResetProgress(userID, 99999); !errors.Is(err, util.ErrCourseNotFound) {
		t.Fatalf("expected ErrCourseNotFound, got %v", err)
	}
}

func TestResubmissionAfterReset(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(20)
	levelA1 := env.levels[0][0]
	levelA2 := env.levels[0][1]

	env.completeLevel(t, userID, levelA1.ID, correctAnswers())
	if err := env.progress.ResetProgress(userID, env.course.ID); err != nil {
		t.Fatalf("reset progress: %v", err)
	}

	// 重置后重新答题必须能落库，级联照常再次触发
	result := env.completeLevel(t, userID, levelA1.ID, correctAnswers())
	if !result.LevelComplete {
		t.Fatal("expected level complete on replay after reset")
	}
	if len(result.UnlockedLevelIDs) != 1 || result.UnlockedLevelIDs[0] != levelA2.ID {
		t.Fatalf("expected cascade to fire again, got %v", result.UnlockedLevelIDs)
	}

	var answerCount int64
	if err := env.db.Model(&model.UserAnswer{}).Where("user_id = ?", userID).Count(&answerCount).Error; err != nil {
		t.Fatalf("count answers: %v", err)
	}
	if answerCount != int64(len(env.questions[levelA1.ID])) {
		t.Fatalf("expected %d fresh answer rows, got %d", len(env.questions[levelA1.ID]), answerCount)
	}

	// 课程进度枚举也要能重新物化默认状态
	statuses, err := env.progress.GetCourseProgress(userID, env.course.ID)
	if err != nil {
		t.Fatalf("get course progress: %v", err)
	}
	if statuses[levelA1.ID] != model.ProgressCompleted {
		t.Fatalf("expected completed after replay, got %s", statuses[levelA1.ID])
	}
}

func TestResetProgressAllCourses(t *testing.T) {
	env := newTestEnv(t)
	userID := uint(17)
	otherUser := uint(18)
	levelA1 := env.levels[0][0]

	env.completeLevel(t, userID, levelA1.ID, correctAnswers())
	env.completeLevel(t, otherUser, levelA1.ID, correctAnswers())

	// courseID 为 0 清该用户全部进度，不影响其他用户
	if err := env.progress.ResetProgress(userID, 0); err != nil {
		t.Fatalf("reset all: %v", err)
	}

	var count int64
	if err := env.db.Model(&model.UserProgress{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		t.Fatalf("count progress: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no progress rows for reset user, got %d", count)
	}
	if got := env.levelStatus(t, otherUser, levelA1.ID); got != model.ProgressCompleted {
		t.Fatalf("other user's progress must be untouched, got %s", got)
	}
}
