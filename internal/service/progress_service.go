package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"quiz_edu_backend/internal/model"
	"quiz_edu_backend/internal/repository"
	"quiz_edu_backend/internal/util"
	"quiz_edu_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProgressService 是用户关卡进度的唯一写入方。
// 状态机：locked -> unlocked -> completed，已完成的关卡永不回退。
type ProgressService struct {
	CatalogRepo  *repository.CatalogRepository
	ProgressRepo *repository.ProgressRepository
	DB           *gorm.DB
	Redis        *redis.Client // 可为 nil（测试或未配置时直接走库）
	CacheTTL     time.Duration
}

func NewProgressService(catalogRepo *repository.CatalogRepository, progressRepo *repository.ProgressRepository, db *gorm.DB, rdb *redis.Client, cacheTTL time.Duration) *ProgressService {
	return &ProgressService{
		CatalogRepo:  catalogRepo,
		ProgressRepo: progressRepo,
		DB:           db,
		Redis:        rdb,
		CacheTTL:     cacheTTL,
	}
}

// MarkCompleted 将关卡标记为已完成并级联解锁后续关卡。
// 正常提交流程走 MarkCompletedTx（由答题事务调用）；此入口供
// 管理端/测试种子数据直接置状态使用，独立开启事务。
func (s *ProgressService) MarkCompleted(userID, levelID uint) ([]uint, error) {
	var unlocked []uint
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var err error
		unlocked, err = s.MarkCompletedTx(tx, userID, levelID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.invalidateByLevel(userID, levelID)
	return unlocked, nil
}

// MarkCompletedTx 在调用方事务内执行完成标记与解锁级联，
// 两者要么一起生效、要么一起回滚。返回本次新解锁的关卡ID。
// 并发时先锁进度行，第一个拿到锁并发现状态未完成的提交负责级联，
// 其余提交看到 completed 直接返回，保证级联恰好触发一次。
func (s *ProgressService) MarkCompletedTx(tx *gorm.DB, userID, levelID uint) ([]uint, error) {
	// 目录读取也走事务连接，级联全程在同一序列化边界内
	catalog := repository.NewCatalogRepository(tx)

	level, err := catalog.FindLevelByID(levelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLevelNotFound
		}
		return nil, err
	}

	var progress model.UserProgress
	err = tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND level_id = ?", userID, levelID).
		First(&progress).Error
	switch {
	case err == nil:
		if progress.Status == model.ProgressCompleted {
			return nil, nil
		}
		progress.Status = model.ProgressCompleted
		if err := tx.Save(&progress).Error; err != nil {
			return nil, err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		progress = model.UserProgress{UserID: userID, LevelID: levelID, Status: model.ProgressCompleted}
		if err := tx.Create(&progress).Error; err != nil {
			if isDuplicateKey(err) {
				return nil, util.ErrConflict
			}
			return nil, err
		}
	default:
		return nil, err
	}

	successor, err := s.successorLevel(catalog, level)
	if err != nil {
		return nil, err
	}
	if successor == nil {
		// 课程最后一关，没有可解锁的后继
		return nil, nil
	}

	unlocked, err := s.unlockTx(tx, userID, successor.ID)
	if err != nil {
		return nil, err
	}
	if !unlocked {
		return nil, nil
	}
	return []uint{successor.ID}, nil
}

// successorLevel 级联目标：同单元下一关，单元末关则取下一单元第一关。
// catalog 必须与级联写入共用同一事务连接。
func (s *ProgressService) successorLevel(catalog *repository.CatalogRepository, level *model.Level) (*model.Level, error) {
	next, err := catalog.NextLevelInUnit(level.UnitID, level.Order)
	if err == nil {
		return next, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	unit, err := catalog.FindUnitByID(level.UnitID)
	if err != nil {
		return nil, err
	}
	nextUnit, err := catalog.NextUnitInCourse(unit.CourseID, unit.Order)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	first, err := catalog.FirstLevelOfUnit(nextUnit.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return first, nil
}

// unlockTx 将关卡置为 unlocked。已完成的关卡保持 completed，绝不降级。
func (s *ProgressService) unlockTx(tx *gorm.DB, userID, levelID uint) (bool, error) {
	var progress model.UserProgress
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND level_id = ?", userID, levelID).
		First(&progress).Error
	switch {
	case err == nil:
		if progress.Status == model.ProgressCompleted || progress.Status == model.ProgressUnlocked {
			return false, nil
		}
		progress.Status = model.ProgressUnlocked
		return true, tx.Save(&progress).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		progress = model.UserProgress{UserID: userID, LevelID: levelID, Status: model.ProgressUnlocked}
		if err := tx.Create(&progress).Error; err != nil {
			if isDuplicateKey(err) {
				return false, util.ErrConflict
			}
			return false, err
		}
		return true, nil
	default:
		return false, err
	}
}

// GetLevelProgress 单关状态。没有记录时按默认规则推导，不落库。
func (s *ProgressService) GetLevelProgress(userID, levelID uint) (model.ProgressStatus, error) {
	progress, err := s.ProgressRepo.Find(userID, levelID)
	if err == nil {
		return progress.Status, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}
	level, err := s.CatalogRepo.FindLevelByID(levelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", util.ErrLevelNotFound
		}
		return "", err
	}
	return level.DefaultStatus(), nil
}

// GetCourseProgress 课程下全部关卡的状态表。第一次枚举时为没有记录的
// 关卡落默认状态（单元第一关和期中期末默认解锁，其余锁定）。
// 默认状态的物化只发生在这里，与完成级联无关。
func (s *ProgressService) GetCourseProgress(userID, courseID uint) (map[uint]model.ProgressStatus, error) {
	if cached, ok := s.cacheGet(userID, courseID); ok {
		return cached, nil
	}

	units, err := s.CatalogRepo.UnitsWithLevels(courseID)
	if err != nil {
		return nil, err
	}
	if len(units) == 0 {
		if _, err := s.CatalogRepo.FindCourseByID(courseID); errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return map[uint]model.ProgressStatus{}, nil
	}

	var levelIDs []uint
	levels := make(map[uint]model.Level)
	for _, u := range units {
		for _, l := range u.Levels {
			levelIDs = append(levelIDs, l.ID)
			levels[l.ID] = l
		}
	}

	existing, err := s.ProgressRepo.MapByLevels(userID, levelIDs)
	if err != nil {
		return nil, err
	}

	result := make(map[uint]model.ProgressStatus, len(levelIDs))
	var missing []model.UserProgress
	for _, id := range levelIDs {
		if p, ok := existing[id]; ok {
			result[id] = p.Status
			continue
		}
		level := levels[id]
		status := level.DefaultStatus()
		result[id] = status
		missing = append(missing, model.UserProgress{UserID: userID, LevelID: id, Status: status})
	}

	if len(missing) > 0 {
		err := s.DB.Transaction(func(tx *gorm.DB) error {
			for i := range missing {
				if err := tx.Create(&missing[i]).Error; err != nil {
					// 并发物化撞上唯一索引：对方已写入同样的默认值，忽略
					if isDuplicateKey(err) {
						continue
					}
					return err
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	s.cacheSet(userID, courseID, result)
	return result, nil
}

// ResetProgress 管理/测试用：清空用户进度与答题记录。
// courseID > 0 时只清该课程，为 0 时清全部。
func (s *ProgressService) ResetProgress(userID, courseID uint) error {
	var levelIDs []uint
	if courseID > 0 {
		var err error
		levelIDs, err = s.CatalogRepo.LevelIDsOfCourse(courseID)
		if err != nil {
			return err
		}
		if len(levelIDs) == 0 {
			if _, err := s.CatalogRepo.FindCourseByID(courseID); errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrCourseNotFound
			}
			return nil
		}
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		// 物理删除。软删除的墓碑行会占住 (user, level) / (user, question)
		// 唯一索引，重置后的重新提交会一直撞 duplicate key
		progressQuery := tx.Unscoped().Where("user_id = ?", userID)
		answerQuery := tx.Unscoped().Where("user_id = ?", userID)
		if courseID > 0 {
			progressQuery = progressQuery.Where("level_id IN ?", levelIDs)
			answerQuery = answerQuery.Where("question_id IN (?)",
				tx.Model(&model.Question{}).Select("id").Where("level_id IN ?", levelIDs))
		}
		if err := progressQuery.Delete(&model.UserProgress{}).Error; err != nil {
			return err
		}
		return answerQuery.Delete(&model.UserAnswer{}).Error
	})
	if err != nil {
		return err
	}

	s.invalidateCourse(userID, courseID)
	return nil
}

// InvalidateForLevel 答题写入后让所在课程的进度缓存失效
func (s *ProgressService) InvalidateForLevel(userID, levelID uint) {
	s.invalidateByLevel(userID, levelID)
}

func (s *ProgressService) invalidateByLevel(userID, levelID uint) {
	if s.Redis == nil {
		return
	}
	level, err := s.CatalogRepo.FindLevelByID(levelID)
	if err != nil {
		return
	}
	unit, err := s.CatalogRepo.FindUnitByID(level.UnitID)
	if err != nil {
		return
	}
	s.invalidateCourse(userID, unit.CourseID)
}

func (s *ProgressService) invalidateCourse(userID, courseID uint) {
	if s.Redis == nil {
		return
	}
	ctx := context.Background()
	if courseID > 0 {
		s.Redis.Del(ctx, progressCacheKey(userID, courseID))
		return
	}
	// 全量重置：按用户前缀清理
	pattern := fmt.Sprintf("progress:user:%d:course:*", userID)
	keys, err := s.Redis.Keys(ctx, pattern).Result()
	if err != nil || len(keys) == 0 {
		return
	}
	s.Redis.Del(ctx, keys...)
}

func (s *ProgressService) cacheGet(userID, courseID uint) (map[uint]model.ProgressStatus, bool) {
	if s.Redis == nil {
		return nil, false
	}
	raw, err := s.Redis.Get(context.Background(), progressCacheKey(userID, courseID)).Result()
	if err != nil {
		return nil, false
	}
	var result map[uint]model.ProgressStatus
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, false
	}
	return result, true
}

func (s *ProgressService) cacheSet(userID, courseID uint, statuses map[uint]model.ProgressStatus) {
	if s.Redis == nil {
		return
	}
	raw, err := json.Marshal(statuses)
	if err != nil {
		return
	}
	if err := s.Redis.Set(context.Background(), progressCacheKey(userID, courseID), raw, s.CacheTTL).Err(); err != nil {
		logger.Log.Warn("progress cache set failed", zap.Error(err))
	}
}

func progressCacheKey(userID, courseID uint) string {
	return fmt.Sprintf("progress:user:%d:course:%d", userID, courseID)
}

// isDuplicateKey 识别唯一索引冲突（MySQL 与测试用的 SQLite 报法不同）
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") || strings.Contains(msg, "UNIQUE constraint failed")
}
