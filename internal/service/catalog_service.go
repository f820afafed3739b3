package service

import (
	"errors"

	"quiz_edu_backend/internal/model"
	"quiz_edu_backend/internal/repository"
	"quiz_edu_backend/internal/util"

	"gorm.io/gorm"
)

// CatalogService 课程目录读取与选课
type CatalogService struct {
	CatalogRepo *repository.CatalogRepository
	UserRepo    *repository.UserRepository
	Progress    *ProgressService
}

func NewCatalogService(catalogRepo *repository.CatalogRepository, userRepo *repository.UserRepository, progress *ProgressService) *CatalogService {
	return &CatalogService{
		CatalogRepo: catalogRepo,
		UserRepo:    userRepo,
		Progress:    progress,
	}
}

func (s *CatalogService) ListCourses() ([]model.Course, error) {
	return s.CatalogRepo.ListCourses()
}

// LevelWithStatus 关卡地图节点
type LevelWithStatus struct {
	model.Level
	Status model.ProgressStatus `json:"status"`
}

// UnitMap 单元及其关卡（带用户进度状态）
type UnitMap struct {
	ID     uint              `json:"id"`
	Name   string            `json:"name"`
	Order  int               `json:"order"`
	Levels []LevelWithStatus `json:"levels"`
}

// CourseMap 课程关卡地图
type CourseMap struct {
	Course model.Course `json:"course"`
	Units  []UnitMap    `json:"units"`
}

// GetCourseMap 课程地图：单元 -> 关卡 -> 当前用户的解锁状态。
// 首次访问时进度默认状态在这里物化（见 ProgressService.GetCourseProgress）。
func (s *CatalogService) GetCourseMap(userID, courseID uint) (*CourseMap, error) {
	course, err := s.CatalogRepo.FindCourseByID(courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}

	units, err := s.CatalogRepo.UnitsWithLevels(courseID)
	if err != nil {
		return nil, err
	}
	statuses, err := s.Progress.GetCourseProgress(userID, courseID)
	if err != nil {
		return nil, err
	}

	courseMap := &CourseMap{Course: *course}
	for _, u := range units {
		um := UnitMap{ID: u.ID, Name: u.Name, Order: u.Order}
		for _, l := range u.Levels {
			um.Levels = append(um.Levels, LevelWithStatus{Level: l, Status: statuses[l.ID]})
		}
		courseMap.Units = append(courseMap.Units, um)
	}
	return courseMap, nil
}

// SelectCourse 按年级/科目/学期选课，并记住这次选择
func (s *CatalogService) SelectCourse(userID uint, grade, subject, term string) (*model.Course, error) {
	course, err := s.CatalogRepo.FindCourseByKey(grade, subject, term)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrCourseNotFound
		}
		return nil, err
	}
	if err := s.UserRepo.UpdateLastSelection(userID, grade, subject+term); err != nil {
		return nil, err
	}
	return course, nil
}
