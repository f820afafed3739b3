package repository

import (
	"quiz_edu_backend/internal/model"

	"gorm.io/gorm"
)

// CatalogRepository 课程目录只读访问：Course -> Unit -> Level
type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

func (r *CatalogRepository) ListCourses() ([]model.Course, error) {
	var courses []model.Course
	err := r.DB.Order("grade, subject, term").Find(&courses).Error
	return courses, err
}

func (r *CatalogRepository) FindCourseByID(id uint) (*model.Course, error) {
	var course model.Course
	if err := r.DB.First(&course, id).Error; err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *CatalogRepository) FindCourseByKey(grade, subject, term string) (*model.Course, error) {
	var course model.Course
	err := r.DB.Where("grade = ? AND subject = ? AND term = ?", grade, subject, term).First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// UnitsWithLevels 课程下的全部单元及关卡，按 order 排序
func (r *CatalogRepository) UnitsWithLevels(courseID uint) ([]model.Unit, error) {
	var units []model.Unit
	err := r.DB.Where("course_id = ?", courseID).
		Order("`order`").
		Preload("Levels", func(db *gorm.DB) *gorm.DB {
			return db.Order("`order`")
		}).
		Find(&units).Error
	return units, err
}

func (r *CatalogRepository) FindUnitByID(id uint) (*model.Unit, error) {
	var unit model.Unit
	if err := r.DB.First(&unit, id).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *CatalogRepository) FindLevelByID(id uint) (*model.Level, error) {
	var level model.Level
	if err := r.DB.First(&level, id).Error; err != nil {
		return nil, err
	}
	return &level, nil
}

// NextLevelInUnit 同单元内 order 紧随其后的关卡，没有则返回 gorm.ErrRecordNotFound
func (r *CatalogRepository) NextLevelInUnit(unitID uint, order int) (*model.Level, error) {
	var level model.Level
	err := r.DB.Where("unit_id = ? AND `order` > ?", unitID, order).
		Order("`order`").
		First(&level).Error
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// NextUnitInCourse 同课程内 order 紧随其后的单元
func (r *CatalogRepository) NextUnitInCourse(courseID uint, order int) (*model.Unit, error) {
	var unit model.Unit
	err := r.DB.Where("course_id = ? AND `order` > ?", courseID, order).
		Order("`order`").
		First(&unit).Error
	if err != nil {
		return nil, err
	}
	return &unit, nil
}

// FirstLevelOfUnit 单元的第一关（order 最小）
func (r *CatalogRepository) FirstLevelOfUnit(unitID uint) (*model.Level, error) {
	var level model.Level
	err := r.DB.Where("unit_id = ?", unitID).
		Order("`order`").
		First(&level).Error
	if err != nil {
		return nil, err
	}
	return &level, nil
}

// LevelIDsOfCourse 课程下全部关卡ID，用于进度重置的范围限定
func (r *CatalogRepository) LevelIDsOfCourse(courseID uint) ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Level{}).
		Joins("JOIN units ON units.id = levels.unit_id").
		Where("units.course_id = ?", courseID).
		Pluck("levels.id", &ids).Error
	return ids, err
}
