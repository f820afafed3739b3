package model

// swagger:model Course
type Course struct {
	BaseModel
	Grade   string `gorm:"size:20;not null;uniqueIndex:idx_course_key" json:"grade"`
	Subject string `gorm:"size:20;not null;uniqueIndex:idx_course_key" json:"subject"`
	Term    string `gorm:"size:20;not null;uniqueIndex:idx_course_key" json:"term"`

	Units []Unit `gorm:"foreignKey:CourseID" json:"units,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// swagger:model Unit
type Unit struct {
	BaseModel
	CourseID uint   `gorm:"index;type:bigint unsigned;not null" json:"courseId"`
	Name     string `gorm:"size:50;not null" json:"name"`
	Order    int    `gorm:"not null" json:"order"`

	Levels []Level `gorm:"foreignKey:UnitID" json:"levels,omitempty"`
}

func (Unit) TableName() string {
	return "units"
}
