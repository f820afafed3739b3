package model

import "time"

type UserRole string

const (
	Student UserRole = "student"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Username   string    `gorm:"size:80;unique;not null" json:"username"`
	Password   string    `gorm:"size:120;not null" json:"-"`
	Role       UserRole  `gorm:"type:varchar(20);default:'student'" json:"role"`
	LastGrade  string    `gorm:"size:20" json:"lastGrade"`  // 上次选择的年级
	LastCourse string    `gorm:"size:40" json:"lastCourse"` // 上次选择的课程（科目+学期）
	LastLogin  time.Time `gorm:"autoCreateTime" json:"lastLogin"`
}

func (User) TableName() string {
	return "users"
}
