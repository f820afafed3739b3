package database

import (
	"fmt"
	"log"

	"quiz_edu_backend/internal/config"
	"quiz_edu_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, appCfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	logMode := logger.Warn
	if appCfg.Server.Mode == "debug" {
		logMode = logger.Info
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if appCfg.ForceMigrate || appCfg.Server.Mode != "release" {
		if err := Migrate(db); err != nil {
			return nil, err
		}
		log.Println("Database migration completed")
	}

	if appCfg.SeedCatalog {
		if err := SeedSampleCatalog(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// Migrate 建表，测试环境（SQLite）复用同一份迁移
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Unit{},
		&model.Level{},
		&model.Question{},
		&model.KnowledgePoint{},
		&model.UserAnswer{},
		&model.UserProgress{},
	)
}

// SeedSampleCatalog 写入示例课程（三年级语文上册）与配套题库。
// 课程表非空时跳过，可重复执行。
func SeedSampleCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Transaction(func(tx *gorm.DB) error {
		course := &model.Course{Grade: "三年级", Subject: "语文", Term: "上册"}
		if err := tx.Create(course).Error; err != nil {
			return err
		}

		units := []struct {
			Name   string
			Levels []model.Level
		}{
			{
				Name: "学校生活",
				Levels: []model.Level{
					{Title: "大青树下的小学", ContentRef: "第1课"},
					{Title: "花的学校", ContentRef: "第2课"},
					{Title: "不懂就要问", ContentRef: "第3课"},
					{Title: "单元挑战", IsBoss: true},
				},
			},
			{
				Name: "金秋时节",
				Levels: []model.Level{
					{Title: "古诗三首", ContentRef: "第4课"},
					{Title: "铺满金色巴掌的水泥道", ContentRef: "第5课"},
					{Title: "秋天的雨", ContentRef: "第6课"},
					{Title: "听听，秋的声音", ContentRef: "第7课"},
					{Title: "单元挑战", IsBoss: true},
				},
			},
			{
				Name: "童话王国",
				Levels: []model.Level{
					{Title: "去年的树", ContentRef: "第8课"},
					{Title: "那一定会很好", ContentRef: "第9课"},
					{Title: "在牛肚子里旅行", ContentRef: "第10课"},
					{Title: "单元挑战", IsBoss: true},
				},
			},
			{
				Name: "期中综合",
				Levels: []model.Level{
					{Title: "期中挑战", IsMidterm: true},
				},
			},
		}

		for unitIdx, u := range units {
			unit := &model.Unit{CourseID: course.ID, Name: u.Name, Order: unitIdx + 1}
			if err := tx.Create(unit).Error; err != nil {
				return err
			}
			for i := range u.Levels {
				u.Levels[i].UnitID = unit.ID
				u.Levels[i].Order = i + 1
				if err := tx.Create(&u.Levels[i]).Error; err != nil {
					return err
				}
			}
		}

		return seedSampleQuestions(tx, course.ID)
	})
}

// seedSampleQuestions 给第一单元前两关配示例题目，覆盖四种题型
func seedSampleQuestions(tx *gorm.DB, courseID uint) error {
	kpHanzi := &model.KnowledgePoint{Name: "词语积累", Category: "基础"}
	kpReading := &model.KnowledgePoint{Name: "课文理解", Category: "阅读"}
	for _, kp := range []*model.KnowledgePoint{kpHanzi, kpReading} {
		if err := tx.Create(kp).Error; err != nil {
			return err
		}
	}

	var firstUnit model.Unit
	if err := tx.Where("course_id = ? AND `order` = 1", courseID).First(&firstUnit).Error; err != nil {
		return err
	}
	var levels []model.Level
	if err := tx.Where("unit_id = ? AND `order` <= 2", firstUnit.ID).Order("`order`").Find(&levels).Error; err != nil {
		return err
	}

	for _, level := range levels {
		questions := []model.Question{
			{
				LevelID:       level.ID,
				QuestionType:  model.QuestionMultipleChoice,
				Content:       "下列哪些词语出自课文《" + level.Title + "》？",
				Options:       `[{"id":1,"text":"绒球花"},{"id":2,"text":"太阳花"},{"id":3,"text":"凤尾竹"},{"id":4,"text":"仙人掌"}]`,
				CorrectAnswer: `[1,3]`,
				Score:         2,
				Order:         1,
				Explanation:   "绒球花和凤尾竹都是课文中出现的植物。",
			},
			{
				LevelID:       level.ID,
				QuestionType:  model.QuestionTrueFalse,
				Content:       "《" + level.Title + "》描写的是学校生活。",
				CorrectAnswer: `true`,
				Score:         1,
				Order:         2,
			},
			{
				LevelID:       level.ID,
				QuestionType:  model.QuestionFillBlank,
				Content:       "鸟儿的歌声十分____。",
				CorrectAnswer: `["婉转"]`,
				BlanksCount:   1,
				Score:         2,
				Order:         3,
			},
			{
				LevelID:       level.ID,
				QuestionType:  model.QuestionMatching,
				Content:       "请将词语与对应的类别连线。",
				CorrectAnswer: `[{"left":"绒球花","right":"植物"},{"left":"铜钟","right":"器物"}]`,
				Score:         2,
				Order:         4,
			},
		}
		for i := range questions {
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&questions[0]).Association("KnowledgePoints").Append(kpHanzi); err != nil {
			return err
		}
		if err := tx.Model(&questions[2]).Association("KnowledgePoints").Append(kpReading); err != nil {
			return err
		}
	}
	return nil
}
