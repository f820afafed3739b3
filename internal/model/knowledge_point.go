package model

// swagger:model KnowledgePoint
type KnowledgePoint struct {
	BaseModel
	Name        string `gorm:"size:100;not null" json:"name"`
	Category    string `gorm:"size:50" json:"category"` // 类别，如"汉字"、"阅读"、"写作"
	Description string `gorm:"type:text" json:"description"`
}

func (KnowledgePoint) TableName() string {
	return "knowledge_points"
}

// KnowledgePointStat 关卡结算时按知识点聚合的正确率
// swagger:model KnowledgePointStat
type KnowledgePointStat struct {
	Name     string  `json:"name"`
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}
