package main

import (
	"log"

	"gorm.io/gorm"

	"tutorhub-backend/models"
)

// seed loads sample tutors into an empty registry, for development only.
func seed(db *gorm.DB) {
	var count int64
	if err := db.Model(&models.Bookable{}).Count(&count).Error; err != nil || count > 0 {
		return
	}

	bookables := []models.Bookable{
		{Name: "陳志豪", Title: "資深講師", Specialty: "數位行銷、社群經營、品牌策略",
			Bio: "10年業界經驗，曾任知名企業行銷總監", HourlyRate: 1500, Capacity: 1, IsActive: true},
		{Name: "林美慧", Title: "專業顧問", Specialty: "職涯規劃、履歷優化、面試技巧",
			Bio: "人資背景，協助超過500位求職者成功轉職", HourlyRate: 1200, Capacity: 1, IsActive: true},
		{Name: "王俊傑", Title: "技術專家", Specialty: "Python、資料分析、機器學習",
			Bio: "科技業資深工程師，豐富教學經驗", HourlyRate: 1800, Capacity: 1, IsActive: true},
		{Name: "張雅婷", Title: "語言教師", Specialty: "英語教學、多益、商業英文",
			Bio: "英國留學歸國，TESOL認證教師", HourlyRate: 1000, Capacity: 1, IsActive: true},
	}
	for i := range bookables {
		if err := db.Create(&bookables[i]).Error; err != nil {
			log.Printf("Failed to seed bookable %s: %v", bookables[i].Name, err)
		}
	}
	log.Println("Seeded sample tutors")
}
