package models

import (
	"time"
)

type File struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	FileName string `json:"filename" gorm:"type:varchar(255);not null"`
	// 磁盘上的绝对存储路径
	StoredPath string    `json:"stored_path" gorm:"type:varchar(500);not null"`
	UploadedAt time.Time `json:"uploaded_at"`
	// 上传者的用户ID，按原库结构以文本保存，没有外键约束
	UploadedBy string `json:"uploaded_by" gorm:"type:varchar(64);not null;index"`
}
