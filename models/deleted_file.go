package models

import (
	"time"
)

// DeletedFile 软删除台账。文件被删除时写入一条记录，
// 可选地携带删除时刻的完整文件内容，供管理员事后恢复。
// 记录只增不删，恢复操作只翻转 Recovered 标志
type DeletedFile struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	FileName     string    `json:"filename" gorm:"type:varchar(255);not null"`
	OriginalPath string    `json:"original_path" gorm:"type:varchar(500)"`
	DeletedAt    time.Time `json:"deleted_at"`
	// 文件系统标签（xfs、btrfs 等），删除时未知则为 NULL
	Filesystem *string `json:"filesystem,omitempty" gorm:"type:varchar(32)"`
	// 删除时读取的完整文件内容，读取失败时为 NULL
	RecoveryBlob []byte `json:"-" gorm:"type:blob"`
	Recovered    bool   `json:"recovered" gorm:"default:false"`
	// blob 镜像到 S3 后的对象键（未启用镜像时为空）
	S3Key string `json:"s3_key,omitempty" gorm:"type:varchar(500)"`
}
