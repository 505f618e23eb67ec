package handlers

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"filevault-manager/config"
	"filevault-manager/database"
	"filevault-manager/models"
)

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// sanitizeFilename 清洗上传文件名：去掉路径部分，空格转下划线，
// 去除其余不安全字符，防止路径穿越
func sanitizeFilename(name string) string {
	if idx := strings.LastIndexAny(name, `/\`); idx >= 0 {
		name = name[idx+1:]
	}
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	return strings.Trim(name, "._")
}

// Index 当前用户的文件列表，最新上传在前
func Index(c *gin.Context) {
	userID := c.GetString("user_id")

	var files []models.File
	database.DB.Where("uploaded_by = ?", userID).
		Order("uploaded_at desc").
		Find(&files)

	render(c, http.StatusOK, "index.html", gin.H{
		"Files":    files,
		"Username": c.GetString("username"),
	})
}

// Upload 上传文件
func Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		setFlash(c, "No file part", "warning")
		c.Redirect(http.StatusFound, "/index")
		return
	}

	cfg := config.GetConfig()
	filename := sanitizeFilename(fileHeader.Filename)
	if filename == "" {
		setFlash(c, "No selected file", "warning")
		c.Redirect(http.StatusFound, "/index")
		return
	}
	if !cfg.IsAllowedFile(filename) {
		setFlash(c, "File type not allowed", "warning")
		c.Redirect(http.StatusFound, "/index")
		return
	}

	if err := os.MkdirAll(cfg.UploadDir, 0755); err != nil {
		setFlash(c, "Upload failed", "danger")
		c.Redirect(http.StatusFound, "/index")
		return
	}

	// 同名文件直接覆盖，不做冲突检测
	savePath := filepath.Join(cfg.UploadDir, filename)
	if err := c.SaveUploadedFile(fileHeader, savePath); err != nil {
		setFlash(c, "Upload failed", "danger")
		c.Redirect(http.StatusFound, "/index")
		return
	}

	record := models.File{
		FileName:   filename,
		StoredPath: savePath,
		UploadedAt: time.Now().UTC(),
		UploadedBy: c.GetString("user_id"),
	}
	if err := database.DB.Create(&record).Error; err != nil {
		setFlash(c, "Failed to save file info", "danger")
		c.Redirect(http.StatusFound, "/index")
		return
	}

	setFlash(c, "Uploaded", "success")
	c.Redirect(http.StatusFound, "/index")
}

// Delete 删除文件。删除前把文件内容写入软删除台账，
// 台账写入与登记表删除放在同一事务，避免两表不同步
func Delete(c *gin.Context) {
	id := c.Param("id")

	var file models.File
	if err := database.DB.First(&file, id).Error; err != nil {
		setFlash(c, "File not found", "warning")
		c.Redirect(http.StatusFound, "/index")
		return
	}

	// 只有上传者本人可以删除
	if file.UploadedBy != c.GetString("user_id") {
		setFlash(c, "Not allowed", "danger")
		c.Redirect(http.StatusFound, "/index")
		return
	}

	// 尽力读取文件内容。读不到就记 NULL blob，不阻塞删除
	blob, err := os.ReadFile(file.StoredPath)
	if err != nil {
		blob = nil
	}

	entry := models.DeletedFile{
		FileName:     file.FileName,
		OriginalPath: file.StoredPath,
		DeletedAt:    time.Now().UTC(),
		RecoveryBlob: blob,
	}
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&entry).Error; err != nil {
			return err
		}
		return tx.Delete(&models.File{}, file.ID).Error
	})
	if err != nil {
		setFlash(c, "Delete failed", "danger")
		c.Redirect(http.StatusFound, "/index")
		return
	}

	// 物理删除尽力而为，失败忽略
	os.Remove(file.StoredPath)

	// 可选的 S3 镜像，同样尽力而为
	if blobMirror != nil && len(entry.RecoveryBlob) > 0 {
		if key, err := blobMirror.MirrorBlob(c.Request.Context(), &entry); err != nil {
			log.Printf("Blob mirror failed for entry %d: %v", entry.ID, err)
		} else if key != "" {
			database.DB.Model(&entry).Update("s3_key", key)
		}
	}

	setFlash(c, "File deleted and stored in deleted_files for admin recovery", "info")
	c.Redirect(http.StatusFound, "/index")
}
