package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"filevault-manager/config"
	"filevault-manager/database"
	"filevault-manager/middleware"
	"filevault-manager/models"
	"filevault-manager/services"
)

var (
	carver     *services.FileCarver
	blobMirror *services.BlobMirror
)

// InitRecoveryHandlers 注入签名扫描器与可选的 S3 blob 镜像
func InitRecoveryHandlers(fc *services.FileCarver, mirror *services.BlobMirror) {
	carver = fc
	blobMirror = mirror
}

// AdminLoginPage 管理员登录页
func AdminLoginPage(c *gin.Context) {
	render(c, http.StatusOK, "admin_login.html", nil)
}

// AdminLogin 管理员登录。共享口令，不关联任何用户账号
func AdminLogin(c *gin.Context) {
	pwd := c.PostForm("password")
	if pwd != config.GetConfig().AdminPassword {
		render(c, http.StatusOK, "admin_login.html", gin.H{
			"Flash": &FlashMessage{Message: "Bad password", Category: "danger"},
		})
		return
	}

	tokenString, err := issueToken(jwt.MapClaims{"role": "admin"})
	if err != nil {
		render(c, http.StatusOK, "admin_login.html", gin.H{
			"Flash": &FlashMessage{Message: "Failed to create session", Category: "danger"},
		})
		return
	}

	c.SetCookie(middleware.AdminCookie, tokenString,
		int(sessionTTL.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, "/admin")
}

// AdminDashboard 删除台账列表与统计信息
func AdminDashboard(c *gin.Context) {
	renderDashboard(c, nil)
}

// DeleteRecover 触发一轮签名扫描，然后重绘仪表板。
// 扫描与软删除台账互不关联，只是尽力而为的目录清扫
func DeleteRecover(c *gin.Context) {
	var flash *FlashMessage
	if carver != nil {
		count := carver.RecoverDeletedFiles(config.GetConfig().UploadDir, nil)
		flash = &FlashMessage{
			Message:  fmt.Sprintf("Signature scan finished, %d files copied to recovery directory", count),
			Category: "info",
		}
	}
	renderDashboard(c, flash)
}

// AdminFiles 系统内全部文件记录
func AdminFiles(c *gin.Context) {
	var files []models.File
	database.DB.Find(&files)
	render(c, http.StatusOK, "manage_files.html", gin.H{"Files": files})
}

// AdminUsers 全部用户（含密码哈希）
func AdminUsers(c *gin.Context) {
	var users []models.User
	database.DB.Find(&users)
	render(c, http.StatusOK, "manage_users.html", gin.H{"Users": users})
}

// AdminRecover 恢复一条台账记录。
// 有 blob 时标记 recovered 并以附件返回原始字节；
// 无 blob 时只构造文件系统级恢复的建议命令，从不执行
func AdminRecover(c *gin.Context) {
	id := c.Param("id")

	var entry models.DeletedFile
	if err := database.DB.First(&entry, id).Error; err != nil {
		setFlash(c, "Deleted entry not found", "warning")
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	if len(entry.RecoveryBlob) > 0 {
		// 只有 blob 恢复路径会翻转 recovered 标志，重复恢复返回相同字节
		database.DB.Model(&entry).Update("recovered", true)
		c.Header("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", entry.FileName))
		c.Data(http.StatusOK, "application/octet-stream", entry.RecoveryBlob)
		return
	}

	device := c.PostForm("device")
	if device == "" {
		device = "/dev/sdX"
	}
	fsHint := c.PostForm("filesystem")
	if fsHint == "" {
		fsHint = "xfs"
	}

	var advice services.RecoveryAdvice
	if fsHint == "btrfs" {
		advice = services.AttemptBtrfsRestore(device, nil, entry.FileName)
	} else {
		advice = services.AttemptXfsRecover(device, entry.FileName)
	}

	render(c, http.StatusOK, "recovery_result.html", gin.H{
		"Result":  advice,
		"EntryID": entry.ID,
	})
}

// renderDashboard 渲染管理员仪表板。flash 非空时直接随页面显示
func renderDashboard(c *gin.Context, flash *FlashMessage) {
	var deleted []models.DeletedFile
	database.DB.Order("deleted_at desc").Find(&deleted)

	data := gin.H{
		"Deleted": deleted,
		"Stats":   dashboardStats(),
	}
	if flash != nil {
		data["Flash"] = flash
	}
	render(c, http.StatusOK, "admin_dashboard.html", data)
}

// dashboardStats 仪表板统计信息
func dashboardStats() map[string]int64 {
	stats := make(map[string]int64)

	var userCount int64
	database.DB.Model(&models.User{}).Count(&userCount)
	stats["total_users"] = userCount

	var fileCount int64
	database.DB.Model(&models.File{}).Count(&fileCount)
	stats["total_files"] = fileCount

	var deletedCount int64
	database.DB.Model(&models.DeletedFile{}).Count(&deletedCount)
	stats["total_deleted"] = deletedCount

	var recoveredCount int64
	database.DB.Model(&models.DeletedFile{}).Where("recovered = ?", true).Count(&recoveredCount)
	stats["recovered_entries"] = recoveredCount

	return stats
}
