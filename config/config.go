package config

import (
	"log"
	"os"
	"strings"
)

type Config struct {
	ServerPort    string
	SecretKey     string
	AdminPassword string
	DBPath        string
	UploadDir     string
	RecoveryDir   string
	// 允许上传的扩展名（小写、不带点）。为空表示允许所有扩展名
	AllowedExtensions []string
}

var config *Config

// GetConfig 获取配置
func GetConfig() *Config {
	if config == nil {
		config = &Config{
			ServerPort:    getEnv("SERVER_PORT", "3001"),
			SecretKey:     getEnv("SECRET_KEY", "replace-this-with-a-secret-key"),
			AdminPassword: getEnv("ADMIN_PASSWORD", "admin123"), // 生产环境务必修改
			// 使用绝对路径，方便 Docker 挂载
			DBPath:            getEnv("DB_PATH", "/app/data/files.db"),
			UploadDir:         getEnv("UPLOAD_DIR", "/app/data/uploads"),
			RecoveryDir:       getEnv("RECOVERY_DIR", "./recovered_files"),
			AllowedExtensions: parseExtensions(os.Getenv("ALLOWED_EXTENSIONS")),
		}

		// 打印配置信息（敏感信息不输出）
		log.Printf("Config loaded - ServerPort: %s, DBPath: %s, UploadDir: %s",
			config.ServerPort, config.DBPath, config.UploadDir)
	}
	return config
}

// IsAllowedFile 检查文件扩展名是否在允许列表内。
// 列表为空时允许所有文件（默认行为）
func (c *Config) IsAllowedFile(filename string) bool {
	if len(c.AllowedExtensions) == 0 {
		return true
	}
	idx := strings.LastIndex(filename, ".")
	if idx < 0 {
		return false
	}
	ext := strings.ToLower(filename[idx+1:])
	for _, allowed := range c.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// parseExtensions 解析逗号分隔的扩展名列表，如 "jpg,png,pdf"
func parseExtensions(raw string) []string {
	if raw == "" {
		return nil
	}
	var exts []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(part, ".")))
		if part != "" {
			exts = append(exts, part)
		}
	}
	return exts
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
