package config

import (
	"testing"
)

// resetConfig 清除单例，让 GetConfig 重新读取环境变量
func resetConfig() {
	config = nil
}

func TestGetConfigDefaults(t *testing.T) {
	resetConfig()
	t.Cleanup(resetConfig)

	cfg := GetConfig()

	if cfg.ServerPort != "3001" {
		t.Errorf("ServerPort = %q, 预期 3001", cfg.ServerPort)
	}
	if cfg.AdminPassword != "admin123" {
		t.Errorf("AdminPassword = %q, 预期 admin123", cfg.AdminPassword)
	}
	if cfg.AllowedExtensions != nil {
		t.Errorf("AllowedExtensions = %v, 默认应为空（允许所有）", cfg.AllowedExtensions)
	}
}

func TestGetConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "8080")
	t.Setenv("ALLOWED_EXTENSIONS", "jpg, .PNG ,pdf")
	resetConfig()
	t.Cleanup(resetConfig)

	cfg := GetConfig()

	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, 预期 8080", cfg.ServerPort)
	}
	want := []string{"jpg", "png", "pdf"}
	if len(cfg.AllowedExtensions) != len(want) {
		t.Fatalf("AllowedExtensions = %v", cfg.AllowedExtensions)
	}
	for i, ext := range want {
		if cfg.AllowedExtensions[i] != ext {
			t.Errorf("AllowedExtensions[%d] = %q, 预期 %q", i, cfg.AllowedExtensions[i], ext)
		}
	}
}

func TestIsAllowedFile(t *testing.T) {
	tests := []struct {
		name     string
		allowed  []string
		filename string
		want     bool
	}{
		{"空列表允许所有", nil, "anything.exe", true},
		{"空列表允许无扩展名", nil, "README", true},
		{"扩展名命中", []string{"jpg", "png"}, "photo.jpg", true},
		{"扩展名大小写不敏感", []string{"jpg"}, "PHOTO.JPG", true},
		{"扩展名未命中", []string{"jpg"}, "doc.pdf", false},
		{"没有扩展名被拒绝", []string{"jpg"}, "noext", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{AllowedExtensions: tt.allowed}
			if got := cfg.IsAllowedFile(tt.filename); got != tt.want {
				t.Errorf("IsAllowedFile(%q) = %v, 预期 %v", tt.filename, got, tt.want)
			}
		})
	}
}

func TestStorageConfigValidate(t *testing.T) {
	local := &StorageConfig{Type: "local"}
	if err := local.Validate(); err != nil {
		t.Errorf("local 模式不应校验失败: %v", err)
	}
	if local.IsS3Enabled() {
		t.Error("local 模式不应启用 S3")
	}

	s3 := &StorageConfig{Type: "s3"}
	if err := s3.Validate(); err == nil {
		t.Error("缺少凭据的 s3 配置应校验失败")
	}

	full := &StorageConfig{
		Type:        "s3",
		S3AccessKey: "ak",
		S3SecretKey: "sk",
		S3Bucket:    "bucket",
	}
	if err := full.Validate(); err != nil {
		t.Errorf("完整 s3 配置不应校验失败: %v", err)
	}
	if !full.IsS3Enabled() {
		t.Error("s3 模式应启用镜像")
	}
}
