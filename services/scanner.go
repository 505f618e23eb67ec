package services

import (
	"bytes"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// fileSignature 签名表条目。Valid 为 nil 时仅按扩展名匹配即视为有效
type fileSignature struct {
	Start []byte
	End   []byte
	Valid func(content []byte) bool
}

// fileSignatures 已知文件类型的签名表。
// 表驱动设计，新增类型只需要加一个表项，不需要改扫描逻辑
var fileSignatures = map[string]fileSignature{
	"jpg": {
		Start: []byte{0xFF, 0xD8, 0xFF},
		End:   []byte{0xFF, 0xD9},
		Valid: func(content []byte) bool {
			return bytes.HasPrefix(content, []byte{0xFF, 0xD8, 0xFF}) &&
				bytes.HasSuffix(content, []byte{0xFF, 0xD9})
		},
	},
	"png": {
		Start: []byte("\x89PNG\r\n\x1a\n"),
		End:   []byte("IEND\xaeB`\x82"),
		Valid: func(content []byte) bool {
			return bytes.HasPrefix(content, []byte("\x89PNG")) &&
				bytes.Contains(content, []byte("IEND"))
		},
	},
	"pdf": {
		Start: []byte("%PDF-"),
		End:   []byte("%%EOF"),
		Valid: func(content []byte) bool {
			return bytes.Contains(content, []byte("%PDF")) &&
				bytes.Contains(content, []byte("%%EOF"))
		},
	},
	"doc": {Start: []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}},
	"zip": {Start: []byte("PK\x03\x04")},
	"gif": {Start: []byte("GIF8")},
	"mp3": {Start: []byte("ID3")},
	"mp4": {Start: []byte("\x00\x00\x00\x18ftyp")},
}

// DefaultFileTypes 默认扫描的文件类型
var DefaultFileTypes = []string{"jpg", "png", "pdf", "doc", "zip"}

// tempPatterns 临时文件名模式（vim 交换文件、编辑器备份等）
var tempPatterns = []string{"*.tmp", "*.temp", "~*.*", ".*.swp"}

// FileCarver 本地文件系统签名扫描器。
// 扫描固定位置中扩展名匹配的文件，校验魔数后复制到恢复目录。
// 这是尽力而为的演示性扫描，与软删除台账互不关联，
// 不保证复制出来的文件对应任何真正被删除的数据
type FileCarver struct {
	recoveryDir string
	// 扫描位置。默认为系统临时目录、当前目录和用户主目录
	scanLocations []string
}

// NewFileCarver 创建扫描器，recoveryDir 为恢复文件的存放目录。
// scanLocations 不指定时默认扫描系统临时目录、当前目录和用户主目录
func NewFileCarver(recoveryDir string, scanLocations ...string) *FileCarver {
	if len(scanLocations) == 0 {
		scanLocations = []string{os.TempDir(), "."}
		if home, err := os.UserHomeDir(); err == nil {
			scanLocations = append(scanLocations, home)
		}
	}
	return &FileCarver{
		recoveryDir:   recoveryDir,
		scanLocations: scanLocations,
	}
}

// RecoverDeletedFiles 执行一轮扫描。
// fileTypes 为空时使用默认类型集。返回复制到恢复目录的文件总数。
// 单个文件的错误一律跳过，顶层失败记日志并返回 0
func (fc *FileCarver) RecoverDeletedFiles(targetFolder string, fileTypes []string) int {
	if len(fileTypes) == 0 {
		fileTypes = DefaultFileTypes
	}

	log.Printf("Starting recovery scan, target: %s, types: %s",
		targetFolder, strings.Join(fileTypes, ","))

	if err := os.MkdirAll(fc.recoveryDir, 0755); err != nil {
		log.Printf("Recovery failed: %v", err)
		return 0
	}

	recovered := 0
	for _, fileType := range fileTypes {
		if _, ok := fileSignatures[fileType]; ok {
			recovered += fc.scanForFileType(fileType)
		}
	}
	recovered += fc.recoverTempFiles(targetFolder)

	log.Printf("Total files recovered: %d", recovered)
	return recovered
}

// scanForFileType 在固定扫描位置中寻找指定类型的文件
func (fc *FileCarver) scanForFileType(fileType string) int {
	sig := fileSignatures[fileType]
	suffix := "." + fileType
	count := 0

	for _, location := range fc.scanLocations {
		filepath.WalkDir(location, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // 无权限等错误直接跳过
			}
			if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), suffix) {
				return nil
			}

			content, err := os.ReadFile(path)
			if err != nil {
				return nil
			}
			if sig.Valid != nil && !sig.Valid(content) {
				return nil
			}

			dest := filepath.Join(fc.recoveryDir,
				fmt.Sprintf("recovered_%d_%s", count, d.Name()))
			if err := copyPreserve(path, dest); err != nil {
				return nil
			}
			log.Printf("Recovered: %s", dest)
			count++
			return nil
		})
	}
	return count
}

// recoverTempFiles 在目标目录中寻找临时文件名模式并复制
func (fc *FileCarver) recoverTempFiles(targetFolder string) int {
	count := 0
	filepath.WalkDir(targetFolder, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		for _, pattern := range tempPatterns {
			if matched, _ := filepath.Match(pattern, d.Name()); matched {
				dest := filepath.Join(fc.recoveryDir,
					fmt.Sprintf("temp_recovered_%d_%s", count, d.Name()))
				if err := copyPreserve(path, dest); err == nil {
					log.Printf("Recovered temp file: %s", dest)
					count++
				}
				break
			}
		}
		return nil
	})
	return count
}

// copyPreserve 复制文件并保留权限与修改时间
func copyPreserve(src, dest string) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dest, content, info.Mode().Perm()); err != nil {
		return err
	}
	return os.Chtimes(dest, info.ModTime(), info.ModTime())
}
