package services

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"
)

// CommandTimeout 外部命令执行的固定超时
const CommandTimeout = 30 * time.Second

// CommandResult 外部命令的结构化执行结果
type CommandResult struct {
	RC     int    `json:"rc"`
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

// RecoveryAdvice 针对无 blob 台账记录的恢复建议。
// 命令只构造不执行，由运维人员在目标主机上手工运行
type RecoveryAdvice struct {
	SuggestedCmd string `json:"suggested_cmd"`
	OutDir       string `json:"outdir"`
	Note         string `json:"note"`
}

// RunCommand 执行外部命令，固定超时。
// 任何失败（解析错误、超时、非零退出）都转换为结构化结果，
// 不向调用方传播错误。Web 层从不调用它
func RunCommand(cmd string) CommandResult {
	words, err := shellquote.Split(cmd)
	if err != nil || len(words) == 0 {
		return CommandResult{RC: -1, Stderr: fmt.Sprintf("invalid command: %v", err)}
	}

	ctx, cancel := context.WithTimeout(context.Background(), CommandTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	command := exec.CommandContext(ctx, words[0], words[1:]...)
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		rc := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			rc = exitErr.ExitCode()
		}
		errOut := stderr.String()
		if errOut == "" {
			errOut = err.Error()
		}
		return CommandResult{RC: rc, Stdout: stdout.String(), Stderr: errOut}
	}

	return CommandResult{RC: 0, Stdout: stdout.String(), Stderr: stderr.String()}
}

// AttemptXfsRecover 构造 xfs_undelete 建议命令。
// pattern 会被 shell 转义后内插，device 和输出目录原样内插
func AttemptXfsRecover(device, pattern string) RecoveryAdvice {
	outdir := makeOutDir("xfs_recover_")
	return RecoveryAdvice{
		SuggestedCmd: fmt.Sprintf("xfs_undelete -d %s -o %s -p %s",
			device, outdir, shellquote.Join(pattern)),
		OutDir: outdir,
		Note:   "Run the suggested command as root on the host where the block device is available. This wrapper did not execute it.",
	}
}

// AttemptBtrfsRestore 构造 btrfs restore 建议命令。
// subvol 暂未使用，保留参数位。pattern 只用于提示运维在输出目录中检索
func AttemptBtrfsRestore(device string, subvol *string, pattern string) RecoveryAdvice {
	outdir := makeOutDir("btrfs_recover_")
	return RecoveryAdvice{
		SuggestedCmd: fmt.Sprintf("btrfs restore -v %s %s",
			shellquote.Join(device), outdir),
		OutDir: outdir,
		Note:   "Inspect recovered files in outdir; search for filename pattern. Run as root on the host.",
	}
}

// makeOutDir 在系统临时目录下创建新的恢复输出目录。
// 创建失败时退回到一个带 uuid 的路径，保证建议命令仍然可读
func makeOutDir(prefix string) string {
	outdir, err := os.MkdirTemp("", prefix)
	if err != nil {
		outdir = filepath.Join(os.TempDir(), prefix+uuid.New().String())
	}
	return outdir
}
