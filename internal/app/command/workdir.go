package command

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const (
	workingDirFlag = "working-dir"
)

func AddWorkDirFlag(cmd *cobra.Command) {
	cwd, _ := os.Getwd()

	cmd.PersistentFlags().StringP(workingDirFlag, "w", cwd, "directory relative paths are resolved against")
}

func GetWorkingDir(cmd *cobra.Command) (string, error) {
	baseDir, err := cmd.Flags().GetString(workingDirFlag)
	if err != nil {
		return "", fmt.Errorf("get working-dir flag: %w", err)
	}
	return baseDir, nil
}

// ResolvePath makes p absolute, treating relative paths as relative to workDir.
func ResolvePath(workDir string, p string) (string, error) {
	if !filepath.IsAbs(p) {
		p = filepath.Join(workDir, p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", p, err)
	}
	return abs, nil
}
