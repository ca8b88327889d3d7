package packcmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/acronis/go-stacktrace"
	"github.com/spf13/cobra"
	"github.com/zeldaos/drivepack/internal/app/command"
	"github.com/zeldaos/drivepack/internal/app/config"
	"github.com/zeldaos/drivepack/pkg/archiver/drivewriter"
	"github.com/zeldaos/drivepack/pkg/filesys"
	"github.com/zeldaos/drivepack/pkg/packer"
)

func New(ctx context.Context) *cobra.Command {
	defaults := config.Default()
	symlinks := defaults.Symlinks

	cmd := &cobra.Command{
		Use:   "pack",
		Short: "pack a directory tree into a drive image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			workDir, err := command.GetWorkingDir(cmd)
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			cfgFile, err := command.GetConfigFile(cmd)
			if err != nil {
				return fmt.Errorf("get config file: %w", err)
			}
			if cfgFile != "" {
				if cfgFile, err = command.ResolvePath(workDir, cfgFile); err != nil {
					return err
				}
			}
			cfg, err := config.Load(cmd.Flags(), cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			return command.WrapError("pack", execute(ctx, workDir, cfg))
		},
	}

	cmd.Flags().StringP(config.KeyRoot, "r", defaults.Root, "directory to pack")
	cmd.Flags().StringP(config.KeyOutput, "o", defaults.Output, "drive image to write")
	cmd.Flags().Var(&symlinks, config.KeySymlinks, "symbolic link handling: "+fmt.Sprint(packer.ListSymlinkPolicies))
	cmd.Flags().StringSliceP(config.KeyExclude, "x", nil, "glob of paths or names to leave out (repeatable)")
	cmd.Flags().Bool(config.KeyStaging, defaults.Staging, "pack a snapshot copy of the root")
	cmd.Flags().Bool(config.KeyChecksum, defaults.Checksum, "log xxh3 digests of the image and the packed files")
	return cmd
}

func execute(ctx context.Context, workDir string, cfg *config.Config) error {
	root, err := command.ResolvePath(workDir, cfg.Root)
	if err != nil {
		return err
	}
	output, err := command.ResolvePath(workDir, cfg.Output)
	if err != nil {
		return err
	}

	slog.Info("Packing directory", slog.String("root", root), slog.String("output", output))

	var writerOpts []drivewriter.Option
	if cfg.Symlinks == packer.SymlinkFollow {
		writerOpts = append(writerOpts, drivewriter.WithFollowSymlinks())
	}

	pkr, err := packer.New(
		packer.WithArchiver(drivewriter.New(writerOpts...)),
		packer.WithSymlinkPolicy(cfg.Symlinks),
		packer.WithExcludePatterns(cfg.Exclude...),
		packer.WithStaging(cfg.Staging),
	)
	if err != nil {
		return fmt.Errorf("create packer: %w", err)
	}

	res, err := pkr.Pack(ctx, root, output)
	if err != nil {
		return stacktrace.NewWrapped("pack directory", err,
			stacktrace.WithInfo("root", root),
			stacktrace.WithInfo("output", output))
	}

	slog.Info("Packing has been completed",
		slog.String("filename", res.Destination),
		slog.Int("files", len(res.Files)),
		slog.Int64("bytes", res.Bytes),
		slog.Int("skipped", res.Skipped))

	if cfg.Checksum {
		sum, err := filesys.ComputeFileChecksum(res.Destination)
		if err != nil {
			return fmt.Errorf("checksum drive image: %w", err)
		}
		tree, err := filesys.ComputeTreeHash(root, res.Files)
		if err != nil {
			return fmt.Errorf("hash packed files: %w", err)
		}
		slog.Info("Checksums", slog.String("image", sum), slog.String("files", tree))
	}

	return nil
}
