package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/jlaine/spo-go/internal/sharepoint"
)

// downloadParallelism bounds concurrent file downloads for `get -r`.
// Downloads are plain GETs, which never touch the client's digest cache.
const downloadParallelism = 4

func newLsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls <folder-path>",
		Short: "List files and folders",
		Args:  cobra.ExactArgs(1),
		RunE:  runLs,
	}
}

func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <remote-path> [local-path]",
		Short: "Download a file, or a folder's files with --recursive",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  runGet,
	}

	cmd.Flags().BoolP("recursive", "r", false, "download all files in a folder")

	return cmd
}

func newPutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "put <local-path> <remote-folder>",
		Short: "Upload a file into a folder",
		Args:  cobra.ExactArgs(2),
		RunE:  runPut,
	}
}

func newRmCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rm <remote-path>",
		Short: "Delete a file or folder",
		Long: `Delete a file or folder by server-relative path.

Folder deletion is recursive — all contents are deleted.
Use --recursive (-r) to confirm intent when deleting folders.`,
		Args: cobra.ExactArgs(1),
		RunE: runRm,
	}

	cmd.Flags().BoolP("recursive", "r", false, "confirm recursive folder deletion")

	return cmd
}

func newMkdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <parent-folder> <name>",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(2),
		RunE:  runMkdir,
	}
}

func newMvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mv <remote-path> <new-remote-path>",
		Short: "Move or rename a file",
		Args:  cobra.ExactArgs(2),
		RunE:  runMv,
	}

	cmd.Flags().Bool("overwrite", false, "replace an existing file at the destination")

	return cmd
}

func newCpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cp <remote-path> <new-remote-path>",
		Short: "Copy a file",
		Args:  cobra.ExactArgs(2),
		RunE:  runCp,
	}

	cmd.Flags().Bool("overwrite", false, "replace an existing file at the destination")

	return cmd
}

// cleanRemotePath normalizes a server-relative path to a single leading
// slash and no trailing slash.
func cleanRemotePath(path string) string {
	return "/" + strings.Trim(path, "/")
}

// lsEntry is one row of ls output.
type lsEntry struct {
	name     string
	path     string
	size     int64
	isFolder bool
	modified time.Time
}

// lsJSONEntry is the JSON output schema for a single entry in ls output.
type lsJSONEntry struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Size     int64  `json:"size"`
	IsFolder bool   `json:"is_folder"`
	Modified string `json:"modified"`
}

func runLs(cmd *cobra.Command, args []string) error {
	logger := buildLogger()
	ctx := cmd.Context()
	remotePath := cleanRemotePath(args[0])

	site, err := siteClient(logger)
	if err != nil {
		return err
	}

	folder, err := site.FolderByPath(ctx, remotePath)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", remotePath, err)
	}

	subs, err := folder.Folders(ctx, nil)
	if err != nil {
		return fmt.Errorf("listing folders of %q: %w", remotePath, err)
	}

	files, err := folder.Files(ctx, nil)
	if err != nil {
		return fmt.Errorf("listing files of %q: %w", remotePath, err)
	}

	entries := make([]lsEntry, 0, len(subs)+len(files))

	for _, f := range subs {
		entries = append(entries, lsEntry{
			name:     f.Name,
			path:     f.ServerRelativeURL,
			isFolder: true,
			modified: f.TimeLastModified,
		})
	}

	for _, f := range files {
		entries = append(entries, lsEntry{
			name:     f.Name,
			path:     f.ServerRelativeURL,
			size:     f.Length,
			modified: f.TimeLastModified,
		})
	}

	// Folders first, then alphabetical.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].isFolder != entries[j].isFolder {
			return entries[i].isFolder
		}

		return entries[i].name < entries[j].name
	})

	if flagJSON {
		out := make([]lsJSONEntry, 0, len(entries))
		for _, e := range entries {
			out = append(out, lsJSONEntry{
				Name:     e.name,
				Path:     e.path,
				Size:     e.size,
				IsFolder: e.isFolder,
				Modified: e.modified.Format("2006-01-02T15:04:05Z"),
			})
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")

		return enc.Encode(out)
	}

	headers := []string{"NAME", "SIZE", "MODIFIED"}
	rows := make([][]string, 0, len(entries))

	for _, e := range entries {
		name := e.name
		size := formatSize(e.size)

		if e.isFolder {
			name += "/"
			size = "-"
		}

		rows = append(rows, []string{name, size, formatTime(e.modified)})
	}

	printTable(os.Stdout, headers, rows)

	return nil
}

func runGet(cmd *cobra.Command, args []string) error {
	logger := buildLogger()
	ctx := shutdownContext(cmd.Context(), logger)
	remotePath := cleanRemotePath(args[0])

	recursive, err := cmd.Flags().GetBool("recursive")
	if err != nil {
		return err
	}

	site, err := siteClient(logger)
	if err != nil {
		return err
	}

	if recursive {
		localDir := "."
		if len(args) > 1 {
			localDir = args[1]
		}

		return downloadFolder(ctx, site, remotePath, localDir, logger)
	}

	file, err := site.FileByPath(ctx, remotePath)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", remotePath, err)
	}

	localPath := file.Name
	if len(args) > 1 {
		localPath = args[1]
	}

	content, err := file.Download(ctx)
	if err != nil {
		return fmt.Errorf("downloading %q: %w", remotePath, err)
	}

	if err := os.WriteFile(localPath, content, 0o644); err != nil { //nolint:mnd // standard file perms
		return fmt.Errorf("writing %q: %w", localPath, err)
	}

	logger.Debug("download complete", "local_path", localPath, "bytes", len(content))
	statusf("Downloaded %s (%s)\n", localPath, formatSize(int64(len(content))))

	return nil
}

// downloadFolder downloads every file directly inside a folder, a few at a
// time. Only GETs run concurrently; the shared client's mutable digest
// cache is never touched.
func downloadFolder(ctx context.Context, site *sharepoint.Site, remotePath, localDir string, logger *slog.Logger) error {
	folder, err := site.FolderByPath(ctx, remotePath)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", remotePath, err)
	}

	files, err := folder.Files(ctx, nil)
	if err != nil {
		return fmt.Errorf("listing files of %q: %w", remotePath, err)
	}

	if err := os.MkdirAll(localDir, 0o755); err != nil { //nolint:mnd // standard dir perms
		return fmt.Errorf("creating %q: %w", localDir, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(downloadParallelism)

	for _, file := range files {
		file := file
		g.Go(func() error {
			content, dlErr := file.Download(gctx)
			if dlErr != nil {
				return fmt.Errorf("downloading %q: %w", file.Name, dlErr)
			}

			localPath := filepath.Join(localDir, file.Name)
			if wrErr := os.WriteFile(localPath, content, 0o644); wrErr != nil { //nolint:mnd // standard file perms
				return fmt.Errorf("writing %q: %w", localPath, wrErr)
			}

			logger.Debug("download complete", "local_path", localPath, "bytes", len(content))

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}

	statusf("Downloaded %d files to %s\n", len(files), localDir)

	return nil
}

func runPut(cmd *cobra.Command, args []string) error {
	logger := buildLogger()
	ctx := shutdownContext(cmd.Context(), logger)
	localPath := args[0]
	remoteFolder := cleanRemotePath(args[1])

	fi, err := os.Stat(localPath)
	if err != nil {
		return fmt.Errorf("stating local file: %w", err)
	}

	if fi.IsDir() {
		return fmt.Errorf("%q is a directory, not a file", localPath)
	}

	content, err := os.ReadFile(localPath)
	if err != nil {
		return fmt.Errorf("reading %q: %w", localPath, err)
	}

	site, err := siteClient(logger)
	if err != nil {
		return err
	}

	folder, err := site.FolderByPath(ctx, remoteFolder)
	if err != nil {
		return fmt.Errorf("resolving folder %q: %w", remoteFolder, err)
	}

	file, err := folder.AddFile(ctx, filepath.Base(localPath), content)
	if err != nil {
		return fmt.Errorf("uploading %q: %w", localPath, err)
	}

	logger.Debug("upload complete", "remote_path", file.ServerRelativeURL, "bytes", len(content))
	statusf("Uploaded %s (%s)\n", file.ServerRelativeURL, formatSize(int64(len(content))))

	return nil
}

func runRm(cmd *cobra.Command, args []string) error {
	logger := buildLogger()
	ctx := cmd.Context()
	remotePath := cleanRemotePath(args[0])

	site, err := siteClient(logger)
	if err != nil {
		return err
	}

	// Try the path as a file first; fall back to a folder.
	file, err := site.FileByPath(ctx, remotePath)
	if err == nil {
		if delErr := file.Delete(ctx); delErr != nil {
			return fmt.Errorf("deleting %q: %w", remotePath, delErr)
		}

		logger.Debug("delete complete", "path", remotePath)
		statusf("Deleted %s\n", remotePath)

		return nil
	}

	folder, folderErr := site.FolderByPath(ctx, remotePath)
	if folderErr != nil {
		return fmt.Errorf("resolving %q: %w", remotePath, err)
	}

	recursive, err := cmd.Flags().GetBool("recursive")
	if err != nil {
		return err
	}

	if !recursive {
		return fmt.Errorf("cannot delete folder %q without --recursive (-r) flag", remotePath)
	}

	if err := folder.Delete(ctx); err != nil {
		return fmt.Errorf("deleting %q: %w", remotePath, err)
	}

	logger.Debug("delete complete", "path", remotePath)
	statusf("Deleted %s\n", remotePath)

	return nil
}

func runMkdir(cmd *cobra.Command, args []string) error {
	logger := buildLogger()
	ctx := cmd.Context()
	parentPath := cleanRemotePath(args[0])
	name := args[1]

	site, err := siteClient(logger)
	if err != nil {
		return err
	}

	parent, err := site.FolderByPath(ctx, parentPath)
	if err != nil {
		return fmt.Errorf("resolving parent %q: %w", parentPath, err)
	}

	folder, err := parent.AddFolder(ctx, name)
	if err != nil {
		return fmt.Errorf("creating folder %q: %w", name, err)
	}

	logger.Debug("mkdir complete", "path", folder.ServerRelativeURL)
	statusf("Created %s\n", folder.ServerRelativeURL)

	return nil
}

func runMv(cmd *cobra.Command, args []string) error {
	logger := buildLogger()
	ctx := cmd.Context()
	remotePath := cleanRemotePath(args[0])
	newPath := cleanRemotePath(args[1])

	overwrite, err := cmd.Flags().GetBool("overwrite")
	if err != nil {
		return err
	}

	site, err := siteClient(logger)
	if err != nil {
		return err
	}

	file, err := site.FileByPath(ctx, remotePath)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", remotePath, err)
	}

	if err := file.MoveTo(ctx, newPath, overwrite); err != nil {
		return fmt.Errorf("moving %q: %w", remotePath, err)
	}

	logger.Debug("move complete", "from", remotePath, "to", newPath)
	statusf("Moved %s -> %s\n", remotePath, newPath)

	return nil
}

func runCp(cmd *cobra.Command, args []string) error {
	logger := buildLogger()
	ctx := cmd.Context()
	remotePath := cleanRemotePath(args[0])
	newPath := cleanRemotePath(args[1])

	overwrite, err := cmd.Flags().GetBool("overwrite")
	if err != nil {
		return err
	}

	site, err := siteClient(logger)
	if err != nil {
		return err
	}

	file, err := site.FileByPath(ctx, remotePath)
	if err != nil {
		return fmt.Errorf("resolving %q: %w", remotePath, err)
	}

	copied, err := file.CopyTo(ctx, newPath, overwrite)
	if err != nil {
		return fmt.Errorf("copying %q: %w", remotePath, err)
	}

	logger.Debug("copy complete", "from", remotePath, "to", copied.ServerRelativeURL)
	statusf("Copied %s -> %s\n", remotePath, copied.ServerRelativeURL)

	return nil
}
