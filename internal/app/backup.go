package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/pflag"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/xxxsen/retrolib/internal/config"
	"github.com/xxxsen/retrolib/internal/constant"
	"github.com/xxxsen/retrolib/internal/model"
	"github.com/xxxsen/retrolib/internal/storage"
)

const backupContentType = "text/plain; charset=utf-8"

func storageClient(ctx context.Context, cfg *config.Config) (storage.Client, error) {
	if store := storage.DefaultClient(); store != nil {
		return store, nil
	}
	if err := cfg.S3.Validate(); err != nil {
		return nil, err
	}
	store, err := storage.NewS3Client(ctx, cfg.S3)
	if err != nil {
		return nil, err
	}
	storage.SetDefaultClient(store)
	return store, nil
}

func isCustomCollectionFile(name string) bool {
	return strings.HasPrefix(name, constant.CustomCollectionPrefix) &&
		strings.HasSuffix(name, constant.CustomCollectionSuffix) &&
		len(name) > len(constant.CustomCollectionPrefix)+len(constant.CustomCollectionSuffix)
}

// backupFiles lists the custom collection files and the settings file that exist.
func backupFiles(cfg *config.Config) ([]string, error) {
	entries, err := os.ReadDir(cfg.CollectionsDir)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read collections dir %s: %w", cfg.CollectionsDir, err)
	}
	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() && isCustomCollectionFile(e.Name()) {
			files = append(files, filepath.Join(cfg.CollectionsDir, e.Name()))
		}
	}
	sort.Strings(files)
	if _, err := os.Stat(cfg.SettingsFile); err == nil {
		files = append(files, cfg.SettingsFile)
	}
	return files, nil
}

// BackupCollectionsCommand uploads custom collections and settings to S3.
type BackupCollectionsCommand struct {
	store storage.Client
	cfg   *config.Config
}

func NewBackupCollectionsCommand() *BackupCollectionsCommand { return &BackupCollectionsCommand{} }

func (c *BackupCollectionsCommand) Name() string { return "backup-collections" }

func (c *BackupCollectionsCommand) Desc() string {
	return "将自定义合集与设置文件备份到 S3"
}

func (c *BackupCollectionsCommand) Init(f *pflag.FlagSet) {}

func (c *BackupCollectionsCommand) PreRun(ctx context.Context) error {
	c.cfg = config.Default()
	if c.cfg == nil {
		return errors.New("config not loaded")
	}
	store, err := storageClient(ctx, c.cfg)
	if err != nil {
		return err
	}
	c.store = store
	return nil
}

func (c *BackupCollectionsCommand) Run(ctx context.Context) error {
	logger := logutil.GetLogger(ctx)
	files, err := backupFiles(c.cfg)
	if err != nil {
		return err
	}
	report := model.TransferReport{Bucket: c.cfg.S3.Bucket, Prefix: c.cfg.S3.Prefix, Files: []string{}}
	for _, file := range files {
		key := storage.ObjectKey(c.cfg.S3.Prefix, filepath.Base(file))
		if err := c.store.UploadFile(ctx, key, file, backupContentType); err != nil {
			return err
		}
		logger.Debug("backup file uploaded", zap.String("file", file), zap.String("key", key))
		report.Files = append(report.Files, key)
	}
	logger.Info("collections backed up", zap.Int("files", len(report.Files)))
	return printJSON(report)
}

func (c *BackupCollectionsCommand) PostRun(ctx context.Context) error { return nil }

// RestoreCollectionsCommand downloads custom collections and settings from S3.
type RestoreCollectionsCommand struct {
	store storage.Client
	cfg   *config.Config
}

func NewRestoreCollectionsCommand() *RestoreCollectionsCommand {
	return &RestoreCollectionsCommand{}
}

func (c *RestoreCollectionsCommand) Name() string { return "restore-collections" }

func (c *RestoreCollectionsCommand) Desc() string {
	return "从 S3 恢复自定义合集与设置文件(覆盖本地同名文件)"
}

func (c *RestoreCollectionsCommand) Init(f *pflag.FlagSet) {}

func (c *RestoreCollectionsCommand) PreRun(ctx context.Context) error {
	c.cfg = config.Default()
	if c.cfg == nil {
		return errors.New("config not loaded")
	}
	store, err := storageClient(ctx, c.cfg)
	if err != nil {
		return err
	}
	c.store = store
	return nil
}

func (c *RestoreCollectionsCommand) Run(ctx context.Context) error {
	logger := logutil.GetLogger(ctx)
	prefix := strings.Trim(c.cfg.S3.Prefix, "/")
	if prefix != "" {
		prefix += "/"
	}
	keys, err := c.store.ListKeys(ctx, prefix)
	if err != nil {
		return err
	}
	settingsName := filepath.Base(c.cfg.SettingsFile)
	report := model.TransferReport{Bucket: c.cfg.S3.Bucket, Prefix: c.cfg.S3.Prefix, Files: []string{}}
	for _, key := range keys {
		rel := strings.TrimPrefix(key, prefix)
		if strings.Contains(rel, "/") {
			continue
		}
		var dest string
		switch name := path.Base(key); {
		case isCustomCollectionFile(name):
			dest = filepath.Join(c.cfg.CollectionsDir, name)
		case name == settingsName:
			dest = c.cfg.SettingsFile
		default:
			continue
		}
		if err := c.store.DownloadToFile(ctx, key, dest); err != nil {
			return err
		}
		logger.Debug("backup file restored", zap.String("key", key), zap.String("file", dest))
		report.Files = append(report.Files, dest)
	}
	logger.Info("collections restored", zap.Int("files", len(report.Files)))
	return printJSON(report)
}

func (c *RestoreCollectionsCommand) PostRun(ctx context.Context) error { return nil }

func init() {
	RegisterRunner("backup-collections", func() IRunner { return NewBackupCollectionsCommand() })
	RegisterRunner("restore-collections", func() IRunner { return NewRestoreCollectionsCommand() })
}
