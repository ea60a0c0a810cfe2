package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/nakachan-ing/jmt-cli/internal/util"
)

func newSyncer(a *app) (*util.Syncer, error) {
	if !a.config.Sync.Enable || a.config.Sync.Bucket == "" {
		return nil, fmt.Errorf("❌ Sync is disabled: set sync.enable and sync.bucket first")
	}
	s3Client, err := util.NewS3Client(a.config)
	if err != nil {
		return nil, fmt.Errorf("❌ Failed to initialize S3 client: %w", err)
	}
	return &util.Syncer{
		Client:  s3Client,
		Backend: a.backend,
		Bucket:  a.config.Sync.Bucket,
		Prefix:  a.config.Sync.Prefix,
		Log:     a.log,
	}, nil
}

// SyncWithS3 pushes or pulls the persisted task list.
func SyncWithS3(ctx context.Context, a *app, direction string) error {
	syncer, err := newSyncer(a)
	if err != nil {
		return err
	}
	keys := []string{a.tasks.Key()}

	var changed []string
	switch direction {
	case "push":
		log.Println("🔄 Uploading changed keys to S3...")
		changed, err = syncer.Push(ctx, keys)
	case "pull":
		log.Println("🔄 Downloading changed keys from S3...")
		changed, err = syncer.Pull(ctx, keys)
	default:
		return fmt.Errorf("❌ Unknown sync direction: %s", direction)
	}
	if err != nil {
		return err
	}

	if len(changed) == 0 {
		log.Println("✅ No changes detected. Everything is up-to-date.")
		return nil
	}
	for _, key := range changed {
		log.Println("   -", key)
	}
	return nil
}

// ShowSyncStatus lists what push and pull would transfer.
func ShowSyncStatus(ctx context.Context, a *app) error {
	syncer, err := newSyncer(a)
	if err != nil {
		return err
	}

	push, pull, err := syncer.Status(ctx, []string{a.tasks.Key()})
	if err != nil {
		return err
	}

	log.Println("📌 Keys to be uploaded to S3:")
	for _, key := range push {
		log.Println("   -", key)
	}
	log.Println("📌 Keys to be updated from S3:")
	for _, key := range pull {
		log.Println("   -", key)
	}
	return nil
}
