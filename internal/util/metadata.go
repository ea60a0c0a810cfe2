package util

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/nakachan-ing/jmt-cli/internal/store"
	"github.com/rs/zerolog"
)

const metadataName = "metadata.json"

// Metadata maps storage keys to their last change time (RFC3339).
type Metadata map[string]string

// GenerateMetadata stamps every key present in the backend.
func GenerateMetadata(backend store.Backend, keys []string) (Metadata, error) {
	metadata := Metadata{}
	stamper, ok := backend.(store.Stamper)
	if !ok {
		return nil, fmt.Errorf("❌ Backend %T cannot report change times", backend)
	}
	for _, key := range keys {
		t, exists, err := stamper.ModTime(key)
		if err != nil {
			return nil, fmt.Errorf("❌ Failed to stat %s: %w", key, err)
		}
		if exists {
			metadata[key] = t.UTC().Format(time.RFC3339)
		}
	}
	return metadata, nil
}

// DetectChanges lists the keys to transfer. With source "s3" a key is
// pulled when it is missing locally or newer remotely; with "local" it is
// pushed when missing remotely or newer locally. One second of slack
// absorbs timestamp truncation.
func DetectChanges(localMeta, remoteMeta Metadata, source string) []string {
	var keys []string

	for key, remoteTimeStr := range remoteMeta {
		localTimeStr, exists := localMeta[key]
		if !exists {
			if source == "s3" {
				keys = append(keys, key)
			}
			continue
		}

		remoteTime, err := time.Parse(time.RFC3339, remoteTimeStr)
		if err != nil {
			continue
		}
		localTime, err := time.Parse(time.RFC3339, localTimeStr)
		if err != nil {
			continue
		}

		if source == "s3" && remoteTime.After(localTime.Add(1*time.Second)) {
			keys = append(keys, key)
		}
		if source == "local" && localTime.After(remoteTime.Add(1*time.Second)) {
			keys = append(keys, key)
		}
	}

	if source == "local" {
		for key := range localMeta {
			if _, exists := remoteMeta[key]; !exists {
				keys = append(keys, key)
			}
		}
	}

	sort.Strings(keys)
	return keys
}

// Syncer mirrors storage keys to an S3 prefix. Whole values are copied;
// the newer side wins.
type Syncer struct {
	Client  S3API
	Backend store.Backend
	Bucket  string
	Prefix  string
	Log     zerolog.Logger
}

func (s *Syncer) metadataKey() string {
	return ObjectKey(s.Prefix, "metadata")
}

func (s *Syncer) RemoteMetadata(ctx context.Context) (Metadata, error) {
	raw, ok, err := DownloadFromS3(ctx, s.Client, s.Bucket, s.metadataKey())
	if err != nil {
		return nil, err
	}
	if !ok {
		s.Log.Debug().Str("key", s.metadataKey()).Msg("no remote metadata, treating bucket as empty")
		return Metadata{}, nil
	}
	var metadata Metadata
	if err := json.Unmarshal([]byte(raw), &metadata); err != nil {
		return nil, fmt.Errorf("❌ Failed to parse remote %s: %w", metadataName, err)
	}
	if metadata == nil {
		metadata = Metadata{}
	}
	return metadata, nil
}

func (s *Syncer) uploadMetadata(ctx context.Context, metadata Metadata) error {
	data, err := json.MarshalIndent(metadata, "", "  ")
	if err != nil {
		return fmt.Errorf("❌ Failed to marshal %s: %w", metadataName, err)
	}
	return UploadToS3(ctx, s.Client, s.Bucket, s.metadataKey(), string(data))
}

// Push uploads keys that are newer locally and returns them.
func (s *Syncer) Push(ctx context.Context, keys []string) ([]string, error) {
	local, err := GenerateMetadata(s.Backend, keys)
	if err != nil {
		return nil, err
	}
	remote, err := s.RemoteMetadata(ctx)
	if err != nil {
		return nil, err
	}

	changed := DetectChanges(local, remote, "local")
	for _, key := range changed {
		value, ok, err := s.Backend.Get(key)
		if err != nil {
			return nil, fmt.Errorf("❌ Failed to read %s: %w", key, err)
		}
		if !ok {
			continue
		}
		if err := UploadToS3(ctx, s.Client, s.Bucket, ObjectKey(s.Prefix, key), value); err != nil {
			return nil, err
		}
		remote[key] = local[key]
		s.Log.Info().Str("key", key).Msg("pushed")
	}

	if len(changed) > 0 {
		if err := s.uploadMetadata(ctx, remote); err != nil {
			return nil, err
		}
	}
	return changed, nil
}

// Pull downloads keys that are newer remotely and returns them.
func (s *Syncer) Pull(ctx context.Context, keys []string) ([]string, error) {
	local, err := GenerateMetadata(s.Backend, keys)
	if err != nil {
		return nil, err
	}
	remote, err := s.RemoteMetadata(ctx)
	if err != nil {
		return nil, err
	}

	var pulled []string
	for _, key := range DetectChanges(local, onlyKeys(remote, keys), "s3") {
		value, ok, err := DownloadFromS3(ctx, s.Client, s.Bucket, ObjectKey(s.Prefix, key))
		if err != nil {
			return pulled, err
		}
		if !ok {
			s.Log.Warn().Str("key", key).Msg("listed in remote metadata but missing, skipped")
			continue
		}
		if err := s.Backend.Set(key, value); err != nil {
			return pulled, fmt.Errorf("❌ Failed to store %s: %w", key, err)
		}
		pulled = append(pulled, key)
		s.Log.Info().Str("key", key).Msg("pulled")
	}
	return pulled, nil
}

// Status reports what a push and a pull would transfer.
func (s *Syncer) Status(ctx context.Context, keys []string) (push, pull []string, err error) {
	local, err := GenerateMetadata(s.Backend, keys)
	if err != nil {
		return nil, nil, err
	}
	remote, err := s.RemoteMetadata(ctx)
	if err != nil {
		return nil, nil, err
	}
	remote = onlyKeys(remote, keys)
	return DetectChanges(local, remote, "local"), DetectChanges(local, remote, "s3"), nil
}

func onlyKeys(metadata Metadata, keys []string) Metadata {
	out := Metadata{}
	for _, key := range keys {
		if v, ok := metadata[key]; ok {
			out[key] = v
		}
	}
	return out
}
