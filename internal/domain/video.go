package domain

import "context"

// ClipAsset is the provider-side result of cutting a clip from a recording.
type ClipAsset struct {
	AssetID    string
	PlaybackID string
}

// VideoPlatform is the hosted live-video API: RTMP ingest provisioning and
// clip creation against recorded assets.
type VideoPlatform interface {
	CreateLiveStream(ctx context.Context) (*IngestSession, error)
	CreateClip(ctx context.Context, assetID string, startSeconds, endSeconds float64) (*ClipAsset, error)
}
