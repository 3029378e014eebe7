package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/aspectd/aspectd/internal/classifier"
	"github.com/aspectd/aspectd/internal/domain"
	"github.com/aspectd/aspectd/internal/resolver"
	"github.com/aspectd/aspectd/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Fakes
// =============================================================================

// fakeStorage implements storage.Storage with canned responses.
type fakeStorage struct {
	body      []byte
	info      storage.ObjectInfo
	getErr    error
	headErr   error
	getCalls  int
	headCalls int
}

func (f *fakeStorage) Get(ctx context.Context, bucket, key string) (io.ReadCloser, storage.ObjectInfo, error) {
	f.getCalls++
	if f.getErr != nil {
		return nil, storage.ObjectInfo{}, f.getErr
	}
	return io.NopCloser(bytes.NewReader(f.body)), f.info, nil
}

func (f *fakeStorage) Head(ctx context.Context, bucket, key string) (storage.ObjectInfo, error) {
	f.headCalls++
	if f.headErr != nil {
		return storage.ObjectInfo{}, f.headErr
	}
	return f.info, nil
}

// fakeProber implements probe.Prober with a fixed answer.
type fakeProber struct {
	width  int
	height int
	err    error
}

func (f *fakeProber) Dimensions(data io.Reader) (int, int, error) {
	if f.err != nil {
		return 0, 0, f.err
	}
	return f.width, f.height, nil
}

// =============================================================================
// Helpers
// =============================================================================

func newTestService(store storage.Storage, prober *fakeProber) AnalyzeService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	res := resolver.New(resolver.DefaultConfig(), logger)
	cls := classifier.New(domain.PolicyTwoWay, logger)
	if prober == nil {
		return NewAnalyzeService(store, nil, res, cls, logger)
	}
	return NewAnalyzeService(store, prober, res, cls, logger)
}

// =============================================================================
// Tests
// =============================================================================

func TestAnalyze_ExplicitHintsSkipStorage(t *testing.T) {
	store := &fakeStorage{}
	svc := newTestService(store, &fakeProber{width: 100, height: 100})

	result := svc.Analyze(context.Background(), AnalyzeRequest{
		Bucket:         "photos",
		Key:            "a.jpg",
		ExplicitWidth:  1080,
		ExplicitHeight: 1920,
	})

	assert.Equal(t, 0, store.getCalls)
	assert.Equal(t, 0, store.headCalls)
	assert.Equal(t, domain.DetectionExplicit, result.DetectionMethod)
	assert.Equal(t, 1080, result.Width)
	assert.Equal(t, 1920, result.Height)
	assert.Equal(t, domain.ClassificationTall, result.Classification)
	assert.Equal(t, Source{Bucket: "photos", Key: "a.jpg"}, result.Source)
}

func TestAnalyze_ProbeWins(t *testing.T) {
	store := &fakeStorage{
		body: []byte("not really a jpeg"),
		info: storage.ObjectInfo{Size: 123456, ContentType: "image/jpeg"},
	}
	svc := newTestService(store, &fakeProber{width: 640, height: 480})

	result := svc.Analyze(context.Background(), AnalyzeRequest{Key: "photo.jpg"})

	assert.Equal(t, 1, store.getCalls)
	assert.Equal(t, domain.DetectionPixelProbe, result.DetectionMethod)
	assert.Equal(t, 640, result.Width)
	assert.Equal(t, 480, result.Height)
}

func TestAnalyze_ProbeFailureFallsBackToEstimation(t *testing.T) {
	store := &fakeStorage{
		body: []byte("corrupt"),
		info: storage.ObjectInfo{Size: 2_500_000, ContentType: "image/jpeg"},
	}
	svc := newTestService(store, &fakeProber{err: errors.New("decode failed")})

	result := svc.Analyze(context.Background(), AnalyzeRequest{Key: "img_001.dat"})

	// The object's byte size is still usable evidence.
	assert.Equal(t, domain.DetectionFilesizeEstimate, result.DetectionMethod)
	assert.Equal(t, 1920, result.Width)
	assert.Equal(t, 1080, result.Height)
}

func TestAnalyze_NonImageSkipsProbe(t *testing.T) {
	store := &fakeStorage{
		body: []byte("%PDF-1.4"),
		info: storage.ObjectInfo{Size: 600_000, ContentType: "application/pdf"},
	}
	prober := &fakeProber{width: 999, height: 999}
	svc := newTestService(store, prober)

	result := svc.Analyze(context.Background(), AnalyzeRequest{Key: "report_002.dat"})

	assert.Equal(t, domain.DetectionFilesizeEstimate, result.DetectionMethod)
	assert.Equal(t, 800, result.Width)
	assert.Equal(t, 600, result.Height)
}

func TestAnalyze_HeadOnlyWhenProbeDisabled(t *testing.T) {
	store := &fakeStorage{
		info: storage.ObjectInfo{Size: 1_200_000, ContentType: "image/png"},
	}
	svc := newTestService(store, nil)

	result := svc.Analyze(context.Background(), AnalyzeRequest{Key: "img_003.dat"})

	assert.Equal(t, 1, store.headCalls)
	assert.Equal(t, 0, store.getCalls)
	assert.Equal(t, domain.DetectionFilesizeEstimate, result.DetectionMethod)
	assert.Equal(t, 1024, result.Width)
	assert.Equal(t, 768, result.Height)
	assert.Equal(t, int64(1_200_000), result.Debug.ParsedSize)
}

func TestAnalyze_StorageFailureDegradesToFilename(t *testing.T) {
	store := &fakeStorage{getErr: errors.New("connection refused")}
	svc := newTestService(store, &fakeProber{width: 1, height: 1})

	result := svc.Analyze(context.Background(), AnalyzeRequest{Key: "banner_summer.jpg"})

	assert.Equal(t, domain.DetectionFilenameKeyword, result.DetectionMethod)
	assert.Equal(t, 1920, result.Width)
	assert.Equal(t, 1080, result.Height)
	assert.Equal(t, domain.ClassificationNotTall, result.Classification)
}

func TestAnalyze_SizeHintWithoutStorage(t *testing.T) {
	svc := newTestService(nil, nil)

	result := svc.Analyze(context.Background(), AnalyzeRequest{
		Key:      "upload_004.dat",
		SizeHint: "1.06 MB",
	})

	assert.Equal(t, domain.DetectionFilesizeEstimate, result.DetectionMethod)
	assert.Equal(t, 1024, result.Width)
	assert.Equal(t, 768, result.Height)
	assert.Equal(t, "1.06 MB", result.Debug.RawSize)
	assert.Equal(t, int64(1111490), result.Debug.ParsedSize)
}

func TestAnalyze_FileNameOverridesKey(t *testing.T) {
	svc := newTestService(nil, nil)

	result := svc.Analyze(context.Background(), AnalyzeRequest{
		Key:      "0f2a9c.bin",
		FileName: "holiday_1920x1080.jpg",
	})

	assert.Equal(t, domain.DetectionFilenamePattern, result.DetectionMethod)
	assert.Equal(t, 1920, result.Width)
	assert.Equal(t, 1080, result.Height)
}

func TestAnalyze_EmptyRequestStillWellFormed(t *testing.T) {
	svc := newTestService(nil, nil)

	result := svc.Analyze(context.Background(), AnalyzeRequest{})

	require.True(t, result.Width > 0 && result.Height > 0)
	assert.Equal(t, domain.DetectionDefaultFallback, result.DetectionMethod)
	assert.True(t, result.Success)
	assert.NotEmpty(t, result.RequestID)
	assert.False(t, result.AnalyzedAt.IsZero())
	assert.True(t, result.Classification.IsValid())
}

func TestAnalyze_MalformedExplicitStillGathersStorageEvidence(t *testing.T) {
	store := &fakeStorage{
		info: storage.ObjectInfo{Size: 600_000, ContentType: "image/png"},
	}
	svc := newTestService(store, nil)

	result := svc.Analyze(context.Background(), AnalyzeRequest{
		Key:            "img_005.dat",
		ExplicitWidth:  "abc",
		ExplicitHeight: "def",
	})

	// Garbage hints must not shadow the object's byte size.
	assert.Equal(t, 1, store.headCalls)
	assert.Equal(t, domain.DetectionFilesizeEstimate, result.DetectionMethod)
	assert.Equal(t, 800, result.Width)
	assert.Equal(t, 600, result.Height)
}

func TestAnalyze_MalformedExplicitFallsThrough(t *testing.T) {
	svc := newTestService(nil, nil)

	result := svc.Analyze(context.Background(), AnalyzeRequest{
		ExplicitWidth:  "abc",
		ExplicitHeight: "1920",
		FileName:       "square_profile.png",
	})

	assert.Equal(t, domain.DetectionFilenameKeyword, result.DetectionMethod)
	assert.Equal(t, 500, result.Width)
	assert.Equal(t, 500, result.Height)
}
