package staging

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/asrgate/audio"
	apperrors "github.com/kbukum/asrgate/errors"
	storagetest "github.com/kbukum/asrgate/storage/testutil"
	"github.com/kbukum/asrgate/testutil"
	"github.com/kbukum/asrgate/testutil/fixtures"
)

var fixedNow = time.UnixMilli(1700000000123)

func clock() time.Time { return fixedNow }

func newStore(t *testing.T) *storagetest.Component {
	t.Helper()
	store := storagetest.NewComponent()
	testutil.T(t).Setup(store)
	return store
}

// presigningStore turns on presigned URLs for the in-memory store.
type presigningStore struct {
	*storagetest.Component
	ttl time.Duration
}

func (p presigningStore) SignedURLs() (bool, time.Duration) { return true, p.ttl }

func TestUploader_Key(t *testing.T) {
	u := NewUploader(Config{}, nil, nil, WithClock(clock))
	pattern := regexp.MustCompile(`^uploads/1700000000123-[0-9a-z]{6}\.wav$`)

	key := u.Key(audio.FormatWAV)
	if !pattern.MatchString(key) {
		t.Errorf("key %q does not match %s", key, pattern)
	}
	if other := u.Key(audio.FormatWAV); other == key {
		t.Errorf("two keys collided: %q", key)
	}
	if got := u.Key(audio.FormatOGGOpus); !strings.HasSuffix(got, ".ogg") {
		t.Errorf("ogg-opus key = %q, want .ogg extension", got)
	}

	custom := NewUploader(Config{Prefix: "/asr/"}, nil, nil)
	if got := custom.Key(audio.FormatMP3); !strings.HasPrefix(got, "asr/") {
		t.Errorf("custom prefix key = %q", got)
	}
}

func TestUploader_NotConfigured(t *testing.T) {
	u := NewUploader(Config{}, nil, nil)
	if u.Configured() {
		t.Error("Configured() = true with no backends")
	}
	ref, err := u.Stage(context.Background(), audio.NewBlob(fixtures.WAV(8), ""), audio.FormatWAV)
	if ref != nil || err != nil {
		t.Fatalf("Stage() = %v, %v; want nil, nil", ref, err)
	}
}

func TestUploader_PrefersObjectStore(t *testing.T) {
	objects := newStore(t)
	temp := newStore(t)
	u := NewUploader(Config{}, objects, temp, WithClock(clock))

	ref, err := u.Stage(context.Background(), audio.NewBlob(fixtures.WAV(16), "audio/wav"), audio.FormatWAV)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if ref.Backend != BackendObjectStore {
		t.Errorf("Backend = %q, want object-store", ref.Backend)
	}
	if ref.URL != storagetest.BaseURL+ref.Key {
		t.Errorf("URL = %q, want public URL of %q", ref.URL, ref.Key)
	}
	if !ref.ExpiresAt.IsZero() {
		t.Error("public URL should not expire")
	}
	if _, ct, ok := objects.Object(ref.Key); !ok || ct != "audio/wav" {
		t.Errorf("object not stored with content type: ok=%v ct=%q", ok, ct)
	}
	if len(temp.Keys()) != 0 {
		t.Error("temp blob service should not be used when the object store is configured")
	}
	if ref.Temporary() {
		t.Error("object-store refs are not temporary")
	}
}

func TestUploader_PresignedURL(t *testing.T) {
	objects := newStore(t)
	u := NewUploader(Config{}, presigningStore{Component: objects, ttl: 300 * time.Second}, nil, WithClock(clock))

	ref, err := u.Stage(context.Background(), audio.NewBlob(fixtures.MP3(4), ""), audio.FormatMP3)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if !objects.SignedCalls() || !strings.Contains(ref.URL, "signature=") {
		t.Errorf("URL %q is not presigned", ref.URL)
	}
	if want := fixedNow.Add(300 * time.Second); !ref.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", ref.ExpiresAt, want)
	}
}

func TestUploader_TempBlobFallbackAndRelease(t *testing.T) {
	temp := newStore(t)
	u := NewUploader(Config{}, nil, temp, WithClock(clock))
	ctx := context.Background()

	ref, err := u.Stage(ctx, audio.NewBlob(fixtures.WebM(8), "audio/webm"), audio.FormatOGGOpus)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if ref.Backend != BackendTempBlob || !ref.Temporary() {
		t.Fatalf("Backend = %q, want temp-blob", ref.Backend)
	}

	if err := u.Release(ctx, ref); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if got := temp.Deletes(); len(got) != 1 || got[0] != ref.URL {
		t.Errorf("Deletes() = %v, want [%s]", got, ref.URL)
	}
	if len(temp.Keys()) != 0 {
		t.Error("temp object still present after Release")
	}
}

func TestUploader_ReleaseSkipsObjectStore(t *testing.T) {
	objects := newStore(t)
	u := NewUploader(Config{}, objects, nil)
	ctx := context.Background()

	ref, err := u.Stage(ctx, audio.NewBlob(fixtures.WAV(4), ""), audio.FormatWAV)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	if err := u.Release(ctx, ref); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if len(objects.Deletes()) != 0 {
		t.Error("object-store refs must not be deleted")
	}
	if err := u.Release(ctx, nil); err != nil {
		t.Errorf("Release(nil) = %v", err)
	}
}

func TestUploader_Failures(t *testing.T) {
	temp := newStore(t)
	u := NewUploader(Config{}, nil, temp)
	ctx := context.Background()

	temp.FailPuts(errors.New("quota exceeded"))
	_, err := u.Stage(ctx, audio.NewBlob(fixtures.WAV(4), ""), audio.FormatWAV)
	if !apperrors.HasCode(err, apperrors.ErrCodeStagingFailed) {
		t.Fatalf("Stage err = %v, want STAGING_FAILED", err)
	}

	temp.FailPuts(nil)
	ref, err := u.Stage(ctx, audio.NewBlob(fixtures.WAV(4), ""), audio.FormatWAV)
	if err != nil {
		t.Fatalf("Stage: %v", err)
	}
	temp.FailDeletes(errors.New("gone"))
	if err := u.Release(ctx, ref); err == nil {
		t.Error("Release should surface the delete error")
	}
}
