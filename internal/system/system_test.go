package system

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("12.480000\n")
	require.NoError(t, err)
	assert.Equal(t, 12.48, d)

	for _, bad := range []string{"", "N/A", "abc", "0", "-1"} {
		_, err := ParseDuration(bad)
		assert.Error(t, err, bad)
	}
}

func TestPickEncoder(t *testing.T) {
	listing := ` V....D libx264              libx264 H.264 / AVC
 V....D h264_nvenc           NVIDIA NVENC H.264 encoder`
	assert.Equal(t, "h264_nvenc", pickEncoder(listing))
	assert.Equal(t, "libx264", pickEncoder(" V....D libx264 H.264"))
}

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()
	older := filepath.Join(dir, "a.mp3")
	newer := filepath.Join(dir, "b.WAV")
	for i, f := range []string{older, newer} {
		require.NoError(t, os.WriteFile(f, []byte("x"), 0o644))
		mod := time.Now().Add(time.Duration(i) * time.Hour)
		require.NoError(t, os.Chtimes(f, mod, mod))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "c.txt"), []byte("x"), 0o644))

	latest, err := FindLatest(dir, AudioExtensions)
	require.NoError(t, err)
	assert.Equal(t, newer, latest)

	_, err = FindLatest(t.TempDir(), AudioExtensions)
	assert.Error(t, err)
}

func TestImagePoolReusesBuffers(t *testing.T) {
	p := NewImagePool()
	rect := image.Rect(0, 0, 8, 8)

	img := p.Get(rect)
	require.Equal(t, rect, img.Rect)
	p.Put(img)
	p.Put(nil)
	p.Put(image.NewRGBA(image.Rect(0, 0, 3, 3)))

	again := p.Get(rect)
	assert.Equal(t, rect, again.Rect)
}

func TestCollectHost(t *testing.T) {
	r := CollectHost(context.Background())
	assert.Positive(t, r.LogicalCPUs)
	assert.NotEmpty(t, r.Arch)
	assert.NotEmpty(t, r.String())
	assert.Positive(t, r.EncoderThreads())

	low := HostReport{LogicalCPUs: 8, AvailMemory: 1 << 30}
	assert.Equal(t, 4, low.EncoderThreads())
}

func TestProbeDurationMissingFile(t *testing.T) {
	_, err := ProbeDuration(context.Background(), filepath.Join(t.TempDir(), "none.mp3"))
	assert.Error(t, err)
}
