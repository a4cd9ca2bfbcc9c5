package tools

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManagerCreatesDirectory(t *testing.T) {
	baseDir := t.TempDir()
	utilsDir := filepath.Join(baseDir, "nonexistent", "utils")

	mgr := NewManager(utilsDir)

	info, err := os.Stat(mgr.utilsDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestGetExtractorPath(t *testing.T) {
	utilsDir := t.TempDir()
	mgr := NewManager(utilsDir)

	path := mgr.GetExtractorPath()
	assert.Contains(t, path, utilsDir)
	assert.Contains(t, path, detectPlatform())
}

func TestIsInstalled(t *testing.T) {
	tests := []struct {
		name          string
		createFile    bool
		wantInstalled bool
	}{
		{
			name:          "not installed",
			createFile:    false,
			wantInstalled: false,
		},
		{
			name:          "installed",
			createFile:    true,
			wantInstalled: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			utilsDir := t.TempDir()
			mgr := NewManager(utilsDir)

			if tt.createFile {
				err := os.WriteFile(mgr.GetExtractorPath(), []byte("fake"), 0755)
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantInstalled, mgr.IsInstalled())
		})
	}
}

func TestDetectPlatform(t *testing.T) {
	platform := detectPlatform()

	switch runtime.GOOS {
	case "windows":
		assert.Equal(t, "yt-dlp.exe", platform)
	case "linux":
		if runtime.GOARCH == "arm64" {
			assert.Equal(t, "yt-dlp_linux_aarch64", platform)
		} else {
			assert.Equal(t, "yt-dlp_linux", platform)
		}
	case "darwin":
		if runtime.GOARCH == "arm64" {
			assert.Equal(t, "yt-dlp_macos_arm64", platform)
		} else {
			assert.Equal(t, "yt-dlp_macos", platform)
		}
	default:
		assert.Equal(t, "yt-dlp", platform)
	}
}

func TestCheckForUpdate_NotInstalled(t *testing.T) {
	utilsDir := t.TempDir()

	mockClient := &MockHTTPClient{
		GetFunc: func(url string) (*http.Response, error) {
			return NewMockReleaseResponse("2026.01.01", detectPlatform()), nil
		},
	}

	mgr := NewManagerWithClient(utilsDir, mockClient)

	version, hasUpdate, err := mgr.CheckForUpdate()
	require.NoError(t, err)
	assert.True(t, hasUpdate)
	assert.Equal(t, "2026.01.01", version)
}

func TestCheckForUpdate_AlreadyUpToDate(t *testing.T) {
	utilsDir := t.TempDir()

	mockClient := &MockHTTPClient{
		GetFunc: func(url string) (*http.Response, error) {
			return NewMockReleaseResponse("2026.01.01", detectPlatform()), nil
		},
	}

	mgr := NewManagerWithClient(utilsDir, mockClient)
	mgr.currentVersion = "2026.01.01"

	err := os.WriteFile(mgr.GetExtractorPath(), []byte("current"), 0755)
	require.NoError(t, err)

	version, hasUpdate, err := mgr.CheckForUpdate()
	require.NoError(t, err)
	assert.False(t, hasUpdate)
	assert.Equal(t, "2026.01.01", version)
}

func TestCheckForUpdate_HTTPError(t *testing.T) {
	utilsDir := t.TempDir()

	mockClient := &MockHTTPClient{
		GetFunc: func(url string) (*http.Response, error) {
			return nil, fmt.Errorf("network error")
		},
	}

	mgr := NewManagerWithClient(utilsDir, mockClient)

	_, _, err := mgr.CheckForUpdate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check for updates")
}

func TestCheckForUpdate_Non200Status(t *testing.T) {
	utilsDir := t.TempDir()

	mockClient := &MockHTTPClient{
		GetFunc: func(url string) (*http.Response, error) {
			return &http.Response{
				StatusCode: http.StatusNotFound,
				Body:       http.NoBody,
			}, nil
		},
	}

	mgr := NewManagerWithClient(utilsDir, mockClient)

	_, _, err := mgr.CheckForUpdate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestDownload_Success(t *testing.T) {
	utilsDir := t.TempDir()

	callCount := 0
	mockClient := &MockHTTPClient{
		GetFunc: func(url string) (*http.Response, error) {
			callCount++
			if callCount == 1 {
				// First call: get release info
				return NewMockReleaseResponse("2026.01.01", detectPlatform()), nil
			}
			// Second call: download binary
			return NewMockBinaryResponse([]byte("fake extractor binary")), nil
		},
	}

	mgr := NewManagerWithClient(utilsDir, mockClient)

	err := mgr.Download()
	require.NoError(t, err)

	assert.True(t, mgr.IsInstalled())
	assert.Equal(t, "2026.01.01", mgr.GetCurrentVersion())
}

func TestDownload_NoMatchingAsset(t *testing.T) {
	utilsDir := t.TempDir()

	mockClient := &MockHTTPClient{
		GetFunc: func(url string) (*http.Response, error) {
			return NewMockReleaseResponse("2026.01.01", "wrong-platform.exe"), nil
		},
	}

	mgr := NewManagerWithClient(utilsDir, mockClient)

	err := mgr.Download()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "no asset found for platform")
}

func TestDownload_ReplaceExisting(t *testing.T) {
	utilsDir := t.TempDir()

	callCount := 0
	mockClient := &MockHTTPClient{
		GetFunc: func(url string) (*http.Response, error) {
			callCount++
			if callCount == 1 {
				return NewMockReleaseResponse("2026.02.01", detectPlatform()), nil
			}
			return NewMockBinaryResponse([]byte("new version")), nil
		},
	}

	mgr := NewManagerWithClient(utilsDir, mockClient)

	err := os.WriteFile(mgr.GetExtractorPath(), []byte("old version"), 0755)
	require.NoError(t, err)

	err = mgr.Download()
	require.NoError(t, err)

	data, err := os.ReadFile(mgr.GetExtractorPath())
	require.NoError(t, err)
	assert.Equal(t, "new version", string(data))
}

func TestDownload_BinaryFetchFailed(t *testing.T) {
	utilsDir := t.TempDir()

	callCount := 0
	mockClient := &MockHTTPClient{
		GetFunc: func(url string) (*http.Response, error) {
			callCount++
			if callCount == 1 {
				return NewMockReleaseResponse("2026.01.01", detectPlatform()), nil
			}
			return &http.Response{
				StatusCode: http.StatusNotFound,
				Body:       http.NoBody,
			}, nil
		},
	}

	mgr := NewManagerWithClient(utilsDir, mockClient)

	err := mgr.Download()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
}

func TestEnsureInstalled_AlreadyInstalled(t *testing.T) {
	utilsDir := t.TempDir()
	mgr := NewManagerWithClient(utilsDir, &MockHTTPClient{
		GetFunc: func(url string) (*http.Response, error) {
			t.Fatal("no network call expected when already installed")
			return nil, nil
		},
	})

	err := os.WriteFile(mgr.GetExtractorPath(), []byte("fake"), 0755)
	require.NoError(t, err)

	require.NoError(t, mgr.EnsureInstalled())
}

func TestEnsureInstalled_NotInstalled(t *testing.T) {
	utilsDir := t.TempDir()

	callCount := 0
	mockClient := &MockHTTPClient{
		GetFunc: func(url string) (*http.Response, error) {
			callCount++
			if callCount == 1 {
				return NewMockReleaseResponse("2026.01.01", detectPlatform()), nil
			}
			return NewMockBinaryResponse([]byte("binary data")), nil
		},
	}

	mgr := NewManagerWithClient(utilsDir, mockClient)

	assert.False(t, mgr.IsInstalled())

	err := mgr.EnsureInstalled()
	require.NoError(t, err)

	assert.True(t, mgr.IsInstalled())
}

func TestAutoUpdate_HasUpdate(t *testing.T) {
	utilsDir := t.TempDir()

	callCount := 0
	mockClient := &MockHTTPClient{
		GetFunc: func(url string) (*http.Response, error) {
			callCount++
			if callCount <= 2 {
				// CheckForUpdate and Download release info
				return NewMockReleaseResponse("2026.02.01", detectPlatform()), nil
			}
			// Download binary
			return NewMockBinaryResponse([]byte("new version")), nil
		},
	}

	mgr := NewManagerWithClient(utilsDir, mockClient)
	mgr.currentVersion = "2026.01.01"

	err := os.WriteFile(mgr.GetExtractorPath(), []byte("old"), 0755)
	require.NoError(t, err)

	err = mgr.AutoUpdate()
	require.NoError(t, err)

	assert.Equal(t, "2026.02.01", mgr.GetCurrentVersion())
}

func TestAutoUpdate_NoUpdate(t *testing.T) {
	utilsDir := t.TempDir()

	mockClient := &MockHTTPClient{
		GetFunc: func(url string) (*http.Response, error) {
			return NewMockReleaseResponse("2026.01.01", detectPlatform()), nil
		},
	}

	mgr := NewManagerWithClient(utilsDir, mockClient)
	mgr.currentVersion = "2026.01.01"

	err := os.WriteFile(mgr.GetExtractorPath(), []byte("current"), 0755)
	require.NoError(t, err)

	err = mgr.AutoUpdate()
	require.NoError(t, err)

	assert.Equal(t, "2026.01.01", mgr.GetCurrentVersion())
}

func TestFindExtractor_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "yt-dlp")
	require.NoError(t, os.WriteFile(path, []byte("fake"), 0755))

	mgr := NewManager(t.TempDir())

	found, err := mgr.FindExtractor(path)
	require.NoError(t, err)
	assert.Equal(t, path, found)
}

func TestFindExtractor_ExplicitPathMissing(t *testing.T) {
	mgr := NewManager(t.TempDir())

	_, err := mgr.FindExtractor(filepath.Join(t.TempDir(), "no-such-binary"))
	assert.Error(t, err)
}

func TestFindExtractor_ManagedInstall(t *testing.T) {
	utilsDir := t.TempDir()
	mgr := NewManager(utilsDir)

	require.NoError(t, os.WriteFile(mgr.GetExtractorPath(), []byte("fake"), 0755))

	found, err := mgr.FindExtractor("definitely-not-on-path-xyz")
	require.NoError(t, err)
	assert.Equal(t, mgr.GetExtractorPath(), found)
}

func TestFindExtractor_NotFound(t *testing.T) {
	mgr := NewManager(t.TempDir())

	_, err := mgr.FindExtractor("definitely-not-on-path-xyz")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFindTranscoder_ExplicitPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ffmpeg")
	require.NoError(t, os.WriteFile(path, []byte("fake"), 0755))

	found, err := FindTranscoder(path)
	require.NoError(t, err)
	assert.Equal(t, path, found)
}

func TestFindTranscoder_NotFound(t *testing.T) {
	_, err := FindTranscoder("definitely-not-on-path-xyz")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}
