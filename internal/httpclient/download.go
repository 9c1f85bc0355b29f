package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/nyxaria/kmfetch/internal/kerrors"
)

// Callbacks fire at the three download lifecycle points (§4.4).
type Callbacks struct {
	OnStart    func(name string, size int64)
	OnProgress func(name string, downloaded, size int64)
	OnComplete func(name string, ok bool)
}

func noop(Callbacks) Callbacks {
	return Callbacks{
		OnStart:    func(string, int64) {},
		OnProgress: func(string, int64, int64) {},
		OnComplete: func(string, bool) {},
	}
}

// DownloadFile implements the download contract: write to dest+".tmp",
// stream in chunks, skip if dest already exists with the same byte size
// as the remote content-length, and on completion rename into a
// collision-free destination (appending " (N)" before the extension).
// On cancellation or error the temp file is unlinked.
func (c *Client) DownloadFile(ctx context.Context, url, destPath string, cb Callbacks) (ok bool, err error) {
	if cb.OnStart == nil {
		cb = noop(cb)
	}
	name := filepath.Base(destPath)

	remoteSize, haveSize, err := c.contentLengthFor(ctx, url)
	if err != nil && !kerrors.Is(err, kerrors.Cancelled) {
		// A failed pre-flight probe is not fatal; fall through and let the
		// GET itself surface the real error.
		haveSize = false
	} else if err != nil {
		return false, err
	}

	if haveSize {
		if info, statErr := os.Stat(destPath); statErr == nil && info.Size() == remoteSize {
			cb.OnStart(name, remoteSize)
			cb.OnComplete(name, true)
			return true, nil
		}
	}

	tmpPath := destPath + ".tmp"
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return false, kerrors.New(kerrors.LocalIO, "DownloadFile:mkdir", err)
	}

	cb.OnStart(name, remoteSize)

	written, derr := c.streamToFile(ctx, url, tmpPath, func(n int64) {
		cb.OnProgress(name, n, remoteSize)
	})
	if derr != nil {
		os.Remove(tmpPath)
		cb.OnComplete(name, false)
		return false, derr
	}
	_ = written

	finalPath, err := uniqueDestination(destPath)
	if err != nil {
		os.Remove(tmpPath)
		cb.OnComplete(name, false)
		return false, kerrors.New(kerrors.LocalIO, "DownloadFile:unique", err)
	}
	if err := os.Rename(tmpPath, finalPath); err != nil {
		os.Remove(tmpPath)
		cb.OnComplete(name, false)
		return false, kerrors.New(kerrors.LocalIO, "DownloadFile:rename", err)
	}
	cb.OnComplete(name, true)
	return true, nil
}

func (c *Client) contentLengthFor(ctx context.Context, url string) (int64, bool, error) {
	return c.HeadContentLength(ctx, url)
}

// streamToFile performs the retried GET + stream-to-temp-file attempt.
func (c *Client) streamToFile(ctx context.Context, url, tmpPath string, onProgress func(int64)) (int64, error) {
	return retryForever(ctx, c, "GET:"+url, func() (int64, error) {
		reqCtx, cancel := context.WithTimeout(ctx, fileTimeout)
		defer cancel()
		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
		if err != nil {
			return 0, kerrors.New(kerrors.Internal, "streamToFile", err)
		}
		c.decorate(req)
		resp, err := c.httpClient().Do(req)
		if err != nil {
			return 0, c.classify("streamToFile", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return 0, kerrors.New(kerrors.RemoteNotFound, "streamToFile", fmt.Errorf("status %d", resp.StatusCode))
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return 0, kerrors.New(kerrors.NetworkTransient, "streamToFile", fmt.Errorf("status %d", resp.StatusCode))
		}

		f, err := os.Create(tmpPath)
		if err != nil {
			return 0, kerrors.New(kerrors.LocalIO, "streamToFile:create", err)
		}
		defer f.Close()

		var total int64
		buf := make([]byte, 32*1024)
		for {
			if c.cancelled.Load() {
				return total, kerrors.ErrCancelled
			}
			n, rerr := resp.Body.Read(buf)
			if n > 0 {
				if _, werr := f.Write(buf[:n]); werr != nil {
					return total, kerrors.New(kerrors.LocalIO, "streamToFile:write", werr)
				}
				total += int64(n)
				onProgress(total)
			}
			if rerr == io.EOF {
				break
			}
			if rerr != nil {
				return total, c.classify("streamToFile:read", rerr)
			}
		}
		return total, nil
	})
}

// uniqueDestination returns dest if it doesn't exist, otherwise appends
// " (N)" before the extension until a free path is found.
func uniqueDestination(dest string) (string, error) {
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return dest, nil
	}
	ext := filepath.Ext(dest)
	base := strings.TrimSuffix(dest, ext)
	for n := 1; n < 10000; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, n, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("could not find unique destination for %s", dest)
}
