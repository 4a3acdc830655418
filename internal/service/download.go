package service

import (
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/DataDog/zstd"
	"github.com/sirupsen/logrus"
	"github.com/validprot/validprot/internal/types"
	"golang.org/x/time/rate"
)

type DownloadService interface {
	// Download fetches dataset from the mirror into destination and returns
	// the path of the decompressed file. rate is in KiB/s, 0 for unlimited.
	Download(ctx context.Context, dataset types.Dataset, destination string, rate int) (string, error)
}

type downloadService struct {
	mirror string
	client *http.Client
}

func newDownloadService(mirror string) DownloadService {
	return &downloadService{
		mirror: mirror,
		client: &http.Client{
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				ResponseHeaderTimeout: 60 * time.Second,
			},
		},
	}
}

func (d downloadService) Download(ctx context.Context, dataset types.Dataset, destination string, rate int) (string, error) {
	if dataset.FileName() == "" {
		return "", fmt.Errorf("dataset %q is invalid", dataset)
	}

	finalDestination := filepath.Join(destination, dataset.FileName())
	if fileInfo, err := os.Stat(finalDestination); err == nil && fileInfo.Size() > 0 {
		logrus.WithFields(logrus.Fields{
			"dataset": dataset,
			"path":    finalDestination,
			"size":    fileInfo.Size(),
		}).Info("Dataset already present")
		return finalDestination, nil
	}

	if err := os.MkdirAll(destination, 0755); err != nil {
		return "", fmt.Errorf("failed to create destination directory: %w", err)
	}

	url := strings.TrimSuffix(d.mirror, "/") + "/" + string(dataset)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("server returned non-success status: %d %s", resp.StatusCode, resp.Status)
	}

	var reader io.Reader = resp.Body
	if rate > 0 {
		reader = newRateLimitedReader(ctx, resp.Body, rate*1024)
	}

	switch dataset.Compression() {
	case "gzip":
		gzReader, err := gzip.NewReader(reader)
		if err != nil {
			return "", fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gzReader.Close()
		reader = gzReader
	case "zstd":
		zReader := zstd.NewReader(reader)
		defer zReader.Close()
		reader = zReader
	}

	// Written under a temporary name so an interrupted download is never
	// mistaken for a complete one.
	partial := finalDestination + ".partial"
	destFile, err := os.Create(partial)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer os.Remove(partial)
	defer destFile.Close()

	progressCtx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go d.trackFileProgress(progressCtx, &wg, destFile, dataset)

	_, err = io.Copy(destFile, reader)
	cancel()
	wg.Wait()
	if err != nil {
		return "", fmt.Errorf("failed to download and decompress data: %w", err)
	}

	fileInfo, err := destFile.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat download: %w", err)
	}
	hash := d.hashFile(destFile)
	if err := destFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close download: %w", err)
	}
	if err := os.Rename(partial, finalDestination); err != nil {
		return "", fmt.Errorf("failed to move download into place: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"dataset": dataset,
		"path":    finalDestination,
		"size":    fileInfo.Size(),
		"unit":    "bytes",
		"hash":    hash,
		"type":    "download",
	}).Info("Download completed")

	return finalDestination, nil
}

func (d downloadService) trackFileProgress(ctx context.Context, wg *sync.WaitGroup, file *os.File, dataset types.Dataset) {
	defer wg.Done()
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			fileInfo, err := file.Stat()
			if err == nil {
				logrus.WithFields(logrus.Fields{
					"dataset": dataset,
					"size":    fileInfo.Size(),
					"unit":    "bytes",
					"type":    "download",
				}).Info("Download progress")
			}
		case <-ctx.Done():
			return
		}
	}
}

func (d downloadService) hashFile(file *os.File) string {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return ""
	}
	hash := sha256.New()
	_, err := io.Copy(hash, file)
	if err != nil {
		return ""
	}

	return hex.EncodeToString(hash.Sum(nil))
}

type rateLimitedReader struct {
	reader  io.Reader
	limiter *rate.Limiter
	ctx     context.Context
}

func newRateLimitedReader(ctx context.Context, reader io.Reader, bytesPerSec int) io.Reader {
	limiter := rate.NewLimiter(rate.Limit(bytesPerSec), bytesPerSec)
	return &rateLimitedReader{
		reader:  reader,
		limiter: limiter,
		ctx:     ctx,
	}
}

func (r *rateLimitedReader) Read(p []byte) (n int, err error) {
	toRead := len(p)
	if toRead > r.limiter.Burst() {
		toRead = r.limiter.Burst()
	}

	err = r.limiter.WaitN(r.ctx, toRead)
	if err != nil {
		return 0, err
	}

	return r.reader.Read(p[:toRead])
}
