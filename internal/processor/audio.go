package processor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"

	"github.com/nguyentantai21042004/summary-flow/pkg/executor"
)

const (
	sampleRate = 16000
	channels   = 1
	bitDepth   = 16
)

var errInvalidWAV = errors.New("not a valid WAV file")

// ExtractAudio downloads the best audio stream of url and converts it to 16kHz mono
// 16-bit PCM WAV. Intermediate files live in a temp dir removed on every exit path.
func (p *implProcessor) ExtractAudio(ctx context.Context, url string, opts ExtractOptions) (string, error) {
	outDir := opts.OutDir
	if outDir == "" {
		outDir = p.cfg.Paths.Audio
	}

	if p.cfg.Paths.Temp != "" {
		if err := os.MkdirAll(p.cfg.Paths.Temp, 0755); err != nil {
			return "", fmt.Errorf("create temp root: %w", err)
		}
	}
	tmpDir, err := os.MkdirTemp(p.cfg.Paths.Temp, "extract-*")
	if err != nil {
		return "", fmt.Errorf("create temp dir: %w", err)
	}
	defer p.removeTempDir(ctx, tmpDir)

	p.logger.Info(ctx, "Extracting audio from %s...", url)

	// yt-dlp names the file after upload date and title so it survives the move
	args := []string{
		url,
		"-o", filepath.Join(tmpDir, "%(upload_date)s_%(title)s.%(ext)s"),
		"--extract-audio",
		"--audio-format", "mp3",
		"--ffmpeg-location", p.cfg.Tools.Transcoder,
		"--no-playlist",
	}
	if _, err := p.executor.Execute(ctx, p.cfg.Tools.Downloader, args...); err != nil {
		return "", executor.NewStageError("download", err)
	}

	downloaded, err := singleFile(tmpDir)
	if err != nil {
		return "", fmt.Errorf("download output: %w", err)
	}
	wavName := strings.TrimSuffix(downloaded, filepath.Ext(downloaded)) + ".wav"
	tmpWav := filepath.Join(tmpDir, wavName)

	p.logger.Info(ctx, "Converting %s to 16-bit %d Hz mono WAV", downloaded, sampleRate)

	// -ar 16000: sample rate expected by whisper.cpp
	// -ac 1: mono
	// -c:a pcm_s16le: 16-bit little-endian PCM
	args = []string{
		"-i", filepath.Join(tmpDir, downloaded),
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		tmpWav,
	}
	if _, err := p.executor.Execute(ctx, p.cfg.Tools.Transcoder, args...); err != nil {
		return "", executor.NewStageError("transcode", err)
	}

	if err := p.validateWAV(ctx, tmpWav); err != nil {
		return "", fmt.Errorf("validate %s: %w", wavName, err)
	}

	if opts.Filename != "" {
		wavName = filepath.Base(opts.Filename)
		if filepath.Ext(wavName) == "" {
			wavName += ".wav"
		}
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return "", fmt.Errorf("create audio dir: %w", err)
	}
	dest, err := filepath.Abs(filepath.Join(outDir, wavName))
	if err != nil {
		return "", fmt.Errorf("resolve audio path: %w", err)
	}
	if err := p.moveFile(ctx, tmpWav, dest); err != nil {
		return "", err
	}

	p.logger.Info(ctx, "Audio extracted successfully: %s", dest)
	return dest, nil
}

// validateWAV checks the transcoder produced the exact format whisper.cpp expects
func (p *implProcessor) validateWAV(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return errInvalidWAV
	}
	if dec.SampleRate != sampleRate || dec.NumChans != channels || dec.BitDepth != bitDepth {
		return fmt.Errorf("unexpected format %d Hz, %d channel(s), %d-bit: want %d Hz, %d channel, %d-bit",
			dec.SampleRate, dec.NumChans, dec.BitDepth, sampleRate, channels, bitDepth)
	}

	if d, err := dec.Duration(); err == nil {
		p.logger.Debug(ctx, "Audio duration: %s", d)
	}
	return nil
}

// singleFile returns the name of the only regular file in dir
func singleFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var files []string
	for _, e := range entries {
		if e.Type().IsRegular() {
			files = append(files, e.Name())
		}
	}

	if len(files) != 1 {
		return "", fmt.Errorf("expected exactly one downloaded file, found %d", len(files))
	}
	return files[0], nil
}
