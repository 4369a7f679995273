package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"mask-drawing/internal/adapters/recorder/memory"
	"mask-drawing/internal/adapters/uploader"
	"mask-drawing/internal/config"
	"mask-drawing/internal/core/domain"
	"mask-drawing/internal/core/port"
	"mask-drawing/internal/core/service/pipeline"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
)

type output struct {
	Original string              `json:"original"`
	Mask     string              `json:"mask,omitempty"`
	MaskFile string              `json:"maskFile,omitempty"`
	Trace    []domain.TraceEntry `json:"trace"`
}

func main() {
	var (
		imagePath    string
		strokesPath  string
		outDir       string
		sourceCoords bool
	)

	flag.StringVar(&imagePath, "image", "", "Path to the original image (png or jpeg)")
	flag.StringVar(&strokesPath, "strokes", "", "Path to a JSON drawing layer, {\"strokes\":[{\"radius\":10,\"points\":[{\"x\":1,\"y\":2}]}]}")
	flag.StringVar(&outDir, "out", ".", "Directory where mask.png is written")
	flag.BoolVar(&sourceCoords, "source-coords", false, "Strokes are in image pixels instead of display canvas pixels")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if imagePath == "" {
		logger.Error("-image flag is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.LoadCLI()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if sourceCoords {
		cfg.Brush.DisplayWidth, cfg.Brush.DisplayHeight = 0, 0
	}

	if err := run(ctx, cfg, logger, imagePath, strokesPath, outDir); err != nil {
		logger.Error("mask pipeline failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.CLIConfig, logger *slog.Logger, imagePath, strokesPath, outDir string) error {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	layer, err := readLayer(strokesPath)
	if err != nil {
		return err
	}

	recorder := memory.NewRecorder()
	client := uploader.NewClient(&http.Client{Timeout: cfg.Client.Timeout}, cfg.Client.PublicBaseURL, recorder, logger)
	endpoint := strings.TrimRight(cfg.Client.BackendURL, "/") + cfg.Client.CredentialPath
	session := pipeline.NewSession(client, endpoint, cfg.Brush, logger)

	original, err := session.UploadOriginal(ctx, filepath.Base(imagePath), data)
	if err != nil {
		return err
	}
	out := output{Original: original.URL}

	replayed := session.Surface().Replay(layer)
	logger.Info("strokes replayed", "strokes", replayed)

	// the local mask is kept even when its upload fails
	maskResult, genErr := session.GenerateMask(ctx)
	if maskResult != nil {
		out.Mask = maskResult.URL
	}
	path, exportErr := session.ExportMask(outDir)
	if exportErr == nil {
		out.MaskFile = path
	} else if !errors.Is(exportErr, domain.ErrNoMask) {
		logger.Warn("failed to export mask", "error", exportErr)
	}

	out.Trace = listTrace(ctx, recorder, logger)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return err
	}
	return genErr
}

// listTrace returns the recorded keys, an empty list when they cannot be read
func listTrace(ctx context.Context, traces port.TraceRepository, logger *slog.Logger) []domain.TraceEntry {
	entries, err := traces.List(ctx)
	if err != nil {
		logger.Warn("failed to list key trace", "error", err)
		return []domain.TraceEntry{}
	}
	return entries
}

func readLayer(path string) (domain.DrawingLayer, error) {
	var layer domain.DrawingLayer
	if path == "" {
		return layer, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return layer, fmt.Errorf("failed to read strokes: %w", err)
	}
	if err := json.Unmarshal(data, &layer); err != nil {
		return layer, fmt.Errorf("%w: strokes file: %w", domain.ErrInvalidInputData, err)
	}
	return layer, nil
}
