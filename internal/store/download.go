package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	RequisitionsFilename  = "vagas.json"
	ProspectsFilename     = "prospects.json"
	RawApplicantsFilename = "applicants.json"
	CandidatesFilename    = "applicants_nd.json"
)

// Downloader fetches missing store files from a remote data host and prepares
// the optimized candidate store. Each file is fetched at most once per call;
// a failed attempt is surfaced and not retried.
type Downloader struct {
	BaseURL string
	Dir     string
	Timeout time.Duration
	Logger  *zap.Logger
}

// RequisitionsPath returns the local path of the requisition store.
func (d *Downloader) RequisitionsPath() string { return filepath.Join(d.Dir, RequisitionsFilename) }

// ProspectsPath returns the local path of the prospect store.
func (d *Downloader) ProspectsPath() string { return filepath.Join(d.Dir, ProspectsFilename) }

// CandidatesPath returns the local path of the NDJSON candidate store.
func (d *Downloader) CandidatesPath() string { return filepath.Join(d.Dir, CandidatesFilename) }

// EnsureData makes sure all three stores exist locally, downloading the
// missing ones and converting the raw applicants document to NDJSON on first
// use.
func (d *Downloader) EnsureData(ctx context.Context) error {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("%w: creating data dir %q: %v", ErrUnavailable, d.Dir, err)
	}

	for _, name := range []string{RequisitionsFilename, ProspectsFilename} {
		if err := d.fetchIfMissing(ctx, name); err != nil {
			return err
		}
	}

	ndjson := d.CandidatesPath()
	if _, err := os.Stat(ndjson); err == nil {
		return nil
	}

	if err := d.fetchIfMissing(ctx, RawApplicantsFilename); err != nil {
		return err
	}

	raw := filepath.Join(d.Dir, RawApplicantsFilename)
	d.Logger.Info("converting candidate store to NDJSON", zap.String("source", raw))

	if err := convertApplicants(raw, ndjson); err != nil {
		return fmt.Errorf("%w: converting %q: %v", ErrUnavailable, raw, err)
	}

	return nil
}

func (d *Downloader) fetchIfMissing(ctx context.Context, name string) error {
	path := filepath.Join(d.Dir, name)
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	url := d.BaseURL + "/" + name
	d.Logger.Info("downloading data file", zap.String("file", name), zap.String("url", url))

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}

	client := resty.New().SetTimeout(timeout)
	resp, err := client.R().
		SetContext(ctx).
		SetOutput(path).
		Get(url)
	if err != nil {
		return fmt.Errorf("%w: downloading %q: %v", ErrUnavailable, url, err)
	}
	if resp.IsError() {
		// resty leaves a partial output file behind on HTTP errors.
		os.Remove(path)
		return fmt.Errorf("%w: downloading %q: unexpected status %s", ErrUnavailable, url, resp.Status())
	}

	return nil
}

// convertApplicants rewrites the raw applicants document (a single huge JSON
// object keyed by candidate id) into NDJSON with the id injected into each
// record. The document is decoded entry by entry so the whole map is never
// held in memory.
func convertApplicants(rawPath, ndjsonPath string) error {
	in, err := os.Open(rawPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(ndjsonPath)
	if err != nil {
		return err
	}
	defer out.Close()

	dec := json.NewDecoder(in)

	// Opening brace of the top-level object.
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("reading document start: %w", err)
	}

	enc := json.NewEncoder(out)
	for dec.More() {
		keyToken, err := dec.Token()
		if err != nil {
			return fmt.Errorf("reading candidate id: %w", err)
		}
		id, ok := keyToken.(string)
		if !ok {
			return fmt.Errorf("unexpected key token %v", keyToken)
		}

		var record map[string]any
		if err := dec.Decode(&record); err != nil {
			return fmt.Errorf("decoding candidate %q: %w", id, err)
		}
		record["codigo_candidato"] = id

		if err := enc.Encode(record); err != nil {
			return fmt.Errorf("writing candidate %q: %w", id, err)
		}
	}

	return out.Sync()
}
